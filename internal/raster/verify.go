package raster

import (
	"fmt"
	"strings"
)

// AlignmentError reports which grid fields differ between two rasters that
// were expected to share an identical pixel grid. It signals a
// geolocation-mode bug or inconsistent source metadata, never a condition
// to ignore.
type AlignmentError struct {
	Fields []string
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("clipped rasters are not aligned: %s differ", strings.Join(e.Fields, ", "))
}

// VerifyAligned returns nil only when both rasters agree on CRS, affine
// transform (exactly, not approximately), width, and height. This is the
// hard gate in front of per-pixel band math.
func VerifyAligned(a, b Info) error {
	var fields []string

	if a.Projection != b.Projection {
		fields = append(fields, "crs")
	}
	if a.Transform != b.Transform {
		fields = append(fields, "transform")
	}
	if a.Width != b.Width {
		fields = append(fields, "width")
	}
	if a.Height != b.Height {
		fields = append(fields, "height")
	}

	if len(fields) > 0 {
		return &AlignmentError{Fields: fields}
	}
	return nil
}
