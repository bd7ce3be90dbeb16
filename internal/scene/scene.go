// Package scene parses Sentinel-1 scene identifiers into the sensing-time
// interval and name prefix used for cross-catalog product resolution.
package scene

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrMalformedID is returned when a scene identifier does not carry the
// expected sensing-time pattern. Callers must treat this as fatal: there is
// no recovery from an identifier the catalogs themselves disagree about.
var ErrMalformedID = errors.New("malformed scene identifier")

// Scene identifiers embed the sensing interval as
// ..._<start>_<end>_... with 15-character YYYYMMDDThhmmss stamps.
var sensingTimesRe = regexp.MustCompile(`_(\d{8}T\d{6})_(\d{8}T\d{6})_`)

// The trailing 4-character variant code (hex CRC) differs between catalogs
// for the same physical acquisition, as does the cloud-optimized marker.
var variantSuffixRe = regexp.MustCompile(`_[0-9A-F]{4}(_COG)?$`)

const sensingStampLayout = "20060102T150405"

// Pointer identifies a scene discovered in one catalog: the opaque
// identifier plus the sensing interval derived from it. It is transient,
// single-use per pipeline run.
type Pointer struct {
	// ID is the identifier exactly as the discovery catalog returned it.
	ID string

	// Start and End bound the sensing interval, UTC, Start <= End.
	Start time.Time
	End   time.Time
}

// ParsePointer derives a Pointer from a scene identifier.
func ParsePointer(id string) (Pointer, error) {
	m := sensingTimesRe.FindStringSubmatch(id)
	if m == nil {
		return Pointer{}, fmt.Errorf("%w: no sensing times in %q", ErrMalformedID, id)
	}

	start, err := time.ParseInLocation(sensingStampLayout, m[1], time.UTC)
	if err != nil {
		return Pointer{}, fmt.Errorf("%w: bad start stamp in %q: %v", ErrMalformedID, id, err)
	}
	end, err := time.ParseInLocation(sensingStampLayout, m[2], time.UTC)
	if err != nil {
		return Pointer{}, fmt.Errorf("%w: bad end stamp in %q: %v", ErrMalformedID, id, err)
	}
	if end.Before(start) {
		return Pointer{}, fmt.Errorf("%w: sensing end %s precedes start %s in %q",
			ErrMalformedID, m[2], m[1], id)
	}

	return Pointer{ID: id, Start: start, End: end}, nil
}

// Prefix returns the identifier stem with the trailing variant code (and an
// optional cloud-optimized marker) stripped. Two catalog entries for the
// same acquisition share this stem even when their variant codes differ.
func (p Pointer) Prefix() string {
	return variantSuffixRe.ReplaceAllString(p.ID, "")
}
