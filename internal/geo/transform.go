package geo

import (
	"errors"
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/paulmach/orb"
)

// ErrUnknownCRS is returned when a coordinate reference system cannot be
// resolved into a usable spatial reference.
var ErrUnknownCRS = errors.New("unresolvable coordinate reference system")

// WGS84 returns a spatial reference for EPSG:4326 in traditional lon/lat
// axis order. The caller owns the returned reference and must Close it.
func WGS84() (*godal.SpatialRef, error) {
	sr, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		return nil, fmt.Errorf("%w: EPSG:4326: %v", ErrUnknownCRS, err)
	}
	return sr, nil
}

// SpatialRefFromWKT resolves a WKT projection definition.
// The caller owns the returned reference and must Close it.
func SpatialRefFromWKT(wkt string) (*godal.SpatialRef, error) {
	if wkt == "" {
		return nil, fmt.Errorf("%w: empty projection definition", ErrUnknownCRS)
	}
	sr, err := godal.NewSpatialRefFromWKT(wkt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownCRS, err)
	}
	return sr, nil
}

// TransformPolygon applies a coordinate transform to every vertex of a
// polygon. Vertex order and ring closure are preserved: the transform is
// applied point-wise, so a closed input ring stays closed.
func TransformPolygon(poly orb.Polygon, from, to *godal.SpatialRef) (orb.Polygon, error) {
	trn, err := godal.NewTransform(from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownCRS, err)
	}
	defer trn.Close()

	out := make(orb.Polygon, len(poly))
	for ri, ring := range poly {
		xs := make([]float64, len(ring))
		ys := make([]float64, len(ring))
		for i, p := range ring {
			xs[i] = p[0]
			ys[i] = p[1]
		}
		if err := trn.TransformEx(xs, ys, nil, nil); err != nil {
			return nil, fmt.Errorf("coordinate transform failed: %w", err)
		}
		outRing := make(orb.Ring, len(ring))
		for i := range ring {
			outRing[i] = orb.Point{xs[i], ys[i]}
		}
		out[ri] = outRing
	}
	return out, nil
}
