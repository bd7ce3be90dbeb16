// Package composite converts aligned VV/VH bands into a false-color
// visualization: decibel scaling, percentile contrast stretch, and a fixed
// three-channel assembly.
package composite

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	// dbFloor clamps linear power before the log so zero and negative
	// values map to -100 dB instead of -inf/NaN.
	dbFloor = 1e-10

	// stretchEpsilon keeps the stretch denominator non-zero on
	// constant-valued bands.
	stretchEpsilon = 1e-12

	// DefaultLowPercentile and DefaultHighPercentile bound the contrast
	// stretch.
	DefaultLowPercentile  = 2
	DefaultHighPercentile = 98
)

// ToDecibel converts linear power values to decibels:
// y = 10*log10(max(x, 1e-10)). Callers must know whether the source band is
// already in dB and skip this step; the encoding is a per-pipeline
// configuration decision, not auto-detected.
func ToDecibel(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		out[i] = 10 * math.Log10(math.Max(v, dbFloor))
	}
	return out
}

// MaskNoData replaces pixels equal to the nodata value with NaN so they do
// not pollute percentile statistics. A nil nodata leaves the band untouched.
func MaskNoData(x []float64, nodata *float64) {
	if nodata == nil {
		return
	}
	nd := *nodata
	for i, v := range x {
		if v == nd {
			x[i] = math.NaN()
		}
	}
}

// PercentileStretch linearly maps [pLow, pHigh] percentiles of the band to
// [0,1], clipping outliers to the bounds. NaN values are ignored for the
// statistics and preserved in the output. A constant band maps to 0
// everywhere rather than dividing by zero.
func PercentileStretch(x []float64, pLow, pHigh float64) []float64 {
	finite := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}

	out := make([]float64, len(x))
	if len(finite) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	sort.Float64s(finite)
	lo := stat.Quantile(pLow/100, stat.LinInterp, finite, nil)
	hi := stat.Quantile(pHigh/100, stat.LinInterp, finite, nil)
	scale := hi - lo + stretchEpsilon

	for i, v := range x {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		y := (v - lo) / scale
		if y < 0 {
			y = 0
		} else if y > 1 {
			y = 1
		}
		out[i] = y
	}
	return out
}

// BuildComposite assembles the false-color channels from dB-scaled bands:
// R = stretch(vv), G = stretch(vh), B = stretch(vv-vh). The blue channel's
// dB subtraction is a power ratio, the standard polarimetric discriminator;
// the channel assignment is fixed and must not be reordered.
func BuildComposite(vvDB, vhDB []float64) (r, g, b []float64, err error) {
	if len(vvDB) != len(vhDB) {
		return nil, nil, nil, fmt.Errorf("band length mismatch: vv has %d pixels, vh has %d", len(vvDB), len(vhDB))
	}

	ratio := make([]float64, len(vvDB))
	for i := range vvDB {
		ratio[i] = vvDB[i] - vhDB[i]
	}

	r = PercentileStretch(vvDB, DefaultLowPercentile, DefaultHighPercentile)
	g = PercentileStretch(vhDB, DefaultLowPercentile, DefaultHighPercentile)
	b = PercentileStretch(ratio, DefaultLowPercentile, DefaultHighPercentile)
	return r, g, b, nil
}

// ToByte quantizes a [0,1] channel to unsigned 8-bit: round(clip01(x)*255).
// NaN pixels map to 0.
func ToByte(x []float64) []uint8 {
	out := make([]uint8, len(x))
	for i, v := range x {
		if math.IsNaN(v) {
			continue
		}
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		out[i] = uint8(math.Round(v * 255))
	}
	return out
}
