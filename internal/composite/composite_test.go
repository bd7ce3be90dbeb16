package composite

import (
	"math"
	"testing"
)

func TestToDecibel(t *testing.T) {
	in := []float64{1, 10, 100, 0.5, 0, -3, 1e-10, math.NaN()}
	out := ToDecibel(in)

	approx := func(got, want float64) bool { return math.Abs(got-want) < 1e-9 }

	if !approx(out[0], 0) {
		t.Errorf("10*log10(1) = %v, want 0", out[0])
	}
	if !approx(out[1], 10) {
		t.Errorf("10*log10(10) = %v, want 10", out[1])
	}
	if !approx(out[2], 20) {
		t.Errorf("10*log10(100) = %v, want 20", out[2])
	}
	if out[1] >= out[2] || out[3] >= out[0] {
		t.Error("decibel conversion must be monotonic")
	}
	// Zero and negative power clamp to the floor instead of -inf/NaN.
	if !approx(out[4], -100) || !approx(out[5], -100) || !approx(out[6], -100) {
		t.Errorf("values at or below the floor should map to -100 dB, got %v %v %v", out[4], out[5], out[6])
	}
	if !math.IsNaN(out[7]) {
		t.Errorf("NaN input must stay NaN, got %v", out[7])
	}
}

func TestMaskNoData(t *testing.T) {
	nd := 0.0
	x := []float64{0, 1, 0, 2.5}
	MaskNoData(x, &nd)

	if !math.IsNaN(x[0]) || !math.IsNaN(x[2]) {
		t.Errorf("nodata pixels should become NaN: %v", x)
	}
	if x[1] != 1 || x[3] != 2.5 {
		t.Errorf("valid pixels must be untouched: %v", x)
	}

	y := []float64{0, 1}
	MaskNoData(y, nil)
	if y[0] != 0 || y[1] != 1 {
		t.Errorf("nil nodata must leave the band untouched: %v", y)
	}
}

func TestPercentileStretch(t *testing.T) {
	x := make([]float64, 1000)
	for i := range x {
		x[i] = float64(i)
	}
	x[0] = math.NaN()

	out := PercentileStretch(x, DefaultLowPercentile, DefaultHighPercentile)

	if !math.IsNaN(out[0]) {
		t.Errorf("NaN input pixel must stay NaN, got %v", out[0])
	}
	for i, v := range out[1:] {
		if math.IsNaN(v) {
			t.Fatalf("unexpected NaN at %d", i+1)
		}
		if v < 0 || v > 1 {
			t.Fatalf("stretched value out of [0,1] at %d: %v", i+1, v)
		}
	}
	// Values below and above the percentile bounds clip to the limits.
	if out[1] != 0 {
		t.Errorf("minimum should clip to 0, got %v", out[1])
	}
	if out[len(out)-1] != 1 {
		t.Errorf("maximum should clip to 1, got %v", out[len(out)-1])
	}
}

func TestPercentileStretch_ConstantBand(t *testing.T) {
	x := []float64{5, 5, 5, 5}
	out := PercentileStretch(x, DefaultLowPercentile, DefaultHighPercentile)
	for i, v := range out {
		if v != 0 {
			t.Errorf("constant band should stretch to 0 at %d, got %v", i, v)
		}
	}
}

func TestPercentileStretch_AllNaN(t *testing.T) {
	x := []float64{math.NaN(), math.NaN()}
	out := PercentileStretch(x, DefaultLowPercentile, DefaultHighPercentile)
	for i, v := range out {
		if !math.IsNaN(v) {
			t.Errorf("all-NaN band should stay NaN at %d, got %v", i, v)
		}
	}
}

func TestBuildComposite(t *testing.T) {
	vv := []float64{-20, -15, -10, -5, 0}
	vh := []float64{-25, -22, -18, -12, -8}

	r, g, b, err := BuildComposite(vv, vh)
	if err != nil {
		t.Fatalf("BuildComposite failed: %v", err)
	}
	for _, ch := range [][]float64{r, g, b} {
		if len(ch) != len(vv) {
			t.Fatalf("channel length %d, want %d", len(ch), len(vv))
		}
		for i, v := range ch {
			if v < 0 || v > 1 {
				t.Errorf("channel value out of [0,1] at %d: %v", i, v)
			}
		}
	}
}

func TestBuildComposite_IdenticalBands(t *testing.T) {
	vv := []float64{-20, -15, -10}
	r, g, b, err := BuildComposite(vv, vv)
	if err != nil {
		t.Fatalf("BuildComposite failed: %v", err)
	}
	// vv-vh is zero everywhere, so blue is a constant band stretched to 0.
	for i, v := range b {
		if v != 0 {
			t.Errorf("blue channel should be 0 at %d, got %v", i, v)
		}
	}
	for i := range r {
		if r[i] != g[i] {
			t.Errorf("red and green should match for identical inputs at %d: %v vs %v", i, r[i], g[i])
		}
	}
}

func TestBuildComposite_LengthMismatch(t *testing.T) {
	if _, _, _, err := BuildComposite([]float64{1, 2}, []float64{1}); err == nil {
		t.Fatal("expected error on band length mismatch, got nil")
	}
}

func TestToByte(t *testing.T) {
	in := []float64{0, 1, 0.5, -0.2, 1.7, math.NaN()}
	out := ToByte(in)

	want := []uint8{0, 255, 128, 0, 255, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("ToByte[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}
