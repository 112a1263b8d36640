package design

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-sampler/dsp/filter/biquad"
)

const sr = 48000.0

func TestPeakGainAtCenter(t *testing.T) {
	for _, gain := range []float64{-12, -3, 0, 6, 12} {
		c := Peak(1000, gain, 1, sr)
		if got := c.MagnitudeDB(1000, sr); math.Abs(got-gain) > 1e-9 {
			t.Fatalf("Peak(%g dB) at center = %v dB, want %v", gain, got, gain)
		}
	}
}

func TestZeroGainIsTransparent(t *testing.T) {
	designs := map[string]biquad.Coefficients{
		"peak":      Peak(1000, 0, 1, sr),
		"lowshelf":  LowShelf(100, 0, DefaultQ, sr),
		"highshelf": HighShelf(8000, 0, DefaultQ, sr),
	}

	for name, c := range designs {
		for _, hz := range []float64{20, 1000, 20000} {
			if got := c.MagnitudeDB(hz, sr); math.Abs(got) > 1e-9 {
				t.Fatalf("%s at %g Hz = %v dB, want 0", name, hz, got)
			}
		}
	}
}

func TestShelfTilt(t *testing.T) {
	ls := LowShelf(500, 6, DefaultQ, sr)
	if !(ls.MagnitudeDB(50, sr) > ls.MagnitudeDB(10000, sr)) {
		t.Fatal("low shelf does not tilt down")
	}

	if got := ls.MagnitudeDB(500, sr); math.Abs(got-3) > 1e-9 {
		t.Fatalf("low shelf at corner = %v dB, want 3", got)
	}

	hs := HighShelf(4000, 6, DefaultQ, sr)
	if !(hs.MagnitudeDB(15000, sr) > hs.MagnitudeDB(100, sr)) {
		t.Fatal("high shelf does not tilt up")
	}
}

func TestUnrealisableBandsAreIdentity(t *testing.T) {
	tests := []struct {
		name string
		c    biquad.Coefficients
	}{
		{"at nyquist", Peak(sr/2, 6, 1, sr)},
		{"above nyquist", HighShelf(30000, 6, DefaultQ, sr)},
		{"zero freq", LowShelf(0, 6, DefaultQ, sr)},
		{"zero rate", Peak(1000, 6, 1, 0)},
		{"nan rate", Peak(1000, 6, 1, math.NaN())},
	}

	for _, tc := range tests {
		if tc.c != biquad.Identity {
			t.Fatalf("%s: coefficients = %+v, want identity", tc.name, tc.c)
		}
	}
}

func TestInvalidQFallsBackToDefault(t *testing.T) {
	got := Peak(1000, 6, -1, sr)
	want := Peak(1000, 6, DefaultQ, sr)

	if got != want {
		t.Fatalf("Peak(q=-1) = %+v, want %+v", got, want)
	}
}
