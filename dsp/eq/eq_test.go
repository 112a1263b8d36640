package eq

import (
	"errors"
	"math"
	"testing"
)

func TestKindFor(t *testing.T) {
	tests := []struct {
		band int
		want Kind
	}{
		{0, KindLowShelf},
		{1, KindPeaking},
		{5, KindPeaking},
		{8, KindPeaking},
		{9, KindHighShelf},
	}

	for _, tt := range tests {
		if got := KindFor(tt.band); got != tt.want {
			t.Fatalf("KindFor(%d) = %v, want %v", tt.band, got, tt.want)
		}
	}
}

func TestSetGainClamps(t *testing.T) {
	e := New()

	tests := []struct {
		in, want float64
	}{
		{3, 3},
		{20, MaxGainDB},
		{-30, MinGainDB},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		got, err := e.SetGain(4, tt.in)
		if err != nil {
			t.Fatalf("SetGain(%v) error: %v", tt.in, err)
		}

		if got != tt.want || e.Gain(4) != tt.want {
			t.Fatalf("SetGain(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetGainRejectsBadIndex(t *testing.T) {
	e := New()
	for _, i := range []int{-1, Bands} {
		if _, err := e.SetGain(i, 1); !errors.Is(err, ErrBand) {
			t.Fatalf("SetGain(%d) err = %v, want ErrBand", i, err)
		}
	}
}

func TestResetAndResetAll(t *testing.T) {
	e := New()
	e.SetGains(Gains{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})

	if err := e.Reset(2); err != nil {
		t.Fatal(err)
	}

	if e.Gain(2) != 0 || e.Gain(3) != 4 {
		t.Fatalf("after Reset(2) gains = %v", e.Gains())
	}

	e.ResetAll()

	if !e.Gains().Flat() {
		t.Fatalf("after ResetAll gains = %v, want flat", e.Gains())
	}
}

func TestDrawInterpolatesAcrossBands(t *testing.T) {
	e := New()

	touched, err := e.Draw(6, 6, 2, -6)
	if err != nil {
		t.Fatal(err)
	}

	wantTouched := []int{6, 5, 4, 3, 2}
	if len(touched) != len(wantTouched) {
		t.Fatalf("touched = %v, want %v", touched, wantTouched)
	}

	for i := range wantTouched {
		if touched[i] != wantTouched[i] {
			t.Fatalf("touched = %v, want %v", touched, wantTouched)
		}
	}

	want := map[int]float64{6: 6, 5: 3, 4: 0, 3: -3, 2: -6, 1: 0, 7: 0}
	for band, db := range want {
		if math.Abs(e.Gain(band)-db) > 1e-12 {
			t.Fatalf("band %d = %v, want %v", band, e.Gain(band), db)
		}
	}
}

func TestDrawSingleBand(t *testing.T) {
	e := New()

	if _, err := e.Draw(3, 30, 3, 30); err != nil {
		t.Fatal(err)
	}

	if e.Gain(3) != MaxGainDB {
		t.Fatalf("Gain(3) = %v, want %v", e.Gain(3), MaxGainDB)
	}
}

func TestBandAtAndGainAt(t *testing.T) {
	if got := BandAt(0); got != 0 {
		t.Fatalf("BandAt(0) = %d, want 0", got)
	}

	if got := BandAt(1); got != Bands-1 {
		t.Fatalf("BandAt(1) = %d, want %d", got, Bands-1)
	}

	if got := BandAt(0.55); got != 5 {
		t.Fatalf("BandAt(0.55) = %d, want 5", got)
	}

	if got := GainAt(0); got != MaxGainDB {
		t.Fatalf("GainAt(0) = %v, want %v", got, MaxGainDB)
	}

	if got := GainAt(0.5); got != 0 {
		t.Fatalf("GainAt(0.5) = %v, want 0", got)
	}

	if got := GainAt(1); got != MinGainDB {
		t.Fatalf("GainAt(1) = %v, want %v", got, MinGainDB)
	}
}
