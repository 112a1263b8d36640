package effects

import (
	"math"
	"testing"
)

func TestBitcrushGridAndRuns(t *testing.T) {
	tests := []struct {
		name     string
		bits     int
		normFreq float64
	}{
		{name: "8 bit every 10th", bits: 8, normFreq: 0.1},
		{name: "16 bit every 3rd", bits: 16, normFreq: 0.3},
		{name: "4 bit passthrough rate", bits: 4, normFreq: 1},
		{name: "12 bit slow", bits: 12, normFreq: 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const frames = 1003

			data := make([]float64, frames)
			for i := range data {
				data[i] = -0.95 + 1.9*float64(i)/frames
			}

			out, err := Bitcrush([][]float64{data}, tt.bits, tt.normFreq)
			if err != nil {
				t.Fatalf("Bitcrush() error = %v", err)
			}

			levels := math.Exp2(float64(tt.bits))
			for i, v := range out[0] {
				k := v * levels
				if math.Abs(k-math.Round(k)) > 1e-9 {
					t.Fatalf("sample %d = %v is off the 1/%v grid", i, v, levels)
				}
			}

			hold := HoldLength(tt.normFreq)
			for i := 1; i < frames; i++ {
				changed := out[0][i] != out[0][i-1]
				if changed && i%hold != 0 {
					t.Fatalf("value changed at frame %d inside a hold of %d", i, hold)
				}
			}
		})
	}
}

func TestBitcrusherBlocksMatchBatch(t *testing.T) {
	in := make([]float64, 1000)
	for i := range in {
		in[i] = 0.8 * math.Sin(float64(i)*0.013)
	}

	batch := append([]float64(nil), in...)
	if _, err := Bitcrush([][]float64{batch}, 6, 0.07); err != nil {
		t.Fatalf("Bitcrush() error = %v", err)
	}

	bc, err := NewBitcrusher(6, 0.07)
	if err != nil {
		t.Fatalf("NewBitcrusher() error = %v", err)
	}

	blocks := append([]float64(nil), in...)
	for start := 0; start < len(blocks); start += 128 {
		bc.ProcessInPlace(blocks[start:min(start+128, len(blocks))])
	}

	for i := range batch {
		if blocks[i] != batch[i] {
			t.Fatalf("sample %d: blocks=%v batch=%v", i, blocks[i], batch[i])
		}
	}
}

func TestHoldLength(t *testing.T) {
	tests := []struct {
		normFreq float64
		want     int
	}{
		{1, 1},
		{0.5, 2},
		{0.3, 3},
		{0.1, 10},
		{0.01, 100},
		{0, 1},
	}

	for _, tt := range tests {
		if got := HoldLength(tt.normFreq); got != tt.want {
			t.Fatalf("HoldLength(%v) = %d, want %d", tt.normFreq, got, tt.want)
		}
	}
}

func TestBitcrusherValidation(t *testing.T) {
	if _, err := NewBitcrusher(0, 0.5); err == nil {
		t.Fatal("expected error for 0 bits")
	}

	if _, err := NewBitcrusher(17, 0.5); err == nil {
		t.Fatal("expected error for 17 bits")
	}

	if _, err := NewBitcrusher(8, 0); err == nil {
		t.Fatal("expected error for zero normFreq")
	}
}
