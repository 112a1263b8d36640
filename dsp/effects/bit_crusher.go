package effects

import (
	"fmt"
	"math"
)

const (
	// MinCrushBits and MaxCrushBits bound the quantizer resolution.
	MinCrushBits = 1
	MaxCrushBits = 16

	// MinCrushNormFreq bounds the normalized hold frequency from below.
	MinCrushNormFreq = 0.01
)

// Bitcrusher reduces amplitude resolution and effective sample rate.
//
//   - Quantization snaps each captured sample to the grid k/2^bits, rounding
//     halves up: floor(x*2^bits + 0.5) / 2^bits.
//   - Sample-and-hold captures a new value every floor(1/normFreq) frames and
//     repeats it in between.
//
// The hold counter survives across ProcessInPlace calls, so feeding a signal
// in blocks gives the same output as feeding it in one piece.
type Bitcrusher struct {
	bits     int
	normFreq float64

	levels  float64
	hold    int
	counter int
	value   float64
}

// NewBitcrusher creates a crusher with bits in [1, 16] and normFreq in [0.01, 1].
func NewBitcrusher(bits int, normFreq float64) (*Bitcrusher, error) {
	bc := &Bitcrusher{}
	if err := bc.SetBits(bits); err != nil {
		return nil, err
	}

	if err := bc.SetNormFreq(normFreq); err != nil {
		return nil, err
	}

	return bc, nil
}

// SetBits sets the quantizer resolution.
func (bc *Bitcrusher) SetBits(bits int) error {
	if bits < MinCrushBits || bits > MaxCrushBits {
		return fmt.Errorf("bitcrusher bits must be in [%d, %d]: %d", MinCrushBits, MaxCrushBits, bits)
	}

	bc.bits = bits
	bc.levels = math.Exp2(float64(bits))

	return nil
}

// SetNormFreq sets the normalized hold frequency. The hold length becomes
// floor(1/normFreq) frames.
func (bc *Bitcrusher) SetNormFreq(normFreq float64) error {
	if normFreq < MinCrushNormFreq || normFreq > 1 || math.IsNaN(normFreq) {
		return fmt.Errorf("bitcrusher normFreq must be in [%g, 1]: %f", MinCrushNormFreq, normFreq)
	}

	bc.normFreq = normFreq
	bc.hold = HoldLength(normFreq)

	return nil
}

// Bits returns the quantizer resolution.
func (bc *Bitcrusher) Bits() int { return bc.bits }

// NormFreq returns the normalized hold frequency.
func (bc *Bitcrusher) NormFreq() float64 { return bc.normFreq }

// Hold returns the current hold length in frames.
func (bc *Bitcrusher) Hold() int { return bc.hold }

// Reset restarts the hold cycle.
func (bc *Bitcrusher) Reset() {
	bc.counter = 0
	bc.value = 0
}

// ProcessSample crushes one sample.
func (bc *Bitcrusher) ProcessSample(x float64) float64 {
	if bc.counter == 0 {
		bc.value = math.Floor(x*bc.levels+0.5) / bc.levels
	}

	bc.counter++
	if bc.counter >= bc.hold {
		bc.counter = 0
	}

	return bc.value
}

// ProcessInPlace crushes buf in place.
func (bc *Bitcrusher) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = bc.ProcessSample(buf[i])
	}
}

// HoldLength returns floor(1/normFreq), at least 1.
func HoldLength(normFreq float64) int {
	if normFreq <= 0 || math.IsNaN(normFreq) {
		return 1
	}

	return max(1, int(math.Floor(1/normFreq)))
}

// Bitcrush applies a fresh Bitcrusher to every channel in place and returns
// the channels. Each channel starts its own hold cycle at frame 0.
func Bitcrush(channels [][]float64, bits int, normFreq float64) ([][]float64, error) {
	for _, data := range channels {
		bc, err := NewBitcrusher(bits, normFreq)
		if err != nil {
			return nil, err
		}

		bc.ProcessInPlace(data)
	}

	return channels, nil
}
