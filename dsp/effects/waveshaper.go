package effects

import (
	"fmt"
	"math"
)

const (
	// CurveLength is the number of entries in a distortion transfer table.
	CurveLength = 44100

	// MaxDrive is the upper end of the distortion drive range.
	MaxDrive = 400.0

	deg = math.Pi / 180
)

// MakeDistortionCurve builds a CurveLength-entry waveshaper table over the
// input domain [-1, 1] using
//
//	f(x) = (3+k) * x * 20deg / (pi + k*|x|)
//
// with k = amount. Entry i corresponds to x = 2i/(N-1) - 1, so the first and
// last entries sit exactly on -1 and +1. Larger amounts saturate harder.
func MakeDistortionCurve(amount float64) []float64 {
	curve := make([]float64, CurveLength)
	last := float64(CurveLength - 1)

	for i := range curve {
		x := float64(i)*2/last - 1
		curve[i] = DistortionTransfer(amount, x)
	}

	return curve
}

// DistortionTransfer evaluates the distortion transfer function directly.
func DistortionTransfer(amount, x float64) float64 {
	return (3 + amount) * x * 20 * deg / (math.Pi + amount*math.Abs(x))
}

// Waveshaper maps each input sample through a transfer table with linear
// interpolation between entries. Inputs beyond [-1, 1] take the end values.
type Waveshaper struct {
	curve []float64
}

// NewWaveshaper creates a shaper around curve. The curve is used as-is.
func NewWaveshaper(curve []float64) (*Waveshaper, error) {
	if len(curve) < 2 {
		return nil, fmt.Errorf("waveshaper curve needs at least 2 entries: %d", len(curve))
	}

	return &Waveshaper{curve: curve}, nil
}

// NewDistortion creates a shaper using MakeDistortionCurve(amount).
func NewDistortion(amount float64) (*Waveshaper, error) {
	if amount < 0 || amount > MaxDrive || math.IsNaN(amount) {
		return nil, fmt.Errorf("distortion drive must be in [0, %g]: %f", MaxDrive, amount)
	}

	return NewWaveshaper(MakeDistortionCurve(amount))
}

// SetCurve swaps the transfer table. Curves shorter than 2 entries are rejected.
func (w *Waveshaper) SetCurve(curve []float64) error {
	if len(curve) < 2 {
		return fmt.Errorf("waveshaper curve needs at least 2 entries: %d", len(curve))
	}

	w.curve = curve

	return nil
}

// Curve returns the current transfer table.
func (w *Waveshaper) Curve() []float64 { return w.curve }

// ProcessSample shapes one sample.
func (w *Waveshaper) ProcessSample(x float64) float64 {
	n := len(w.curve)
	if math.IsNaN(x) {
		return 0
	}

	v := float64(n-1) * (x + 1) / 2
	if v <= 0 {
		return w.curve[0]
	}

	if v >= float64(n-1) {
		return w.curve[n-1]
	}

	k := int(v)
	frac := v - float64(k)

	return w.curve[k] + frac*(w.curve[k+1]-w.curve[k])
}

// ProcessInPlace shapes buf in place.
func (w *Waveshaper) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = w.ProcessSample(buf[i])
	}
}
