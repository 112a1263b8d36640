package biquad

import (
	"math"
	"math/cmplx"
)

// Coefficients of one second-order section with a0 normalized to 1. The
// runtime uses Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Identity passes its input through unchanged.
var Identity = Coefficients{B0: 1}

// IsIdentity reports whether c is exactly Identity.
func (c Coefficients) IsIdentity() bool { return c == Identity }

// Response returns H(e^jw) at freqHz.
func (c Coefficients) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1

	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2

	return num / den
}

// MagnitudeDB returns |H| in dB at freqHz, floored at -240 dB.
func (c Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return toDB(cmplx.Abs(c.Response(freqHz, sampleRate)))
}

// Section is one filter with its delay state. Channels each need their own.
type Section struct {
	c      Coefficients
	d0, d1 float64
}

// NewSection returns a Section with zero state.
func NewSection(c Coefficients) *Section {
	return &Section{c: c}
}

// Coefficients returns the active coefficients.
func (s *Section) Coefficients() Coefficients { return s.c }

// Update swaps the coefficients and keeps the delay state, so a live gain
// change does not restart the filter.
func (s *Section) Update(c Coefficients) { s.c = c }

// Reset clears the delay state.
func (s *Section) Reset() { s.d0, s.d1 = 0, 0 }

// ProcessSample filters one sample.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.c.B0*x + s.d0
	s.d0 = s.c.B1*x - s.c.A1*y + s.d1
	s.d1 = s.c.B2*x - s.c.A2*y

	return y
}

// ProcessBlock filters buf in place.
func (s *Section) ProcessBlock(buf []float64) {
	c := s.c
	d0, d1 := s.d0, s.d1

	for i, x := range buf {
		y := c.B0*x + d0
		d0 = c.B1*x - c.A1*y + d1
		d1 = c.B2*x - c.A2*y
		buf[i] = y
	}

	s.d0, s.d1 = d0, d1
}

func toDB(mag float64) float64 {
	return 20 * math.Log10(math.Max(mag, 1e-12))
}
