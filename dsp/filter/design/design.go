package design

import (
	"math"

	"github.com/cwbudde/algo-sampler/dsp/filter/biquad"
)

// DefaultQ is used when q is not a positive finite number. For the shelves
// it equals a slope of S = 1.
const DefaultQ = 1 / math.Sqrt2

// Peak designs a peaking-EQ biquad with gain in dB.
func Peak(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w, ok := newWarp(freq, q, sampleRate)
	if !ok {
		return biquad.Identity
	}

	a := math.Pow(10, gainDB/40)

	return normalize(
		1+w.alpha*a,
		-2*w.cos,
		1-w.alpha*a,
		1+w.alpha/a,
		-2*w.cos,
		1-w.alpha/a,
	)
}

// LowShelf designs a low-shelf biquad with gain in dB.
func LowShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w, ok := newWarp(freq, q, sampleRate)
	if !ok {
		return biquad.Identity
	}

	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * w.alpha

	return normalize(
		a*((a+1)-(a-1)*w.cos+beta),
		2*a*((a-1)-(a+1)*w.cos),
		a*((a+1)-(a-1)*w.cos-beta),
		(a+1)+(a-1)*w.cos+beta,
		-2*((a-1)+(a+1)*w.cos),
		(a+1)+(a-1)*w.cos-beta,
	)
}

// HighShelf designs a high-shelf biquad with gain in dB.
func HighShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w, ok := newWarp(freq, q, sampleRate)
	if !ok {
		return biquad.Identity
	}

	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * w.alpha

	return normalize(
		a*((a+1)+(a-1)*w.cos+beta),
		-2*a*((a-1)+(a+1)*w.cos),
		a*((a+1)+(a-1)*w.cos-beta),
		(a+1)-(a-1)*w.cos+beta,
		2*((a-1)-(a+1)*w.cos),
		(a+1)-(a-1)*w.cos-beta,
	)
}

// warp holds the prewarped terms shared by all RBJ designs.
type warp struct {
	cos   float64
	alpha float64
}

func newWarp(freq, q, sampleRate float64) (warp, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return warp{}, false
	}

	if freq <= 0 || freq >= sampleRate/2 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return warp{}, false
	}

	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		q = DefaultQ
	}

	w0 := 2 * math.Pi * freq / sampleRate

	return warp{cos: math.Cos(w0), alpha: math.Sin(w0) / (2 * q)}, true
}

func normalize(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Identity
	}

	inv := 1 / a0

	return biquad.Coefficients{
		B0: b0 * inv,
		B1: b1 * inv,
		B2: b2 * inv,
		A1: a1 * inv,
		A2: a2 * inv,
	}
}
