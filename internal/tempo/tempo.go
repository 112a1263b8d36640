// Package tempo estimates the tempo of a sample for display.
package tempo

import (
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
)

const (
	// MinBPM and MaxBPM bound the tempo search.
	MinBPM = 60.0
	MaxBPM = 180.0

	envelopeRate = 86.0 // onset envelope frames per second
)

// Detect estimates the tempo of buf from the autocorrelation of its
// rectified energy-onset envelope. It reports false for silence or for
// material shorter than two beats at MinBPM.
func Detect(buf *buffer.Buffer) (float64, bool) {
	if buf == nil || buf.Frames() == 0 {
		return 0, false
	}

	onsets, rate := onsetEnvelope(buffer.Mixdown(buf), buf.SampleRate)

	minLag := int(math.Floor(60 / MaxBPM * rate))
	maxLag := int(math.Ceil(60 / MinBPM * rate))

	if minLag < 1 || len(onsets) < 2*maxLag+2 {
		return 0, false
	}

	ac, ok := autocorrelate(onsets)
	if !ok || ac[0] <= 0 {
		return 0, false
	}

	best := minLag
	for lag := minLag + 1; lag <= maxLag; lag++ {
		if ac[lag] > ac[best] {
			best = lag
		}
	}

	if ac[best] <= 0 {
		return 0, false
	}

	lag := float64(best)
	if best > 0 && best+1 < len(ac) {
		lag += parabolicOffset(ac[best-1], ac[best], ac[best+1])
	}

	bpm := 60 * rate / lag

	return math.Max(MinBPM, math.Min(MaxBPM, bpm)), true
}

// onsetEnvelope returns the positive RMS differences per hop and the
// envelope rate in frames per second.
func onsetEnvelope(mono []float64, sampleRate float64) ([]float64, float64) {
	hop := max(1, int(sampleRate/envelopeRate))
	rate := sampleRate / float64(hop)

	n := len(mono) / hop
	env := make([]float64, n)

	for i := range env {
		var sum float64
		for _, s := range mono[i*hop : (i+1)*hop] {
			sum += s * s
		}

		env[i] = math.Sqrt(sum / float64(hop))
	}

	onsets := make([]float64, n)
	for i := 1; i < n; i++ {
		onsets[i] = math.Max(0, env[i]-env[i-1])
	}

	var mean float64
	for _, v := range onsets {
		mean += v
	}

	if n > 0 {
		mean /= float64(n)
	}

	for i := range onsets {
		onsets[i] -= mean
	}

	return onsets, rate
}

// autocorrelate computes the linear autocorrelation for non-negative lags
// as IFFT(|FFT(x)|^2) over a zero-padded transform.
func autocorrelate(x []float64) ([]float64, bool) {
	size := 1
	for size < 2*len(x) {
		size <<= 1
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, false
	}

	in := make([]complex128, size)
	for i, v := range x {
		in[i] = complex(v, 0)
	}

	spec := make([]complex128, size)
	if err := plan.Forward(spec, in); err != nil {
		return nil, false
	}

	for i, v := range spec {
		m := cmplx.Abs(v)
		spec[i] = complex(m*m, 0)
	}

	if err := plan.Inverse(in, spec); err != nil {
		return nil, false
	}

	out := make([]float64, len(x))
	for i := range out {
		out[i] = real(in[i])
	}

	return out, true
}

func parabolicOffset(a, b, c float64) float64 {
	den := a - 2*b + c
	if den == 0 {
		return 0
	}

	return math.Max(-0.5, math.Min(0.5, 0.5*(a-c)/den))
}
