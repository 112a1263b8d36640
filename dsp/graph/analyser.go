package graph

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-sampler/dsp/core"
)

const (
	// FloorDB is the lowest level SpectrumDB reports.
	FloorDB = -130.0

	defaultFFTSize   = 2048
	defaultSmoothing = 0.8
)

// Analyser passes its input through unchanged and keeps a Hann-windowed,
// smoothed magnitude spectrum of the mono mix, plus the peak level of the
// most recent quantum.
type Analyser struct {
	size      int
	hop       int
	smoothing float64

	plan      *algofft.Plan[complex128]
	window    []float64
	frame     []float64
	windowSum float64
	fftIn     []complex128
	fftOut    []complex128

	ring     []float64
	write    int
	filled   int
	sinceHop int
	spectrum []float64
	ready    bool
	peak     float64
	rate     float64
}

// AnalyserOption configures an Analyser.
type AnalyserOption func(*Analyser)

// WithFFTSize sets the transform length. Sizes that are not a power of two
// in [256, 16384] are ignored.
func WithFFTSize(n int) AnalyserOption {
	return func(a *Analyser) {
		if n >= 256 && n <= 16384 && n&(n-1) == 0 {
			a.size = n
		}
	}
}

// WithSmoothing sets the spectrum smoothing factor in [0, 0.95].
func WithSmoothing(s float64) AnalyserOption {
	return func(a *Analyser) {
		a.smoothing = core.Clamp(s, 0, 0.95)
	}
}

// NewAnalyser returns an analyser tap.
func NewAnalyser(opts ...AnalyserOption) (*Analyser, error) {
	a := &Analyser{size: defaultFFTSize, smoothing: defaultSmoothing}
	for _, opt := range opts {
		opt(a)
	}

	plan, err := algofft.NewPlan64(a.size)
	if err != nil {
		return nil, fmt.Errorf("graph: analyser fft plan: %w", err)
	}

	a.plan = plan
	a.hop = a.size / 2
	a.window = make([]float64, a.size)

	for i := range a.window {
		a.window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(a.size))
		a.windowSum += a.window[i]
	}

	a.frame = make([]float64, a.size)
	a.fftIn = make([]complex128, a.size)
	a.fftOut = make([]complex128, a.size)
	a.ring = make([]float64, a.size)
	a.spectrum = make([]float64, a.size/2+1)

	for i := range a.spectrum {
		a.spectrum[i] = FloorDB
	}

	return a, nil
}

// FFTSize returns the transform length.
func (a *Analyser) FFTSize() int { return a.size }

// Peak returns the largest absolute sample of the last quantum.
func (a *Analyser) Peak() float64 { return a.peak }

// Process copies in to out and feeds the analysis.
func (a *Analyser) Process(ctx *Context, in, out [][]float64) {
	a.rate = ctx.SampleRate
	a.peak = 0

	for ch := range out {
		core.CopyInto(out[ch], in[ch])
		a.peak = math.Max(a.peak, vecmath.MaxAbs(in[ch]))
	}

	if len(in) == 0 {
		return
	}

	scale := 1 / float64(len(in))
	for i := range in[0] {
		var sum float64
		for ch := range in {
			sum += in[ch][i]
		}

		a.push(sum * scale)
	}
}

// SpectrumDB returns the smoothed spectrum in dBFS at each frequency in
// freqs, interpolating between bins. Before the first full frame every
// value is FloorDB.
func (a *Analyser) SpectrumDB(freqs []float64) []float64 {
	out := make([]float64, len(freqs))
	if !a.ready || a.rate <= 0 {
		for i := range out {
			out[i] = FloorDB
		}

		return out
	}

	binHz := a.rate / float64(a.size)
	last := len(a.spectrum) - 1

	for i, f := range freqs {
		bin := core.Clamp(f, 0, a.rate/2) / binHz
		if bin >= float64(last) {
			out[i] = a.spectrum[last]
			continue
		}

		base := int(bin)
		frac := bin - float64(base)
		out[i] = core.Lerp(a.spectrum[base], a.spectrum[base+1], frac)
	}

	return out
}

func (a *Analyser) push(x float64) {
	a.ring[a.write] = x

	a.write++
	if a.write == a.size {
		a.write = 0
	}

	if a.filled < a.size {
		a.filled++
	}

	a.sinceHop++
	if a.filled < a.size || a.sinceHop < a.hop {
		return
	}

	a.sinceHop = 0
	a.update()
}

func (a *Analyser) update() {
	const eps = 1e-12

	n := copy(a.frame, a.ring[a.write:])
	copy(a.frame[n:], a.ring[:a.write])
	vecmath.MulBlockInPlace(a.frame, a.window)

	for i, v := range a.frame {
		a.fftIn[i] = complex(v, 0)
	}

	if err := a.plan.Forward(a.fftOut, a.fftIn); err != nil {
		return
	}

	norm := math.Max(a.windowSum, eps)
	last := len(a.spectrum) - 1

	for k := 0; k <= last; k++ {
		mag := cmplx.Abs(a.fftOut[k]) / norm
		if k > 0 && k < last {
			mag *= 2
		}

		db := math.Max(FloorDB, 20*math.Log10(math.Max(eps, mag)))
		if !a.ready {
			a.spectrum[k] = db
			continue
		}

		a.spectrum[k] = a.smoothing*a.spectrum[k] + (1-a.smoothing)*db
	}

	a.ready = true
}
