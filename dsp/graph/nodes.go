package graph

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-sampler/dsp/core"
	"github.com/cwbudde/algo-sampler/dsp/effects"
	"github.com/cwbudde/algo-sampler/dsp/filter/biquad"
)

// Sum passes its summed inputs through unchanged. It is the mixing point
// for parallel paths.
type Sum struct{}

// NewSum returns a summing node.
func NewSum() *Sum { return &Sum{} }

// Process copies in to out.
func (*Sum) Process(_ *Context, in, out [][]float64) {
	for ch := range out {
		core.CopyInto(out[ch], in[ch])
	}
}

// Gain scales its input by a scalar.
type Gain struct {
	gain float64
}

// NewGain returns a gain node at value.
func NewGain(value float64) *Gain { return &Gain{gain: value} }

// SetGain changes the gain, effective from the next quantum.
func (n *Gain) SetGain(value float64) { n.gain = value }

// Gain returns the current gain.
func (n *Gain) Gain() float64 { return n.gain }

// Process writes in*gain to out.
func (n *Gain) Process(_ *Context, in, out [][]float64) {
	for ch := range out {
		vecmath.ScaleBlock(out[ch], in[ch], n.gain)
	}
}

// WaveShaperNode maps its input through a transfer curve.
type WaveShaperNode struct {
	shaper *effects.Waveshaper
}

// NewWaveShaperNode wraps curve.
func NewWaveShaperNode(curve []float64) (*WaveShaperNode, error) {
	ws, err := effects.NewWaveshaper(curve)
	if err != nil {
		return nil, fmt.Errorf("graph: waveshaper: %w", err)
	}

	return &WaveShaperNode{shaper: ws}, nil
}

// SetCurve swaps the transfer curve.
func (n *WaveShaperNode) SetCurve(curve []float64) error {
	return n.shaper.SetCurve(curve)
}

// Curve returns the active transfer curve.
func (n *WaveShaperNode) Curve() []float64 { return n.shaper.Curve() }

// Process shapes every channel.
func (n *WaveShaperNode) Process(_ *Context, in, out [][]float64) {
	for ch := range out {
		core.CopyInto(out[ch], in[ch])
		n.shaper.ProcessInPlace(out[ch])
	}
}

// DelayNode is a wet-only feedback delay with one line per channel. The
// feedback gain is part of the node, which keeps the graph acyclic while
// producing the same signal as delay -> gain -> delay.
type DelayNode struct {
	sampleRate float64
	time       float64
	feedback   float64
	lines      []*effects.FeedbackDelay
}

// NewDelayNode validates the parameters and returns a delay node.
func NewDelayNode(sampleRate, timeSec, feedback float64) (*DelayNode, error) {
	// Validate once up front; per-channel lines are created on first use.
	if _, err := effects.NewFeedbackDelay(sampleRate, timeSec, feedback); err != nil {
		return nil, fmt.Errorf("graph: delay: %w", err)
	}

	return &DelayNode{sampleRate: sampleRate, time: timeSec, feedback: feedback}, nil
}

// SetTime glides every line to seconds.
func (n *DelayNode) SetTime(seconds float64) error {
	for _, line := range n.lines {
		if err := line.SetTime(seconds); err != nil {
			return err
		}
	}

	if len(n.lines) == 0 {
		if _, err := effects.NewFeedbackDelay(n.sampleRate, seconds, n.feedback); err != nil {
			return err
		}
	}

	n.time = seconds

	return nil
}

// SetFeedback changes the loop gain of every line.
func (n *DelayNode) SetFeedback(feedback float64) error {
	for _, line := range n.lines {
		if err := line.SetFeedback(feedback); err != nil {
			return err
		}
	}

	if len(n.lines) == 0 {
		if _, err := effects.NewFeedbackDelay(n.sampleRate, n.time, feedback); err != nil {
			return err
		}
	}

	n.feedback = feedback

	return nil
}

// Time returns the target delay time in seconds.
func (n *DelayNode) Time() float64 { return n.time }

// Feedback returns the loop gain.
func (n *DelayNode) Feedback() float64 { return n.feedback }

// Process writes the wet signal of every channel.
func (n *DelayNode) Process(_ *Context, in, out [][]float64) {
	for len(n.lines) < len(out) {
		// Parameters were validated by the constructor and setters.
		line, _ := effects.NewFeedbackDelay(n.sampleRate, n.time, n.feedback)
		n.lines = append(n.lines, line)
	}

	for ch := range out {
		core.CopyInto(out[ch], in[ch])
		n.lines[ch].ProcessInPlace(out[ch])
	}
}

// CrushNode runs one Bitcrusher per channel. Its hold counters carry across
// quanta, so block-wise output equals a single batch pass.
type CrushNode struct {
	bits     int
	normFreq float64
	crushers []*effects.Bitcrusher
}

// NewCrushNode validates the parameters and returns a crusher node.
func NewCrushNode(bits int, normFreq float64) (*CrushNode, error) {
	if _, err := effects.NewBitcrusher(bits, normFreq); err != nil {
		return nil, fmt.Errorf("graph: bitcrush: %w", err)
	}

	return &CrushNode{bits: bits, normFreq: normFreq}, nil
}

// SetBits changes the quantizer resolution on every channel.
func (n *CrushNode) SetBits(bits int) error {
	if _, err := effects.NewBitcrusher(bits, n.normFreq); err != nil {
		return err
	}

	for _, c := range n.crushers {
		_ = c.SetBits(bits)
	}

	n.bits = bits

	return nil
}

// SetNormFreq changes the hold rate on every channel.
func (n *CrushNode) SetNormFreq(normFreq float64) error {
	if _, err := effects.NewBitcrusher(n.bits, normFreq); err != nil {
		return err
	}

	for _, c := range n.crushers {
		_ = c.SetNormFreq(normFreq)
	}

	n.normFreq = normFreq

	return nil
}

// Bits returns the quantizer resolution.
func (n *CrushNode) Bits() int { return n.bits }

// NormFreq returns the normalized hold frequency.
func (n *CrushNode) NormFreq() float64 { return n.normFreq }

// Process crushes every channel.
func (n *CrushNode) Process(_ *Context, in, out [][]float64) {
	for len(n.crushers) < len(out) {
		c, _ := effects.NewBitcrusher(n.bits, n.normFreq)
		n.crushers = append(n.crushers, c)
	}

	for ch := range out {
		core.CopyInto(out[ch], in[ch])
		n.crushers[ch].ProcessInPlace(out[ch])
	}
}

// BiquadNode filters every channel through its own section sharing one set
// of coefficients.
type BiquadNode struct {
	coeffs   biquad.Coefficients
	sections []*biquad.Section
}

// NewBiquadNode returns a filter node with coeffs.
func NewBiquadNode(coeffs biquad.Coefficients) *BiquadNode {
	return &BiquadNode{coeffs: coeffs}
}

// SetCoefficients updates every section in place, keeping filter state.
func (n *BiquadNode) SetCoefficients(coeffs biquad.Coefficients) {
	n.coeffs = coeffs
	for _, s := range n.sections {
		s.Update(coeffs)
	}
}

// Coefficients returns the active coefficients.
func (n *BiquadNode) Coefficients() biquad.Coefficients { return n.coeffs }

// Reset clears the state of every section.
func (n *BiquadNode) Reset() {
	for _, s := range n.sections {
		s.Reset()
	}
}

// Process filters every channel.
func (n *BiquadNode) Process(_ *Context, in, out [][]float64) {
	for len(n.sections) < len(out) {
		n.sections = append(n.sections, biquad.NewSection(n.coeffs))
	}

	for ch := range out {
		core.CopyInto(out[ch], in[ch])
		n.sections[ch].ProcessBlock(out[ch])
	}
}
