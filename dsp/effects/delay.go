package effects

import (
	"fmt"
	"math"
)

const (
	// MinDelayTime and MaxDelayTime bound the delay time in seconds.
	MinDelayTime = 0.01
	MaxDelayTime = 1.0

	// MaxDelayFeedback bounds the loop gain.
	MaxDelayFeedback = 0.9

	defaultDelayRampSeconds = 0.03
)

// FeedbackDelay is a wet-only delay line with a gain in its feedback loop:
//
//	w[n] = d[n-D]
//	d[n] = x[n] + feedback*w[n]
//
// The output is w; callers sum it with the dry signal. Time changes glide
// linearly to the new value over a short ramp to avoid clicks.
type FeedbackDelay struct {
	sampleRate float64
	feedback   float64
	timeSec    float64

	current float64 // delay in samples, fractional while ramping
	target  float64
	step    float64
	ramp    int

	buffer []float64
	write  int
}

// NewFeedbackDelay creates a delay at time seconds with the given feedback.
// The time is applied immediately, without a ramp.
func NewFeedbackDelay(sampleRate, timeSec, feedback float64) (*FeedbackDelay, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("delay sample rate must be > 0: %f", sampleRate)
	}

	d := &FeedbackDelay{sampleRate: sampleRate}

	size := int(math.Ceil(MaxDelayTime*sampleRate)) + 2
	d.buffer = make([]float64, size)
	d.ramp = max(1, int(defaultDelayRampSeconds*sampleRate))

	if err := d.SetFeedback(feedback); err != nil {
		return nil, err
	}

	if err := validDelayTime(timeSec); err != nil {
		return nil, err
	}

	d.timeSec = timeSec
	d.current = d.delaySamples(timeSec)
	d.target = d.current

	return d, nil
}

// SetTime glides the delay time to seconds over the ramp window.
func (d *FeedbackDelay) SetTime(seconds float64) error {
	if err := validDelayTime(seconds); err != nil {
		return err
	}

	d.timeSec = seconds
	d.target = d.delaySamples(seconds)
	d.step = (d.target - d.current) / float64(d.ramp)

	return nil
}

// SetFeedback sets the loop gain in [0, MaxDelayFeedback]. Takes effect immediately.
func (d *FeedbackDelay) SetFeedback(feedback float64) error {
	if feedback < 0 || feedback > MaxDelayFeedback || math.IsNaN(feedback) {
		return fmt.Errorf("delay feedback must be in [0, %g]: %f", MaxDelayFeedback, feedback)
	}

	d.feedback = feedback

	return nil
}

// Time returns the target delay time in seconds.
func (d *FeedbackDelay) Time() float64 { return d.timeSec }

// Feedback returns the loop gain.
func (d *FeedbackDelay) Feedback() float64 { return d.feedback }

// Reset clears the delay line and jumps to the target time.
func (d *FeedbackDelay) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}

	d.write = 0
	d.current = d.target
	d.step = 0
}

// ProcessSample processes one sample and returns the wet output.
func (d *FeedbackDelay) ProcessSample(x float64) float64 {
	if d.current != d.target {
		d.current += d.step
		if (d.step > 0 && d.current > d.target) || (d.step < 0 && d.current < d.target) {
			d.current = d.target
		}
	}

	wet := d.read(d.current)

	d.buffer[d.write] = x + d.feedback*wet
	d.write++
	if d.write >= len(d.buffer) {
		d.write = 0
	}

	return wet
}

// ProcessInPlace replaces buf with the wet output.
func (d *FeedbackDelay) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = d.ProcessSample(buf[i])
	}
}

func (d *FeedbackDelay) read(delay float64) float64 {
	n := len(d.buffer)
	whole := int(delay)
	frac := delay - float64(whole)

	i0 := d.write - whole
	if i0 < 0 {
		i0 += n
	}

	if frac == 0 {
		return d.buffer[i0]
	}

	i1 := i0 - 1
	if i1 < 0 {
		i1 += n
	}

	return d.buffer[i0] + frac*(d.buffer[i1]-d.buffer[i0])
}

func (d *FeedbackDelay) delaySamples(seconds float64) float64 {
	return math.Max(1, math.Round(seconds*d.sampleRate))
}

func validDelayTime(seconds float64) error {
	if seconds < MinDelayTime || seconds > MaxDelayTime || math.IsNaN(seconds) {
		return fmt.Errorf("delay time must be in [%g, %g]: %f", MinDelayTime, MaxDelayTime, seconds)
	}

	return nil
}
