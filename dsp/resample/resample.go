package resample

import (
	"errors"
	"math"
)

var (
	// ErrInvalidRatio indicates an invalid up/down ratio.
	ErrInvalidRatio = errors.New("resample: invalid ratio")
	// ErrInvalidRate indicates an invalid input or output sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
)

// Quality selects the anti-aliasing filter.
type Quality int

const (
	// QualityFast prioritizes lower CPU usage.
	QualityFast Quality = iota
	// QualityBalanced is the default.
	QualityBalanced
	// QualityBest prioritizes stopband attenuation.
	QualityBest
)

type profile struct {
	tapsPerPhase int
	cutoffScale  float64
	kaiserBeta   float64
}

func (q Quality) profile() profile {
	switch q {
	case QualityFast:
		return profile{tapsPerPhase: 16, cutoffScale: 0.88, kaiserBeta: 5}
	case QualityBest:
		return profile{tapsPerPhase: 64, cutoffScale: 0.96, kaiserBeta: 9}
	default:
		return profile{tapsPerPhase: 32, cutoffScale: 0.92, kaiserBeta: 7.5}
	}
}

type config struct {
	quality Quality
	maxDen  int
}

// Option configures a Resampler.
type Option func(*config)

// WithQuality selects a quality mode.
func WithQuality(q Quality) Option {
	return func(c *config) { c.quality = q }
}

// WithMaxDenominator caps the denominator used to approximate a rate ratio.
func WithMaxDenominator(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDen = n
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{quality: QualityBalanced, maxDen: 4096}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Resampler performs rational sample-rate conversion of one channel. State
// is kept between Process calls, so a signal may be fed in blocks.
type Resampler struct {
	up, down int
	taps     int
	phases   [][]float64
	maxPhase int

	phase   int
	next    int // input index of the next output
	totalIn int
	history []float64
}

// NewRational returns a resampler for the ratio up/down.
func NewRational(up, down int, opts ...Option) (*Resampler, error) {
	if up <= 0 || down <= 0 {
		return nil, ErrInvalidRatio
	}

	g := gcd(up, down)
	up /= g
	down /= g

	phases, taps := designPolyphase(up, down, newConfig(opts).quality.profile())

	maxPhase := 0
	for _, p := range phases {
		maxPhase = max(maxPhase, len(p))
	}

	return &Resampler{
		up:       up,
		down:     down,
		taps:     taps,
		phases:   phases,
		maxPhase: maxPhase,
		history:  make([]float64, 0, max(0, maxPhase-1)),
	}, nil
}

// NewForRates returns a resampler from inRate to outRate. The ratio is
// approximated by a fraction whose denominator is at most the configured
// maximum.
func NewForRates(inRate, outRate float64, opts ...Option) (*Resampler, error) {
	if !validRate(inRate) || !validRate(outRate) {
		return nil, ErrInvalidRate
	}

	up, down := approximateRatio(outRate/inRate, newConfig(opts).maxDen)

	return NewRational(up, down, opts...)
}

// Ratio returns the reduced up/down factors.
func (r *Resampler) Ratio() (up, down int) { return r.up, r.down }

// Latency returns the filter delay in output samples.
func (r *Resampler) Latency() float64 {
	return float64(r.taps-1) / 2 / float64(r.down)
}

// Reset clears the stream state.
func (r *Resampler) Reset() {
	r.phase = 0
	r.next = 0
	r.totalIn = 0
	r.history = r.history[:0]
}

// Process converts the next block of input and returns the outputs it
// completes.
func (r *Resampler) Process(input []float64) []float64 {
	if len(input) == 0 {
		return nil
	}

	out := make([]float64, 0, r.PredictOutputLen(len(input)))

	work := make([]float64, len(r.history)+len(input))
	copy(work, r.history)
	copy(work[len(r.history):], input)

	base := r.totalIn - len(r.history)
	last := r.totalIn + len(input) - 1

	for r.next <= last {
		var y float64

		for k, c := range r.phases[r.phase] {
			idx := r.next - k
			if idx < base {
				break
			}

			y += c * work[idx-base]
		}

		out = append(out, y)

		r.phase += r.down
		r.next += r.phase / r.up
		r.phase %= r.up
	}

	r.totalIn += len(input)

	keep := min(max(0, r.maxPhase-1), len(work))
	r.history = append(r.history[:0], work[len(work)-keep:]...)

	return out
}

// PredictOutputLen returns how many samples the next Process call of
// inputLen samples will produce.
func (r *Resampler) PredictOutputLen(inputLen int) int {
	if inputLen <= 0 {
		return 0
	}

	last := r.totalIn + inputLen - 1
	next, phase := r.next, r.phase

	n := 0
	for next <= last {
		n++
		phase += r.down
		next += phase / r.up
		phase %= r.up
	}

	return n
}

func validRate(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
