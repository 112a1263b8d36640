package resample

import (
	"math"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
)

// Buffer converts every channel of b to rate and returns a new buffer. The
// filter latency is removed and the output holds round(frames*up/down)
// frames. When b is already at rate it is returned as is.
func Buffer(b *buffer.Buffer, rate float64, opts ...Option) (*buffer.Buffer, error) {
	if !validRate(rate) || !validRate(b.SampleRate) {
		return nil, ErrInvalidRate
	}

	if b.SampleRate == rate {
		return b, nil
	}

	r, err := NewForRates(b.SampleRate, rate, opts...)
	if err != nil {
		return nil, err
	}

	frames := int(math.Round(float64(b.Frames()) * float64(r.up) / float64(r.down)))
	skip := int(math.Round(r.Latency()))
	tail := make([]float64, max(r.maxPhase, 1))

	out, err := buffer.New(b.NumChannels(), frames, rate)
	if err != nil {
		return nil, err
	}

	for ch := range b.NumChannels() {
		r.Reset()

		y := r.Process(b.Channel(ch))
		for len(y) < skip+frames {
			y = append(y, r.Process(tail)...)
		}

		copy(out.Channel(ch), y[skip:skip+frames])
	}

	return out, nil
}
