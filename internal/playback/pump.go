// Package playback moves live chain output to the sound card.
package playback

import (
	"errors"
	"sync"

	"github.com/cwbudde/algo-sampler/dsp/core"
)

// ErrUnavailable is returned when the binary was built without an audio
// backend.
var ErrUnavailable = errors.New("playback: no audio backend")

// Source renders live frames. *sampler.Chain implements it.
type Source interface {
	Process(out [][]float64) error
	Channels() int
}

// Pump converts float64 chain output into the float32 frames the device
// callback expects. It keeps its scratch buffers between calls.
type Pump struct {
	mu      sync.Mutex
	src     Source
	scratch [][]float64
	clipped int64
	err     error
}

// NewPump returns a Pump reading from src.
func NewPump(src Source) *Pump {
	return &Pump{src: src}
}

// Fill renders len(out[0]) frames into out. Device channels beyond the
// source width repeat the last source channel. Samples are clamped to
// [-1, 1]. On a render error out is silenced and the error is kept for Err.
func (p *Pump) Fill(out [][]float32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(out) == 0 {
		return
	}

	frames := len(out[0])
	p.ensure(frames)

	if err := p.src.Process(p.scratch); err != nil {
		p.err = err

		for _, ch := range out {
			clear(ch)
		}

		return
	}

	for ch, dst := range out {
		src := p.scratch[min(ch, len(p.scratch)-1)]
		for i := range dst {
			v := src[i]
			if v > 1 || v < -1 {
				p.clipped++
				v = core.Clamp(v, -1, 1)
			}

			dst[i] = float32(v)
		}
	}
}

func (p *Pump) ensure(frames int) {
	n := p.src.Channels()
	if len(p.scratch) == n && len(p.scratch[0]) == frames {
		return
	}

	p.scratch = make([][]float64, n)
	for i := range p.scratch {
		p.scratch[i] = make([]float64, frames)
	}
}

// Clipped returns how many samples were clamped so far.
func (p *Pump) Clipped() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.clipped
}

// Err returns the last render error, if any.
func (p *Pump) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}
