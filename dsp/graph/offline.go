package graph

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
	"github.com/cwbudde/algo-sampler/dsp/core"
)

// Offline renders a graph of fixed length as fast as possible.
type Offline struct {
	*Graph

	frames int
}

// NewOffline returns an offline context producing frames frames.
func NewOffline(channels, frames int, opts ...core.RenderOption) (*Offline, error) {
	if frames < 0 {
		return nil, fmt.Errorf("graph: offline length must be >= 0: %d", frames)
	}

	g, err := New(channels, opts...)
	if err != nil {
		return nil, err
	}

	return &Offline{Graph: g, frames: frames}, nil
}

// Length returns the render length in frames.
func (o *Offline) Length() int { return o.frames }

// Render pulls every quantum to completion and returns the destination
// output. ctx is checked between quanta. The context releases its node
// buffers afterwards and cannot render again.
func (o *Offline) Render(ctx context.Context) (*buffer.Buffer, error) {
	defer o.Close()

	out, err := buffer.New(o.Channels(), o.frames, o.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("graph: offline: %w", err)
	}

	if o.frames == 0 {
		return out, nil
	}

	if err := o.render(ctx, out.Channels()); err != nil {
		return nil, fmt.Errorf("graph: offline render: %w", err)
	}

	return out, nil
}
