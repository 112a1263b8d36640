package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
	"github.com/cwbudde/algo-sampler/dsp/core"
	"github.com/cwbudde/algo-sampler/dsp/effects"
	"github.com/cwbudde/algo-sampler/dsp/graph"
)

var (
	// ErrNoSource is returned when there is nothing to render.
	ErrNoSource = errors.New("render: no source buffer")
	// ErrUnknownEffect is returned for a nil or foreign Effect.
	ErrUnknownEffect = errors.New("render: unknown effect")
)

// RenderEffect returns a new full-length buffer with fx baked into
// [start, end) seconds of src. src is never modified and samples outside the
// range are copied unchanged. A range covering no frames returns src itself.
//
// Reverse is applied directly. The other effects render the range as an
// isolated clip through a disposable offline graph; bitcrushing runs as a
// batch pass over the rendered clip.
func RenderEffect(ctx context.Context, src *buffer.Buffer, start, end float64, fx Effect, opts ...core.RenderOption) (*buffer.Buffer, error) {
	if src == nil {
		return nil, ErrNoSource
	}

	startFrame := src.FrameAt(start)
	endFrame := src.FrameAt(end)

	if endFrame-startFrame <= 0 {
		return src, nil
	}

	if _, ok := fx.(Reverse); ok {
		return buffer.ReverseRange(src, start, end), nil
	}

	clip, ok := buffer.SliceFrames(src, startFrame, endFrame)
	if !ok {
		return src, nil
	}

	rendered, err := renderClip(ctx, clip, fx, opts)
	if err != nil {
		return nil, err
	}

	return buffer.Splice(src, rendered, startFrame), nil
}

func renderClip(ctx context.Context, clip *buffer.Buffer, fx Effect, opts []core.RenderOption) (*buffer.Buffer, error) {
	opts = append(opts[:len(opts):len(opts)], core.WithSampleRate(clip.SampleRate))

	off, err := graph.NewOffline(clip.NumChannels(), clip.Frames(), opts...)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	src := graph.NewSource(clip)
	in := off.Add("clip", src)
	out := off.Destination()

	var post func(*buffer.Buffer) error

	switch e := fx.(type) {
	case Distortion:
		ws, err := distortionNode(e.Drive)
		if err != nil {
			off.Close()
			return nil, fmt.Errorf("render: %s: %w", e, err)
		}

		shaper := off.Add("shaper", ws)
		connect(off, in, shaper)
		connect(off, shaper, out)
	case Delay:
		dn, err := graph.NewDelayNode(clip.SampleRate, e.Time, e.Feedback)
		if err != nil {
			off.Close()
			return nil, fmt.Errorf("render: %s: %w", e, err)
		}

		delay := off.Add("delay", dn)
		connect(off, in, out)
		connect(off, in, delay)
		connect(off, delay, out)
	case Bitcrush:
		if _, err := effects.NewBitcrusher(e.Bits, e.NormFreq); err != nil {
			off.Close()
			return nil, fmt.Errorf("render: %s: %w", e, err)
		}

		connect(off, in, out)

		post = func(b *buffer.Buffer) error {
			_, err := effects.Bitcrush(b.Channels(), e.Bits, e.NormFreq)
			return err
		}
	default:
		off.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnknownEffect, fx)
	}

	src.Start(0)

	rendered, err := off.Render(ctx)
	if err != nil {
		return nil, fmt.Errorf("render: %s: %w", fx, err)
	}

	if post != nil {
		if err := post(rendered); err != nil {
			return nil, fmt.Errorf("render: %s: %w", fx, err)
		}
	}

	return rendered, nil
}

func distortionNode(drive float64) (*graph.WaveShaperNode, error) {
	ws, err := effects.NewDistortion(drive)
	if err != nil {
		return nil, err
	}

	return graph.NewWaveShaperNode(ws.Curve())
}

// connect links nodes created by the caller on the same graph. Such
// connections cannot fail.
func connect(g *graph.Offline, from, to graph.NodeID) {
	_ = g.Connect(from, to)
}
