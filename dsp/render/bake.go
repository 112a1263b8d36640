package render

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
	"github.com/cwbudde/algo-sampler/dsp/core"
	"github.com/cwbudde/algo-sampler/dsp/eq"
	"github.com/cwbudde/algo-sampler/dsp/graph"
	"github.com/cwbudde/algo-sampler/dsp/wav"
)

// NormalizeTarget is the peak level of exported audio.
const NormalizeTarget = 0.98

// Mix is the committed signal chain state applied on export.
type Mix struct {
	Gains  eq.Gains
	Master float64
}

// Bake renders src through the ten equalizer bands and the master gain.
// Preview effects are not part of a Mix and never reach the result.
func Bake(ctx context.Context, src *buffer.Buffer, mix Mix, opts ...core.RenderOption) (*buffer.Buffer, error) {
	if src == nil {
		return nil, ErrNoSource
	}

	opts = append(opts[:len(opts):len(opts)], core.WithSampleRate(src.SampleRate))

	off, err := graph.NewOffline(src.NumChannels(), src.Frames(), opts...)
	if err != nil {
		return nil, fmt.Errorf("render: bake: %w", err)
	}

	source := graph.NewSource(src)
	prev := off.Add("source", source)

	for i, c := range eq.Coefficients(mix.Gains, src.SampleRate) {
		band := off.Add(fmt.Sprintf("eq%d", i), graph.NewBiquadNode(c))
		connect(off, prev, band)
		prev = band
	}

	master := off.Add("master", graph.NewGain(mix.Master))
	connect(off, prev, master)
	connect(off, master, off.Destination())

	source.Start(0)

	out, err := off.Render(ctx)
	if err != nil {
		return nil, fmt.Errorf("render: bake: %w", err)
	}

	return out, nil
}

// Export bakes src, peak-normalizes it to NormalizeTarget and encodes it as
// 16-bit PCM WAV. A silent result is encoded without scaling.
func Export(ctx context.Context, src *buffer.Buffer, mix Mix, opts ...core.RenderOption) ([]byte, error) {
	baked, err := Bake(ctx, src, mix, opts...)
	if err != nil {
		return nil, err
	}

	buffer.Normalize(baked, NormalizeTarget)

	return wav.Encode(baked, baked.Frames()), nil
}
