package buffer

import (
	"fmt"
	"math"
)

// Buffer holds planar float64 sample data at a fixed sample rate.
// All channels have the same number of frames.
type Buffer struct {
	SampleRate float64
	channels   [][]float64
}

// New returns a zero-filled Buffer with the given shape.
func New(channels, frames int, sampleRate float64) (*Buffer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("buffer: channel count must be > 0: %d", channels)
	}

	if frames < 0 {
		return nil, fmt.Errorf("buffer: frame count must be >= 0: %d", frames)
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("buffer: sample rate must be > 0: %f", sampleRate)
	}

	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, frames)
	}

	return &Buffer{SampleRate: sampleRate, channels: data}, nil
}

// FromChannels wraps planar channel data without copying. All channels must
// have the same length.
func FromChannels(sampleRate float64, channels ...[]float64) (*Buffer, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("buffer: at least one channel required")
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("buffer: sample rate must be > 0: %f", sampleRate)
	}

	n := len(channels[0])
	for ch, data := range channels {
		if len(data) != n {
			return nil, fmt.Errorf("buffer: channel %d has %d frames, want %d", ch, len(data), n)
		}
	}

	return &Buffer{SampleRate: sampleRate, channels: channels}, nil
}

// NewLike returns a zero-filled Buffer with the channel count and sample
// rate of b and the given frame count.
func NewLike(b *Buffer, frames int) *Buffer {
	if frames < 0 {
		frames = 0
	}

	data := make([][]float64, len(b.channels))
	for ch := range data {
		data[ch] = make([]float64, frames)
	}

	return &Buffer{SampleRate: b.SampleRate, channels: data}
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int { return len(b.channels) }

// Frames returns the number of frames per channel.
func (b *Buffer) Frames() int {
	if len(b.channels) == 0 {
		return 0
	}

	return len(b.channels[0])
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	return float64(b.Frames()) / b.SampleRate
}

// Channel returns the samples of channel ch. The slice aliases the buffer.
func (b *Buffer) Channel(ch int) []float64 {
	return b.channels[ch]
}

// Channels returns all channel slices. The slices alias the buffer.
func (b *Buffer) Channels() [][]float64 {
	return b.channels
}

// FrameAt converts a time in seconds to a frame index clamped to [0, Frames()].
func (b *Buffer) FrameAt(seconds float64) int {
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}

	f := math.Floor(seconds * b.SampleRate)
	if f >= float64(b.Frames()) {
		return b.Frames()
	}

	return int(f)
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	data := make([][]float64, len(b.channels))
	for ch, src := range b.channels {
		data[ch] = make([]float64, len(src))
		copy(data[ch], src)
	}

	return &Buffer{SampleRate: b.SampleRate, channels: data}
}

// Equal reports whether a and b have the same shape, rate and samples.
func Equal(a, b *Buffer) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.SampleRate != b.SampleRate || len(a.channels) != len(b.channels) {
		return false
	}

	for ch := range a.channels {
		x, y := a.channels[ch], b.channels[ch]
		if len(x) != len(y) {
			return false
		}

		for i := range x {
			if x[i] != y[i] {
				return false
			}
		}
	}

	return true
}
