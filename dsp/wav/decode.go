package wav

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
)

// ErrInvalidFile is returned when the input is not a decodable PCM WAV file.
var ErrInvalidFile = errors.New("wav: invalid file")

// Decode reads a PCM WAV file into a planar float buffer. 16-bit input is
// scaled with the inverse of the encoder's asymmetric mapping; other depths
// are scaled by 2^(bits-1).
func Decode(r io.ReadSeeker) (*buffer.Buffer, error) {
	dec := gowav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidFile
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav: decode pcm: %w", err)
	}

	bits := int(dec.BitDepth)
	if bits == 0 && pcm != nil {
		bits = pcm.SourceBitDepth
	}

	return fromPCM(pcm, bits, float64(dec.SampleRate))
}

// fromPCM deinterleaves an integer PCM buffer into a planar float buffer.
func fromPCM(pcm *audio.IntBuffer, bits int, sampleRate float64) (*buffer.Buffer, error) {
	if pcm == nil || pcm.Format == nil || pcm.Format.NumChannels <= 0 {
		return nil, ErrInvalidFile
	}

	if bits <= 0 || bits > 32 {
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidFile, bits)
	}

	channels := pcm.Format.NumChannels
	frames := len(pcm.Data) / channels

	out, err := buffer.New(channels, frames, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}

	toFloat := sampleScaler(bits)
	for ch := range channels {
		dst := out.Channel(ch)
		for i := range dst {
			dst[i] = toFloat(pcm.Data[i*channels+ch])
		}
	}

	return out, nil
}

func sampleScaler(bits int) func(int) float64 {
	switch bits {
	case 8:
		return func(v int) float64 { return float64(v-128) / 128 }
	case 16:
		return func(v int) float64 {
			if v < 0 {
				return float64(v) / 0x8000
			}

			return float64(v) / 0x7FFF
		}
	default:
		scale := math.Exp2(float64(bits - 1))
		return func(v int) float64 { return float64(v) / scale }
	}
}
