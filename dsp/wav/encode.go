package wav

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
)

const (
	// HeaderSize is the size of the canonical header written by Encode.
	HeaderSize = 44

	bitsPerSample = 16
	formatPCM     = 1
	fmtChunkSize  = 16
)

// Encode renders the first frames frames of b as a 16-bit PCM WAV file.
// frames is clamped to the buffer length. Samples are clamped to [-1, 1]
// and scaled by 0x8000 when negative and 0x7FFF otherwise.
func Encode(b *buffer.Buffer, frames int) []byte {
	frames = max(0, min(frames, b.Frames()))
	channels := b.NumChannels()

	var out bytes.Buffer
	out.Grow(HeaderSize + frames*channels*2)

	_ = WriteTo(&out, b, frames)

	return out.Bytes()
}

// WriteTo streams the same bytes Encode returns into w.
func WriteTo(w io.Writer, b *buffer.Buffer, frames int) error {
	frames = max(0, min(frames, b.Frames()))
	channels := b.NumChannels()
	blockAlign := channels * bitsPerSample / 8
	dataLen := frames * blockAlign
	rate := uint32(math.Round(b.SampleRate))

	hdr := make([]byte, HeaderSize)
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(36+dataLen))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], fmtChunkSize)
	binary.LittleEndian.PutUint16(hdr[20:22], formatPCM)
	binary.LittleEndian.PutUint16(hdr[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(hdr[24:28], rate)
	binary.LittleEndian.PutUint32(hdr[28:32], rate*uint32(blockAlign))
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:36], bitsPerSample)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataLen))

	if _, err := w.Write(hdr); err != nil {
		return err
	}

	data := make([]byte, dataLen)
	off := 0
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			binary.LittleEndian.PutUint16(data[off:], uint16(PCM16(b.Channel(ch)[i])))
			off += 2
		}
	}

	_, err := w.Write(data)

	return err
}

// PCM16 converts one float sample to signed 16-bit PCM using the
// asymmetric scaling of the encoder. Fractions are truncated toward zero.
func PCM16(s float64) int16 {
	switch {
	case math.IsNaN(s):
		return 0
	case s > 1:
		s = 1
	case s < -1:
		s = -1
	}

	if s < 0 {
		return int16(s * 0x8000)
	}

	return int16(s * 0x7FFF)
}
