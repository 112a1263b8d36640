package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/go-audio/audio"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
)

func sineBuffer(t *testing.T, channels, frames int, sampleRate float64) *buffer.Buffer {
	t.Helper()

	b, err := buffer.New(channels, frames, sampleRate)
	if err != nil {
		t.Fatalf("buffer.New() error = %v", err)
	}

	for ch := 0; ch < channels; ch++ {
		data := b.Channel(ch)
		for i := range data {
			data[i] = 0.9 * math.Sin(2*math.Pi*float64(i)*float64(ch+1)/37)
		}
	}

	return b
}

func TestEncodeHeader(t *testing.T) {
	b := sineBuffer(t, 2, 100, 44100)
	data := Encode(b, b.Frames())

	if len(data) != HeaderSize+100*2*2 {
		t.Fatalf("len = %d, want %d", len(data), HeaderSize+400)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"riff", string(data[0:4]), "RIFF"},
		{"riff size", binary.LittleEndian.Uint32(data[4:8]), uint32(36 + 400)},
		{"wave", string(data[8:12]), "WAVE"},
		{"fmt", string(data[12:16]), "fmt "},
		{"fmt size", binary.LittleEndian.Uint32(data[16:20]), uint32(16)},
		{"format", binary.LittleEndian.Uint16(data[20:22]), uint16(1)},
		{"channels", binary.LittleEndian.Uint16(data[22:24]), uint16(2)},
		{"rate", binary.LittleEndian.Uint32(data[24:28]), uint32(44100)},
		{"byte rate", binary.LittleEndian.Uint32(data[28:32]), uint32(44100 * 4)},
		{"block align", binary.LittleEndian.Uint16(data[32:34]), uint16(4)},
		{"bits", binary.LittleEndian.Uint16(data[34:36]), uint16(16)},
		{"data", string(data[36:40]), "data"},
		{"data size", binary.LittleEndian.Uint32(data[40:44]), uint32(400)},
	}

	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestPCM16Scaling(t *testing.T) {
	tests := []struct {
		in   float64
		want int16
	}{
		{in: 0, want: 0},
		{in: 1, want: 0x7FFF},
		{in: -1, want: -0x8000},
		{in: 2, want: 0x7FFF},
		{in: -3, want: -0x8000},
		{in: 0.5, want: 16383},
		{in: -0.5, want: -16384},
		{in: math.NaN(), want: 0},
	}

	for _, tt := range tests {
		if got := PCM16(tt.in); got != tt.want {
			t.Fatalf("PCM16(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEncodeIsInterleavedAndClamped(t *testing.T) {
	b, err := buffer.FromChannels(8000, []float64{1.5, -0.25}, []float64{-2, 0.25})
	if err != nil {
		t.Fatalf("FromChannels() error = %v", err)
	}

	data := Encode(b, 2)
	pcm := data[HeaderSize:]

	want := []int16{0x7FFF, -0x8000, -0x2000, 0x1FFF}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		if got != w {
			t.Fatalf("sample %d = %d, want %d", i, got, w)
		}
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	b := sineBuffer(t, 1, 512, 22050)
	if !bytes.Equal(Encode(b, 512), Encode(b, 512)) {
		t.Fatal("Encode output differs between calls")
	}
}

func TestEncodeClampsFrameCount(t *testing.T) {
	b := sineBuffer(t, 1, 10, 8000)
	if got := len(Encode(b, 1000)); got != HeaderSize+20 {
		t.Fatalf("len = %d, want %d", got, HeaderSize+20)
	}

	if got := len(Encode(b, -5)); got != HeaderSize {
		t.Fatalf("len = %d, want %d", got, HeaderSize)
	}
}

func TestRoundTrip(t *testing.T) {
	const lsb = 1.0 / 0x7FFF

	for _, channels := range []int{1, 2} {
		b := sineBuffer(t, channels, 1000, 48000)

		got, err := Decode(bytes.NewReader(Encode(b, b.Frames())))
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}

		if got.NumChannels() != channels || got.Frames() != b.Frames() || got.SampleRate != 48000 {
			t.Fatalf("shape = %dx%d @%v, want %dx%d @48000",
				got.NumChannels(), got.Frames(), got.SampleRate, channels, b.Frames())
		}

		for ch := 0; ch < channels; ch++ {
			for i, want := range b.Channel(ch) {
				if diff := math.Abs(got.Channel(ch)[i] - want); diff > lsb {
					t.Fatalf("ch %d sample %d: got %v want %v (diff %g)", ch, i, got.Channel(ch)[i], want, diff)
				}
			}
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("definitely not a wav file at all....................")))
	if !errors.Is(err, ErrInvalidFile) {
		t.Fatalf("Decode() error = %v, want ErrInvalidFile", err)
	}
}

func TestFromPCMDepths(t *testing.T) {
	tests := []struct {
		bits int
		data []int
		want []float64
	}{
		{8, []int{128, 255, 0, 192}, []float64{0, 127.0 / 128, -1, 0.5}},
		{16, []int{0, 0x7FFF, -0x8000, 0x4000}, []float64{0, 1, -1, 0x4000 / float64(0x7FFF)}},
		{24, []int{0, 1 << 22, -(1 << 23), -(1 << 22)}, []float64{0, 0.5, -1, -0.5}},
	}

	for _, tt := range tests {
		pcm := &audio.IntBuffer{
			Format: &audio.Format{NumChannels: 2, SampleRate: 8000},
			Data:   tt.data,
		}

		b, err := fromPCM(pcm, tt.bits, 8000)
		if err != nil {
			t.Fatalf("%d bits: %v", tt.bits, err)
		}

		got := []float64{b.Channel(0)[0], b.Channel(1)[0], b.Channel(0)[1], b.Channel(1)[1]}
		for i := range got {
			if math.Abs(got[i]-tt.want[i]) > 1e-12 {
				t.Fatalf("%d bits: sample %d = %v, want %v", tt.bits, i, got[i], tt.want[i])
			}
		}
	}

	if _, err := fromPCM(&audio.IntBuffer{Format: &audio.Format{NumChannels: 1}}, 40, 8000); !errors.Is(err, ErrInvalidFile) {
		t.Fatalf("40 bits: err = %v, want ErrInvalidFile", err)
	}
}
