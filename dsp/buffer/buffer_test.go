package buffer

import (
	"math"
	"testing"
)

func rampBuffer(t *testing.T, channels, frames int) *Buffer {
	t.Helper()

	b, err := New(channels, frames, 1000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for ch := 0; ch < channels; ch++ {
		data := b.Channel(ch)
		for i := range data {
			data[i] = float64(ch*10000+i) / 100000
		}
	}

	return b
}

func TestNewValidates(t *testing.T) {
	tests := []struct {
		name       string
		channels   int
		frames     int
		sampleRate float64
	}{
		{name: "no channels", channels: 0, frames: 4, sampleRate: 44100},
		{name: "negative frames", channels: 1, frames: -1, sampleRate: 44100},
		{name: "zero rate", channels: 1, frames: 4, sampleRate: 0},
		{name: "nan rate", channels: 1, frames: 4, sampleRate: math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.channels, tt.frames, tt.sampleRate); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFromChannelsRejectsRaggedData(t *testing.T) {
	if _, err := FromChannels(44100, []float64{1, 2}, []float64{1}); err == nil {
		t.Fatal("expected error for ragged channels")
	}
}

func TestFrameAtClamps(t *testing.T) {
	b := rampBuffer(t, 1, 1000)

	tests := []struct {
		seconds float64
		want    int
	}{
		{-1, 0},
		{0, 0},
		{0.2505, 250},
		{1, 1000},
		{5, 1000},
	}

	for _, tt := range tests {
		if got := b.FrameAt(tt.seconds); got != tt.want {
			t.Fatalf("FrameAt(%v) = %d, want %d", tt.seconds, got, tt.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	b := rampBuffer(t, 2, 16)
	c := b.Clone()

	c.Channel(1)[3] = 42
	if b.Channel(1)[3] == 42 {
		t.Fatal("Clone shares memory with the original")
	}

	if Equal(b, c) {
		t.Fatal("Equal() = true after modifying the clone")
	}
}

func TestDuration(t *testing.T) {
	b := rampBuffer(t, 1, 2500)
	if got := b.Duration(); got != 2.5 {
		t.Fatalf("Duration() = %v, want 2.5", got)
	}
}
