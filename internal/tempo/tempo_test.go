package tempo

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
)

func clickTrack(t *testing.T, bpm, seconds, sampleRate float64) *buffer.Buffer {
	t.Helper()

	b, err := buffer.New(1, int(seconds*sampleRate), sampleRate)
	if err != nil {
		t.Fatal(err)
	}

	data := b.Channel(0)
	period := 60 / bpm * sampleRate
	burst := int(0.01 * sampleRate)

	for beat := 0.0; int(beat) < len(data); beat += period {
		start := int(beat)
		for i := 0; i < burst && start+i < len(data); i++ {
			data[start+i] = math.Sin(float64(i)*0.9) * 0.8
		}
	}

	return b
}

func TestDetectClickTrack(t *testing.T) {
	for _, want := range []float64{86, 120} {
		got, ok := Detect(clickTrack(t, want, 12, 8000))
		if !ok {
			t.Fatalf("Detect(%v BPM) not ok", want)
		}

		if math.Abs(got-want) > 3 {
			t.Fatalf("Detect(%v BPM) = %v", want, got)
		}
	}
}

func TestDetectSilenceAndShortInput(t *testing.T) {
	silent, err := buffer.New(2, 80000, 8000)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := Detect(silent); ok {
		t.Fatal("Detect(silence) reported a tempo")
	}

	if _, ok := Detect(clickTrack(t, 120, 1, 8000)); ok {
		t.Fatal("Detect(1 s) reported a tempo")
	}

	if _, ok := Detect(nil); ok {
		t.Fatal("Detect(nil) reported a tempo")
	}
}
