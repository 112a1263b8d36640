package graph

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-sampler/dsp/core"
)

func TestAnalyserFindsTone(t *testing.T) {
	const (
		sr   = 8192.0
		tone = 1024.0
	)

	data := make([]float64, 8192)
	for i := range data {
		data[i] = 0.5 * math.Sin(2*math.Pi*tone*float64(i)/sr)
	}

	an, err := NewAnalyser(WithFFTSize(1024), WithSmoothing(0))
	if err != nil {
		t.Fatal(err)
	}

	g := newGraph(t, 1, core.WithSampleRate(sr))
	src := NewSource(monoBuffer(t, sr, data))
	s := g.Add("source", src)
	a := g.Add("analyser", an)
	_ = g.Connect(s, a)
	_ = g.Connect(a, g.Destination())

	src.Start(0)
	out := render(t, g, 1, len(data))

	for i := range data {
		if out[0][i] != data[i] {
			t.Fatalf("analyser is not transparent at %d", i)
		}
	}

	db := an.SpectrumDB([]float64{tone, 3000})
	if math.Abs(db[0]-20*math.Log10(0.5)) > 0.5 {
		t.Fatalf("level at tone = %v dB, want about -6", db[0])
	}

	if db[1] > db[0]-40 {
		t.Fatalf("level off tone = %v dB, want far below %v", db[1], db[0])
	}

	if math.Abs(an.Peak()-0.5) > 0.01 {
		t.Fatalf("Peak() = %v, want ~0.5", an.Peak())
	}
}

func TestAnalyserSilentBeforeFirstFrame(t *testing.T) {
	an, err := NewAnalyser()
	if err != nil {
		t.Fatal(err)
	}

	for _, v := range an.SpectrumDB([]float64{100, 1000}) {
		if v != FloorDB {
			t.Fatalf("SpectrumDB = %v, want %v", v, FloorDB)
		}
	}

	if an.FFTSize() != 2048 {
		t.Fatalf("FFTSize() = %d, want 2048", an.FFTSize())
	}
}
