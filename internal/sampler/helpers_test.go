package sampler

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
)

const testRate = 1000

func constBuffer(t *testing.T, frames int, v float64) *buffer.Buffer {
	t.Helper()

	l := make([]float64, frames)
	r := make([]float64, frames)

	for i := range l {
		l[i] = v
		r[i] = v
	}

	b, err := buffer.FromChannels(testRate, l, r)
	if err != nil {
		t.Fatalf("FromChannels: %v", err)
	}

	return b
}

func rampBuffer(t *testing.T, frames int) *buffer.Buffer {
	t.Helper()

	s := make([]float64, frames)
	for i := range s {
		s[i] = float64(i+1) / float64(frames)
	}

	b, err := buffer.FromChannels(testRate, s)
	if err != nil {
		t.Fatalf("FromChannels: %v", err)
	}

	return b
}

func testOptions() []Option {
	return []Option{WithSampleRate(testRate), WithBlockSize(64)}
}

func newTestChain(t *testing.T) *Chain {
	t.Helper()

	c, err := NewChain(testOptions()...)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	t.Cleanup(c.Close)

	return c
}

func pull(t *testing.T, c *Chain, frames int) [][]float64 {
	t.Helper()

	out := make([][]float64, c.Channels())
	for i := range out {
		out[i] = make([]float64, frames)
	}

	if err := c.Process(out); err != nil {
		t.Fatalf("Process: %v", err)
	}

	return out
}

func mustRegion(t *testing.T, buf *buffer.Buffer, start, end float64) Region {
	t.Helper()

	r, ok := newRegion(buf, start, end)
	if !ok {
		t.Fatalf("newRegion(%g, %g) covers no frames", start, end)
	}

	return r
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
