package sampler

import (
	"math"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
)

// Region is a time interval [Start, End) in seconds over the committed
// buffer.
type Region struct {
	ID    string
	Start float64
	End   float64
	Loop  bool
}

// newRegion returns a region with a fresh ID, ordered and clamped to
// [0, duration]. It reports false when the region covers no frames of buf.
func newRegion(buf *buffer.Buffer, start, end float64) (Region, bool) {
	if buf == nil || math.IsNaN(start) || math.IsNaN(end) {
		return Region{}, false
	}

	if end < start {
		start, end = end, start
	}

	d := buf.Duration()
	start = math.Max(0, math.Min(start, d))
	end = math.Max(0, math.Min(end, d))

	r := Region{ID: uuid.NewString(), Start: start, End: end}
	if r.Frames(buf) <= 0 {
		return Region{}, false
	}

	return r, true
}

// Duration returns End - Start.
func (r Region) Duration() float64 { return r.End - r.Start }

// FrameRange returns the frame bounds of r in buf.
func (r Region) FrameRange(buf *buffer.Buffer) (start, end int) {
	return buf.FrameAt(r.Start), buf.FrameAt(r.End)
}

// Frames returns the number of frames r covers in buf.
func (r Region) Frames(buf *buffer.Buffer) int {
	start, end := r.FrameRange(buf)
	return end - start
}

// Ratios returns the bounds of r as fractions of the buffer duration.
func (r Region) Ratios(buf *buffer.Buffer) (float64, float64) {
	d := buf.Duration()
	if d <= 0 {
		return 0, 0
	}

	return r.Start / d, r.End / d
}
