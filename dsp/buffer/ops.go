package buffer

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Slice extracts the frames [floor(startRatio*N), floor(endRatio*N)) of every
// channel into a new Buffer. Ratios are clamped to [0, 1]. It reports false
// when the resulting frame count is not positive.
func Slice(b *Buffer, startRatio, endRatio float64) (*Buffer, bool) {
	if b == nil || math.IsNaN(startRatio) || math.IsNaN(endRatio) {
		return nil, false
	}

	n := float64(b.Frames())
	start := int(math.Floor(clampUnit(startRatio) * n))
	end := int(math.Floor(clampUnit(endRatio) * n))

	return SliceFrames(b, start, end)
}

// SliceFrames copies the frame range [start, end) into a new Buffer. The
// range is clamped to the buffer. It reports false for an empty range.
func SliceFrames(b *Buffer, start, end int) (*Buffer, bool) {
	if b == nil {
		return nil, false
	}

	start, end = clampRange(start, end, b.Frames())
	if end-start <= 0 {
		return nil, false
	}

	out := NewLike(b, end-start)
	for ch, src := range b.channels {
		copy(out.channels[ch], src[start:end])
	}

	return out, true
}

// ReverseRange returns a copy of b whose samples between startTime and
// endTime (seconds) are reversed, each channel independently. Samples
// outside the range are copied unchanged.
func ReverseRange(b *Buffer, startTime, endTime float64) *Buffer {
	out := b.Clone()

	start, end := clampRange(b.FrameAt(startTime), b.FrameAt(endTime), b.Frames())
	for _, data := range out.channels {
		for i, j := start, end-1; i < j; i, j = i+1, j-1 {
			data[i], data[j] = data[j], data[i]
		}
	}

	return out
}

// Splice returns a copy of dst with clip written at frame offset at. Frames
// of clip that fall outside dst are dropped, and channels beyond the shorter
// channel count are left untouched.
func Splice(dst, clip *Buffer, at int) *Buffer {
	out := dst.Clone()
	if at < 0 || at >= out.Frames() {
		return out
	}

	channels := min(len(out.channels), len(clip.channels))
	for ch := 0; ch < channels; ch++ {
		copy(out.channels[ch][at:], clip.channels[ch])
	}

	return out
}

// ScaleRange multiplies the frames [start, end) of every channel by gain in
// place. It must only be applied to a buffer nobody else references yet.
func ScaleRange(b *Buffer, start, end int, gain float64) {
	start, end = clampRange(start, end, b.Frames())
	if end <= start {
		return
	}

	for _, data := range b.channels {
		vecmath.ScaleBlockInPlace(data[start:end], gain)
	}
}

// Peak returns the largest absolute sample value across all channels.
func Peak(b *Buffer) float64 {
	peak := 0.0
	for _, data := range b.channels {
		if len(data) == 0 {
			continue
		}

		if p := vecmath.MaxAbs(data); p > peak {
			peak = p
		}
	}

	return peak
}

// Normalize scales b in place so that its loudest sample reaches target and
// returns the peak measured before scaling. A silent buffer is left alone.
// Each sample is divided by the peak before the target is applied so the
// loudest sample lands on target exactly.
func Normalize(b *Buffer, target float64) float64 {
	peak := Peak(b)
	if peak <= 0 {
		return peak
	}

	for _, data := range b.channels {
		for i, s := range data {
			data[i] = s / peak * target
		}
	}

	return peak
}

// Mixdown averages all channels into a new mono slice.
func Mixdown(b *Buffer) []float64 {
	out := make([]float64, b.Frames())
	if len(b.channels) == 0 {
		return out
	}

	for _, data := range b.channels {
		for i, s := range data {
			out[i] += s
		}
	}

	if len(b.channels) > 1 {
		vecmath.ScaleBlockInPlace(out, 1/float64(len(b.channels)))
	}

	return out
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}

	if x > 1 {
		return 1
	}

	return x
}

func clampRange(start, end, n int) (int, int) {
	start = max(0, min(start, n))
	end = max(0, min(end, n))

	if end < start {
		return start, start
	}

	return start, end
}
