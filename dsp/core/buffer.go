package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// EnsureBlock returns a channels x frames block, reusing the capacity of blk
// where it can. Contents are not cleared.
func EnsureBlock(blk [][]float64, channels, frames int) [][]float64 {
	if channels <= 0 {
		return blk[:0]
	}
	if cap(blk) < channels {
		grown := make([][]float64, channels)
		copy(grown, blk)
		blk = grown
	}
	blk = blk[:channels]
	for ch := range blk {
		blk[ch] = EnsureLen(blk[ch], frames)
	}
	return blk
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// ZeroBlock clears every channel of blk.
func ZeroBlock(blk [][]float64) {
	for _, ch := range blk {
		Zero(ch)
	}
}

// AddInto accumulates src into dst over their common length.
func AddInto(dst, src []float64) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i] += src[i]
	}
}

// CopyInto copies src into dst and returns the number of copied elements.
func CopyInto(dst, src []float64) int {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	copy(dst[:n], src[:n])
	return n
}
