package graph

import "github.com/cwbudde/algo-sampler/dsp/buffer"

// Source plays a buffer into the graph. A mono buffer feeds every output
// channel; extra buffer channels beyond the graph width are dropped. The
// buffer is played at the graph rate without resampling.
type Source struct {
	buf *buffer.Buffer

	playing bool
	pos     int

	loop      bool
	loopStart int
	loopEnd   int

	onEnded func()
}

// NewSource returns a stopped source over buf. buf may be nil.
func NewSource(buf *buffer.Buffer) *Source {
	return &Source{buf: buf}
}

// SetBuffer swaps the played buffer. The play position is kept, clamped to
// the new length, and any loop range is cleared.
func (s *Source) SetBuffer(buf *buffer.Buffer) {
	s.buf = buf
	s.loop = false
	s.pos = min(s.pos, s.frames())
}

// Buffer returns the played buffer.
func (s *Source) Buffer() *buffer.Buffer { return s.buf }

// OnEnded registers fn to run when playback reaches the end without looping.
func (s *Source) OnEnded(fn func()) { s.onEnded = fn }

// Start begins playback at frame offset.
func (s *Source) Start(offset int) {
	s.Seek(offset)
	s.playing = true
}

// Pause halts playback and keeps the position.
func (s *Source) Pause() { s.playing = false }

// Stop halts playback and rewinds to the start.
func (s *Source) Stop() {
	s.playing = false
	s.pos = 0
}

// Seek moves the play position, clamped to the buffer.
func (s *Source) Seek(frame int) {
	s.pos = max(0, min(frame, s.frames()))
}

// Position returns the next frame to be played.
func (s *Source) Position() int { return s.pos }

// Playing reports whether the source is producing samples.
func (s *Source) Playing() bool { return s.playing }

// SetLoop repeats frames [start, end). An empty or invalid range clears the
// loop.
func (s *Source) SetLoop(start, end int) {
	n := s.frames()
	start = max(0, min(start, n))
	end = max(0, min(end, n))

	if end <= start {
		s.ClearLoop()
		return
	}

	s.loop = true
	s.loopStart = start
	s.loopEnd = end

	if s.pos < start || s.pos >= end {
		s.pos = start
	}
}

// ClearLoop turns looping off.
func (s *Source) ClearLoop() {
	s.loop = false
	s.loopStart = 0
	s.loopEnd = 0
}

// Loop returns the loop range and whether looping is on.
func (s *Source) Loop() (start, end int, ok bool) {
	return s.loopStart, s.loopEnd, s.loop
}

// Process ignores in and writes buffer frames to out.
func (s *Source) Process(_ *Context, _, out [][]float64) {
	if !s.playing || s.buf == nil {
		return
	}

	data := s.buf.Channels()
	frames := len(out[0])
	ended := false

	for i := 0; i < frames; i++ {
		if s.loop && s.pos >= s.loopEnd {
			s.pos = s.loopStart
		}

		if s.pos >= s.frames() {
			s.playing = false
			ended = true

			break
		}

		for ch := range out {
			switch {
			case len(data) == 1:
				out[ch][i] = data[0][s.pos]
			case ch < len(data):
				out[ch][i] = data[ch][s.pos]
			}
		}

		s.pos++
	}

	if ended && s.onEnded != nil {
		s.onEnded()
	}
}

func (s *Source) frames() int {
	if s.buf == nil {
		return 0
	}

	return s.buf.Frames()
}
