package biquad

// Cascade is a series of sections, such as the bands of an equalizer.
type Cascade []Coefficients

// Response returns the product of the section responses at freqHz.
func (c Cascade) Response(freqHz, sampleRate float64) complex128 {
	h := complex(1, 0)
	for _, s := range c {
		h *= s.Response(freqHz, sampleRate)
	}

	return h
}

// MagnitudeDB returns the cascaded magnitude in dB at freqHz.
func (c Cascade) MagnitudeDB(freqHz, sampleRate float64) float64 {
	mag := 0.0
	for _, s := range c {
		mag += s.MagnitudeDB(freqHz, sampleRate)
	}

	return mag
}

// Sections returns fresh runtime sections for one channel. Identity
// sections are skipped.
func (c Cascade) Sections() []*Section {
	out := make([]*Section, 0, len(c))
	for _, s := range c {
		if !s.IsIdentity() {
			out = append(out, NewSection(s))
		}
	}

	return out
}

// Run filters buf in place through sections in order.
func Run(sections []*Section, buf []float64) {
	for _, s := range sections {
		s.ProcessBlock(buf)
	}
}
