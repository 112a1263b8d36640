package eq

import (
	"math"

	"github.com/cwbudde/algo-sampler/dsp/filter/biquad"
	"github.com/cwbudde/algo-sampler/dsp/filter/design"
)

const (
	peakingQ = 1.0
	shelfQ   = design.DefaultQ // shelf slope S = 1
)

// Design returns RBJ coefficients for one band. Frequencies at or above
// Nyquist, or a non-positive sample rate, yield the identity section.
func Design(kind Kind, freq, gainDB, sampleRate float64) biquad.Coefficients {
	switch kind {
	case KindLowShelf:
		return design.LowShelf(freq, gainDB, shelfQ, sampleRate)
	case KindHighShelf:
		return design.HighShelf(freq, gainDB, shelfQ, sampleRate)
	default:
		return design.Peak(freq, gainDB, peakingQ, sampleRate)
	}
}

// BandCoefficients designs band i at gainDB.
func BandCoefficients(i int, gainDB, sampleRate float64) biquad.Coefficients {
	return Design(KindFor(i), Frequencies[i], gainDB, sampleRate)
}

// Coefficients designs the whole bank, lowest band first.
func Coefficients(g Gains, sampleRate float64) []biquad.Coefficients {
	out := make([]biquad.Coefficients, Bands)
	for i := range out {
		out[i] = BandCoefficients(i, g[i], sampleRate)
	}

	return out
}

// ResponseDB returns the combined magnitude response of the bank in dB at
// each frequency in freqs.
func ResponseDB(g Gains, freqs []float64, sampleRate float64) []float64 {
	bank := biquad.Cascade(Coefficients(g, sampleRate))

	out := make([]float64, len(freqs))
	for i, f := range freqs {
		f = math.Min(math.Max(f, 1), sampleRate*0.49)
		out[i] = bank.MagnitudeDB(f, sampleRate)
	}

	return out
}
