package eq

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-sampler/dsp/core"
)

// Bands is the number of equalizer bands.
const Bands = 10

const (
	// MinGainDB and MaxGainDB bound every band gain.
	MinGainDB = -12.0
	MaxGainDB = 12.0
)

// Frequencies lists the band center frequencies in Hz, lowest first.
var Frequencies = [Bands]float64{32, 64, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

// ErrBand is returned for a band index outside [0, Bands).
var ErrBand = errors.New("eq: band index out of range")

// Kind selects the filter shape of a band.
type Kind int

const (
	KindPeaking Kind = iota
	KindLowShelf
	KindHighShelf
)

func (k Kind) String() string {
	switch k {
	case KindLowShelf:
		return "lowshelf"
	case KindHighShelf:
		return "highshelf"
	case KindPeaking:
		return "peaking"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// KindFor returns the filter kind of band i, derived from its position.
func KindFor(i int) Kind {
	switch i {
	case 0:
		return KindLowShelf
	case Bands - 1:
		return KindHighShelf
	default:
		return KindPeaking
	}
}

// Gains is a snapshot of all band gains in dB.
type Gains [Bands]float64

// Flat reports whether every band sits at 0 dB.
func (g Gains) Flat() bool {
	for _, v := range g {
		if v != 0 {
			return false
		}
	}

	return true
}

// Equalizer holds the editable band gains. The zero value is flat.
type Equalizer struct {
	gains Gains
}

// New returns a flat equalizer.
func New() *Equalizer {
	return &Equalizer{}
}

// Gains returns a snapshot of the band gains.
func (e *Equalizer) Gains() Gains { return e.gains }

// Gain returns the gain of band i in dB, or 0 for an invalid index.
func (e *Equalizer) Gain(i int) float64 {
	if i < 0 || i >= Bands {
		return 0
	}

	return e.gains[i]
}

// SetGain sets band i to db, clamped to [MinGainDB, MaxGainDB], and returns
// the value stored. NaN is treated as 0.
func (e *Equalizer) SetGain(i int, db float64) (float64, error) {
	if i < 0 || i >= Bands {
		return 0, fmt.Errorf("%w: %d", ErrBand, i)
	}

	if math.IsNaN(db) {
		db = 0
	}

	e.gains[i] = core.Clamp(db, MinGainDB, MaxGainDB)

	return e.gains[i], nil
}

// SetGains replaces all band gains, clamping each.
func (e *Equalizer) SetGains(g Gains) {
	for i, db := range g {
		_, _ = e.SetGain(i, db)
	}
}

// Reset returns band i to 0 dB (the double-click gesture).
func (e *Equalizer) Reset(i int) error {
	_, err := e.SetGain(i, 0)
	return err
}

// ResetAll flattens every band.
func (e *Equalizer) ResetAll() {
	e.gains = Gains{}
}

// Draw applies a freehand stroke that moved from band from at fromDB to band
// to at toDB. Every band the stroke crossed is set by linear interpolation
// between the two end points. It returns the indices it changed, in stroke
// order.
func (e *Equalizer) Draw(from int, fromDB float64, to int, toDB float64) ([]int, error) {
	if from < 0 || from >= Bands {
		return nil, fmt.Errorf("%w: %d", ErrBand, from)
	}

	if to < 0 || to >= Bands {
		return nil, fmt.Errorf("%w: %d", ErrBand, to)
	}

	step := 1
	if to < from {
		step = -1
	}

	span := float64(to - from)
	touched := make([]int, 0, abs(to-from)+1)

	for i := from; ; i += step {
		db := fromDB
		if span != 0 {
			db = fromDB + (toDB-fromDB)*float64(i-from)/span
		}

		_, _ = e.SetGain(i, db)
		touched = append(touched, i)

		if i == to {
			break
		}
	}

	return touched, nil
}

// BandAt maps a horizontal position in [0, 1] across the band strip to a
// band index.
func BandAt(x float64) int {
	i := int(math.Floor(core.Clamp(x, 0, 1) * Bands))
	return min(i, Bands-1)
}

// GainAt maps a vertical position in [0, 1] (0 = top) to a gain in dB.
func GainAt(y float64) float64 {
	return MaxGainDB - core.Clamp(y, 0, 1)*(MaxGainDB-MinGainDB)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
