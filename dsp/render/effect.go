package render

import "fmt"

// Effect is one of Distortion, Delay, Bitcrush or Reverse.
type Effect interface {
	fmt.Stringer
	effect()
}

// Distortion shapes the range through MakeDistortionCurve(Drive).
type Distortion struct {
	Drive float64
}

// Delay mixes the dry range with a feedback echo.
type Delay struct {
	Time     float64 // seconds
	Feedback float64
}

// Bitcrush quantizes to 2^Bits levels and holds every floor(1/NormFreq) frames.
type Bitcrush struct {
	Bits     int
	NormFreq float64
}

// Reverse plays the range backwards.
type Reverse struct{}

func (Distortion) effect() {}
func (Delay) effect()      {}
func (Bitcrush) effect()   {}
func (Reverse) effect()    {}

func (e Distortion) String() string { return fmt.Sprintf("distortion(drive=%g)", e.Drive) }

func (e Delay) String() string {
	return fmt.Sprintf("delay(time=%gs, feedback=%g)", e.Time, e.Feedback)
}

func (e Bitcrush) String() string {
	return fmt.Sprintf("bitcrush(bits=%d, normFreq=%g)", e.Bits, e.NormFreq)
}

func (Reverse) String() string { return "reverse" }
