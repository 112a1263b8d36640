package sampler

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-sampler/dsp/core"
	"github.com/cwbudde/algo-sampler/dsp/effects"
	"github.com/cwbudde/algo-sampler/dsp/render"
)

// Kind names an effect type.
type Kind int

const (
	KindNone Kind = iota
	KindDistortion
	KindDelay
	KindBitcrush
	KindReverse
)

// DefaultPreviewVolume is the preview gain of a fresh activation.
const DefaultPreviewVolume = 0.8

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindDistortion:
		return "distortion"
	case KindDelay:
		return "delay"
	case KindBitcrush:
		return "bitcrush"
	case KindReverse:
		return "reverse"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Label returns the user-facing name.
func (k Kind) Label() string {
	switch k {
	case KindNone:
		return "No effect"
	case KindDistortion:
		return "Distortion"
	case KindDelay:
		return "Delay"
	case KindBitcrush:
		return "Bitcrusher"
	case KindReverse:
		return "Reverse"
	default:
		return k.String()
	}
}

// ParseKind accepts the String form of a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return KindNone, nil
	case "distortion":
		return KindDistortion, nil
	case "delay":
		return KindDelay, nil
	case "bitcrush", "bitcrusher":
		return KindBitcrush, nil
	case "reverse":
		return KindReverse, nil
	default:
		return KindNone, fmt.Errorf("sampler: unknown effect %q", s)
	}
}

// KindOf returns the Kind of a render effect; nil is KindNone.
func KindOf(e render.Effect) Kind {
	switch e.(type) {
	case render.Distortion:
		return KindDistortion
	case render.Delay:
		return KindDelay
	case render.Bitcrush:
		return KindBitcrush
	case render.Reverse:
		return KindReverse
	default:
		return KindNone
	}
}

// DefaultEffect returns the documented starting parameters for k, or nil
// for KindNone.
func DefaultEffect(k Kind) render.Effect {
	switch k {
	case KindDistortion:
		return render.Distortion{Drive: 50}
	case KindDelay:
		return render.Delay{Time: 0.25, Feedback: 0.4}
	case KindBitcrush:
		return render.Bitcrush{Bits: 8, NormFreq: 0.1}
	case KindReverse:
		return render.Reverse{}
	default:
		return nil
	}
}

// Param names a knob of an effect.
type Param int

const (
	ParamDrive Param = iota
	ParamTime
	ParamFeedback
	ParamBits
	ParamNormFreq
)

func (p Param) String() string {
	switch p {
	case ParamDrive:
		return "drive"
	case ParamTime:
		return "time"
	case ParamFeedback:
		return "feedback"
	case ParamBits:
		return "bits"
	case ParamNormFreq:
		return "normFreq"
	default:
		return fmt.Sprintf("Param(%d)", int(p))
	}
}

// ParseParam accepts the String form of a Param.
func ParseParam(s string) (Param, error) {
	for _, p := range []Param{ParamDrive, ParamTime, ParamFeedback, ParamBits, ParamNormFreq} {
		if strings.EqualFold(s, p.String()) {
			return p, nil
		}
	}

	return 0, fmt.Errorf("sampler: unknown parameter %q", s)
}

// Params lists the knobs of k in display order.
func Params(k Kind) []Param {
	switch k {
	case KindDistortion:
		return []Param{ParamDrive}
	case KindDelay:
		return []Param{ParamTime, ParamFeedback}
	case KindBitcrush:
		return []Param{ParamBits, ParamNormFreq}
	default:
		return nil
	}
}

// Knob maps a normalized knob position in [0, 1] to the engineering value
// of p. Bits are rounded to the nearest integer.
func Knob(p Param, normalized float64) float64 {
	if math.IsNaN(normalized) {
		normalized = 0
	}

	t := core.Clamp(normalized, 0, 1)

	switch p {
	case ParamDrive:
		return core.Lerp(0, effects.MaxDrive, t)
	case ParamTime:
		return core.Lerp(effects.MinDelayTime, effects.MaxDelayTime, t)
	case ParamFeedback:
		return core.Lerp(0, effects.MaxDelayFeedback, t)
	case ParamBits:
		return math.Round(core.Lerp(effects.MinCrushBits, effects.MaxCrushBits, t))
	case ParamNormFreq:
		return core.Lerp(effects.MinCrushNormFreq, 1, t)
	default:
		return 0
	}
}

// KnobPosition is the inverse of Knob.
func KnobPosition(p Param, value float64) float64 {
	lo, hi := 0.0, 1.0

	switch p {
	case ParamDrive:
		hi = effects.MaxDrive
	case ParamTime:
		lo, hi = effects.MinDelayTime, effects.MaxDelayTime
	case ParamFeedback:
		hi = effects.MaxDelayFeedback
	case ParamBits:
		lo, hi = effects.MinCrushBits, effects.MaxCrushBits
	case ParamNormFreq:
		lo = effects.MinCrushNormFreq
	}

	return core.Clamp((value-lo)/(hi-lo), 0, 1)
}

// withParam returns e with p set to value. It reports false when e has no
// such parameter.
func withParam(e render.Effect, p Param, value float64) (render.Effect, bool) {
	switch fx := e.(type) {
	case render.Distortion:
		if p == ParamDrive {
			fx.Drive = value
			return fx, true
		}
	case render.Delay:
		switch p {
		case ParamTime:
			fx.Time = value
			return fx, true
		case ParamFeedback:
			fx.Feedback = value
			return fx, true
		}
	case render.Bitcrush:
		switch p {
		case ParamBits:
			fx.Bits = int(value)
			return fx, true
		case ParamNormFreq:
			fx.NormFreq = value
			return fx, true
		}
	case render.Reverse:
	}

	return e, false
}

// paramValue reads p from e.
func paramValue(e render.Effect, p Param) (float64, bool) {
	switch fx := e.(type) {
	case render.Distortion:
		if p == ParamDrive {
			return fx.Drive, true
		}
	case render.Delay:
		switch p {
		case ParamTime:
			return fx.Time, true
		case ParamFeedback:
			return fx.Feedback, true
		}
	case render.Bitcrush:
		switch p {
		case ParamBits:
			return float64(fx.Bits), true
		case ParamNormFreq:
			return fx.NormFreq, true
		}
	case render.Reverse:
	}

	return 0, false
}

// EffectState is the single active effect preview. A zero EffectState means
// no preview.
type EffectState struct {
	Effect        render.Effect
	PreviewVolume float64
}

// Kind returns the kind of the active effect.
func (s EffectState) Kind() Kind { return KindOf(s.Effect) }

// Param returns the current value of p.
func (s EffectState) Param(p Param) (float64, bool) { return paramValue(s.Effect, p) }
