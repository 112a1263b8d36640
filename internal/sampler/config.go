package sampler

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-sampler/dsp/core"
)

// EQPolicy decides what happens to the equalizer when a new sample is loaded.
// Reloads of the same sample after trim or freeze always keep the EQ.
type EQPolicy int

const (
	// EQKeep carries band gains over to a new sample.
	EQKeep EQPolicy = iota
	// EQResetOnNewSource flattens the equalizer when a new sample is loaded.
	EQResetOnNewSource
)

const (
	// DefaultMasterGain is the master level of a new session.
	DefaultMasterGain = 0.8
	// MaxMasterGain bounds the master fader.
	MaxMasterGain = 1.5
	// DefaultChannels is the live output width.
	DefaultChannels = 2
)

// Config holds the session settings.
type Config struct {
	Render     core.RenderConfig
	Channels   int
	EQPolicy   EQPolicy
	MasterGain float64
	Logger     logrus.FieldLogger
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the settings used when no option is given.
func DefaultConfig() Config {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	return Config{
		Render:     core.DefaultRenderConfig(),
		Channels:   DefaultChannels,
		EQPolicy:   EQKeep,
		MasterGain: DefaultMasterGain,
		Logger:     discard,
	}
}

// WithSampleRate sets the live render rate.
func WithSampleRate(sampleRate float64) Option {
	return func(c *Config) { core.WithSampleRate(sampleRate)(&c.Render) }
}

// WithBlockSize sets the render quantum of the live and offline graphs.
func WithBlockSize(frames int) Option {
	return func(c *Config) { core.WithBlockSize(frames)(&c.Render) }
}

// WithChannels sets the live output width.
func WithChannels(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Channels = n
		}
	}
}

// WithEQPolicy sets the equalizer policy for new samples.
func WithEQPolicy(p EQPolicy) Option {
	return func(c *Config) { c.EQPolicy = p }
}

// WithMasterGain sets the initial master gain.
func WithMasterGain(g float64) Option {
	return func(c *Config) { c.MasterGain = core.Clamp(g, 0, MaxMasterGain) }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

func applyOptions(opts []Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
