package core

// DefaultSampleRate is used when no sample rate has been configured.
const DefaultSampleRate = 44100

// DefaultBlockSize is the render quantum shared by the live and offline graphs.
const DefaultBlockSize = 128

// RenderConfig defines the settings shared by real-time and offline rendering.
type RenderConfig struct {
	SampleRate float64
	BlockSize  int
}

// RenderOption mutates a RenderConfig.
type RenderOption func(*RenderConfig)

// DefaultRenderConfig returns the defaults used by the live chain and offline contexts.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		SampleRate: DefaultSampleRate,
		BlockSize:  DefaultBlockSize,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) RenderOption {
	return func(cfg *RenderConfig) {
		if sampleRate > 0 && Finite(sampleRate) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the render quantum.
func WithBlockSize(blockSize int) RenderOption {
	return func(cfg *RenderConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// ApplyRenderOptions applies zero or more options to the default config.
func ApplyRenderOptions(opts ...RenderOption) RenderConfig {
	cfg := DefaultRenderConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
