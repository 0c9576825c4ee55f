package core

// SamplingConfig describes a uniformly sampled record.
type SamplingConfig struct {
	// TimeIncrement is the spacing between consecutive samples in seconds.
	TimeIncrement float64
}

// SamplingOption mutates a SamplingConfig.
type SamplingOption func(*SamplingConfig)

// DefaultSamplingConfig returns a 1 MS/s configuration, a typical
// oscilloscope capture rate for kHz field scans.
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		TimeIncrement: 1e-6,
	}
}

// WithTimeIncrement sets the sample spacing in seconds.
func WithTimeIncrement(dt float64) SamplingOption {
	return func(cfg *SamplingConfig) {
		if dt > 0 && IsFinite(dt) {
			cfg.TimeIncrement = dt
		}
	}
}

// SampleRate returns the sampling rate in Hz.
func (c SamplingConfig) SampleRate() float64 {
	if c.TimeIncrement <= 0 {
		return 0
	}

	return 1 / c.TimeIncrement
}

// ApplySamplingOptions applies zero or more options to the default config.
func ApplySamplingOptions(opts ...SamplingOption) SamplingConfig {
	cfg := DefaultSamplingConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
