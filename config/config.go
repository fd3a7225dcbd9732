// Package config loads playback tuning from an optional YAML file, with
// environment overrides under the AURIC_ prefix.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig wraps any validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the tunable surface of the playback core.
type Config struct {
	SampleRate        int           `mapstructure:"sample_rate"`
	RingCapacity      int           `mapstructure:"ring_capacity"`
	LowWater          int           `mapstructure:"low_water"`
	BatchSize         int           `mapstructure:"batch_size"`
	ResampleQuality   int           `mapstructure:"resample_quality"`
	StallTimeout      time.Duration `mapstructure:"stall_timeout"`
	UnderrunTolerance int64         `mapstructure:"underrun_tolerance"`
	InitialVolume     float64       `mapstructure:"initial_volume"`
	SpectrumFFTSize   int           `mapstructure:"spectrum_fft_size"`
	SpectrumBands     int           `mapstructure:"spectrum_bands"`
	SpectrumFPS       int           `mapstructure:"spectrum_fps"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sample_rate", 44100)
	v.SetDefault("ring_capacity", 32)
	v.SetDefault("low_water", 8)
	v.SetDefault("batch_size", 1024)
	v.SetDefault("resample_quality", 4)
	v.SetDefault("stall_timeout", 5*time.Second)
	v.SetDefault("underrun_tolerance", 3)
	v.SetDefault("initial_volume", 0.8)
	v.SetDefault("spectrum_fft_size", 2048)
	v.SetDefault("spectrum_bands", 32)
	v.SetDefault("spectrum_fps", 30)
}

// Load reads configuration from path when given, otherwise from
// auric.yaml in the XDG config directory if one exists. A missing file is
// not an error; defaults apply.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("AURIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("auric")
		v.SetConfigType("yaml")
		v.AddConfigPath("$XDG_CONFIG_HOME/auric")
		v.AddConfigPath("$HOME/.config/auric")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	switch {
	case c.SampleRate < 8000 || c.SampleRate > 192000:
		return fmt.Errorf("%w: sample_rate %d out of range", ErrInvalidConfig, c.SampleRate)
	case c.RingCapacity < 2:
		return fmt.Errorf("%w: ring_capacity %d too small", ErrInvalidConfig, c.RingCapacity)
	case c.LowWater < 1 || c.LowWater >= c.RingCapacity:
		return fmt.Errorf("%w: low_water %d must be within (0, ring_capacity)", ErrInvalidConfig, c.LowWater)
	case c.BatchSize < 64:
		return fmt.Errorf("%w: batch_size %d too small", ErrInvalidConfig, c.BatchSize)
	case c.InitialVolume < 0 || c.InitialVolume > 1:
		return fmt.Errorf("%w: initial_volume %.2f out of range", ErrInvalidConfig, c.InitialVolume)
	case c.SpectrumFFTSize&(c.SpectrumFFTSize-1) != 0 || c.SpectrumFFTSize < 256:
		return fmt.Errorf("%w: spectrum_fft_size %d must be a power of two >= 256", ErrInvalidConfig, c.SpectrumFFTSize)
	case c.SpectrumBands < 1 || c.SpectrumBands > c.SpectrumFFTSize/2:
		return fmt.Errorf("%w: spectrum_bands %d out of range", ErrInvalidConfig, c.SpectrumBands)
	}
	return nil
}
