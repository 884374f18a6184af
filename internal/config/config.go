// Package config holds daemon runtime configuration: defaults, optional
// YAML file loading, and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/rendercut/internal/compile"
)

// ExportDefaults seed the export options for requests that leave fields
// unset. They must name valid compile enums.
type ExportDefaults struct {
	Container  string `yaml:"container"`   // Default: "mp4".
	Quality    string `yaml:"quality"`     // Default: "medium".
	VideoCodec string `yaml:"video_codec"` // Default: "h264".
	AudioCodec string `yaml:"audio_codec"` // Default: "aac".
}

// Config holds all runtime settings. Populated by DefaultConfig, then
// overlaid from a YAML file by Load, then passed by pointer to packages
// that need it.
type Config struct {
	// ListenAddr is the local control-surface address.
	ListenAddr string `yaml:"listen_addr"` // Default: "127.0.0.1:7878".

	// ScratchDir holds per-export temp artifacts (concat lists, caption
	// files, materialized recordings). Purged per session.
	ScratchDir string `yaml:"scratch_dir"`

	// EncoderBinary is the external encoder executable, resolved on PATH
	// when not absolute. Default: "ffmpeg".
	EncoderBinary string `yaml:"encoder_binary"`

	// GracePeriod bounds how long cancellation waits for a graceful exit
	// before killing the encoder. Default: 5s.
	GracePeriod time.Duration `yaml:"grace_period"`

	LogLevel string `yaml:"log_level"` // trace|debug|info|warn|error. Default: "info".

	Defaults ExportDefaults `yaml:"defaults"`
}

// DefaultConfig returns a Config with all defaults set.
func DefaultConfig() Config {
	return Config{
		ListenAddr:    "127.0.0.1:7878",
		ScratchDir:    filepath.Join(os.TempDir(), "rendercut"),
		EncoderBinary: "ffmpeg",
		GracePeriod:   5 * time.Second,
		LogLevel:      "info",
		Defaults: ExportDefaults{
			Container:  string(compile.ContainerMP4),
			Quality:    string(compile.QualityMedium),
			VideoCodec: string(compile.CodecH264),
			AudioCodec: "aac",
		},
	}
}

// Load reads a YAML config file over the defaults and validates the
// result. An empty or missing path returns the validated defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks enum fields and required values.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen_addr must not be empty")
	}
	if c.ScratchDir == "" {
		return errors.New("scratch_dir must not be empty")
	}
	if c.EncoderBinary == "" {
		return errors.New("encoder_binary must not be empty")
	}
	if c.GracePeriod <= 0 {
		return errors.New("grace_period must be positive")
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	switch compile.Container(c.Defaults.Container) {
	case compile.ContainerMP4, compile.ContainerMKV, compile.ContainerMOV:
	default:
		return fmt.Errorf("invalid default container %q", c.Defaults.Container)
	}
	switch compile.QualityTier(c.Defaults.Quality) {
	case compile.QualityLow, compile.QualityMedium, compile.QualityHigh, compile.QualityBest:
	default:
		return fmt.Errorf("invalid default quality %q", c.Defaults.Quality)
	}
	switch compile.VideoCodec(c.Defaults.VideoCodec) {
	case compile.CodecH264, compile.CodecHEVC:
	default:
		return fmt.Errorf("invalid default video codec %q", c.Defaults.VideoCodec)
	}
	return nil
}

// ApplyDefaults fills unset export option fields from the configured
// defaults.
func (c *Config) ApplyDefaults(opts *compile.Options) {
	if opts.Container == "" {
		opts.Container = compile.Container(c.Defaults.Container)
	}
	if opts.Quality == "" {
		opts.Quality = compile.QualityTier(c.Defaults.Quality)
	}
	if opts.VideoCodec == "" {
		opts.VideoCodec = compile.VideoCodec(c.Defaults.VideoCodec)
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = c.Defaults.AudioCodec
	}
}
