package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/rendercut/internal/compile"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "ffmpeg", cfg.EncoderBinary)
	assert.Equal(t, 5*time.Second, cfg.GracePeriod)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().ListenAddr, cfg.ListenAddr)
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rendercut.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"listen_addr: 127.0.0.1:9000\n"+
			"grace_period: 10s\n"+
			"defaults:\n  container: mkv\n  quality: high\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, 10*time.Second, cfg.GracePeriod)
	assert.Equal(t, "mkv", cfg.Defaults.Container)
	assert.Equal(t, "ffmpeg", cfg.EncoderBinary, "unset fields keep defaults")
}

func TestLoad_RejectsInvalidEnum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rendercut.yaml")
	require.NoError(t, os.WriteFile(path, []byte("defaults:\n  container: avi\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid default container")
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	assert.ErrorContains(t, cfg.Validate(), "invalid log_level")
}

func TestApplyDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Defaults.Quality = string(compile.QualityHigh)

	opts := compile.Options{OutputPath: "/out/x.mp4", Quality: compile.QualityLow}
	cfg.ApplyDefaults(&opts)
	assert.Equal(t, compile.QualityLow, opts.Quality, "explicit values win")
	assert.Equal(t, compile.ContainerMP4, opts.Container)
	assert.Equal(t, compile.CodecH264, opts.VideoCodec)
	assert.Equal(t, "aac", opts.AudioCodec)
}
