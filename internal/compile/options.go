package compile

import (
	"errors"
	"path/filepath"
	"strings"
)

// Container is the output container format.
type Container string

const (
	ContainerMP4 Container = "mp4" // Default; broad player compatibility.
	ContainerMKV Container = "mkv" // Matroska, full feature support.
	ContainerMOV Container = "mov" // QuickTime.
)

// QualityTier maps to a monotonic compression-quality scale: a lower CRF
// value means higher quality and larger output.
type QualityTier string

const (
	QualityLow    QualityTier = "low"
	QualityMedium QualityTier = "medium"
	QualityHigh   QualityTier = "high"
	QualityBest   QualityTier = "best"
)

// CRF returns the constant-rate-factor for the tier. Unknown tiers fall
// back to the medium value.
func (q QualityTier) CRF() int {
	switch q {
	case QualityLow:
		return 28
	case QualityHigh:
		return 20
	case QualityBest:
		return 17
	default:
		return 23
	}
}

// VideoCodec selects the video encoder for re-encode paths.
type VideoCodec string

const (
	CodecH264 VideoCodec = "h264" // libx264 (default).
	CodecHEVC VideoCodec = "hevc" // libx265.
)

func (c VideoCodec) encoder() string {
	if c == CodecHEVC {
		return "libx265"
	}
	return "libx264"
}

// Options describes the requested export output. Zero Width/Height means
// "keep source resolution" (no scaling stage is added); zero FPS means
// "keep source frame rate" (no frame-rate stage is added).
type Options struct {
	OutputPath string      `json:"outputPath"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	FPS        int         `json:"fps"`
	Quality    QualityTier `json:"quality"`
	VideoCodec VideoCodec  `json:"videoCodec"`
	AudioCodec string      `json:"audioCodec"` // Default "aac".
	Container  Container   `json:"container"`

	// ScratchDir is where command artifacts (concat lists, caption files)
	// will be materialized by the supervisor. The compiler only computes
	// deterministic paths under it.
	ScratchDir string `json:"-"`
}

// Normalize fills defaults and forces the output extension to match the
// requested container. Returns an error for unusable options.
func (o *Options) Normalize() error {
	if o.OutputPath == "" {
		return errors.New("output path must not be empty")
	}
	if o.ScratchDir == "" {
		return errors.New("scratch directory must not be empty")
	}
	if o.Quality == "" {
		o.Quality = QualityMedium
	}
	if o.VideoCodec == "" {
		o.VideoCodec = CodecH264
	}
	if o.AudioCodec == "" {
		o.AudioCodec = "aac"
	}
	if o.Container == "" {
		o.Container = ContainerMP4
	}
	switch o.Container {
	case ContainerMP4, ContainerMKV, ContainerMOV:
	default:
		return errors.New("invalid container (use 'mp4', 'mkv', or 'mov')")
	}
	switch o.Quality {
	case QualityLow, QualityMedium, QualityHigh, QualityBest:
	default:
		return errors.New("invalid quality tier (use 'low', 'medium', 'high', or 'best')")
	}
	if (o.Width == 0) != (o.Height == 0) {
		return errors.New("width and height must be set together")
	}
	if o.Width < 0 || o.Height < 0 || o.FPS < 0 {
		return errors.New("resolution and frame rate must not be negative")
	}
	o.OutputPath = forceExtension(o.OutputPath, string(o.Container))
	return nil
}

// keepResolution reports whether no scaling was requested.
func (o *Options) keepResolution() bool { return o.Width == 0 && o.Height == 0 }

// keepFrameRate reports whether no frame-rate change was requested.
func (o *Options) keepFrameRate() bool { return o.FPS == 0 }

// forceExtension replaces the path's extension with the container's.
func forceExtension(path, ext string) string {
	old := filepath.Ext(path)
	return strings.TrimSuffix(path, old) + "." + ext
}
