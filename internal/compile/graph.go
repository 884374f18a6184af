package compile

// StageKind identifies one node type in the processing graph.
type StageKind int

const (
	// StageTrimVideo cuts a sub-range out of an input video stream and
	// resets its timestamps, optionally shifting them to a timeline offset.
	StageTrimVideo StageKind = iota
	// StageTrimAudio is the audio counterpart of StageTrimVideo; the
	// timeline offset becomes an audio delay.
	StageTrimAudio
	// StageCanvas synthesizes a solid black video stream of a fixed
	// size, rate, and duration. Used as the compositing base and as
	// filler for video-less clips on the linear path.
	StageCanvas
	// StageSilence synthesizes a silent audio stream of a fixed duration.
	StageSilence
	// StageOverlay draws a clip stream over the running composite,
	// active only during its timeline window. Later overlays occlude
	// earlier ones.
	StageOverlay
	// StageMix sums a clip's audio into the running audio composite.
	StageMix
	// StageConcat joins per-clip streams back to back into continuous
	// output streams.
	StageConcat
	// StageScale resizes the video stream to the requested resolution.
	StageScale
	// StageFPS resamples the video stream to the requested frame rate.
	StageFPS
	// StageBurnIn renders the merged caption artifact into the video
	// pixels. Always the final video stage before output mapping.
	StageBurnIn
)

// Stage is one typed node of the processing graph. Inputs and Outputs are
// filter-graph labels ("0:v" for demuxed streams, otherwise stage-assigned
// names); parameter fields are interpreted per Kind. Stages for a given
// clip are strictly ordered (trim before overlay/mix before mapping) and
// across clips overlay/mix stages appear in ascending start-time order.
type Stage struct {
	Kind    StageKind
	Inputs  []string
	Outputs []string

	Start    float64 // Trim-in (asset-relative) or overlay window start.
	End      float64 // Trim-out (asset-relative) or overlay window end.
	Offset   float64 // Timeline placement shift in seconds.
	Duration float64 // Canvas/silence length.

	Width  int
	Height int
	FPS    int

	Count     int  // Concat segment count.
	WithVideo bool // Concat carries a video stream.
	WithAudio bool // Concat carries an audio stream.

	SubtitlePath string // Burn-in artifact path.
}
