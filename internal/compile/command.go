package compile

import "path/filepath"

// Artifact file names within the scratch directory. Fixed names keep the
// compiled invocation deterministic for a given scratch directory.
const (
	concatListName = "concat.txt"
	captionsName   = "captions.srt"
)

// Strategy names the composition path chosen for a timeline.
type Strategy string

const (
	// StrategyLinear trims each clip and concatenates them back to back.
	StrategyLinear Strategy = "linear"
	// StrategyCompositing layers clips over a synthesized canvas/bed.
	StrategyCompositing Strategy = "compositing"
)

// Input is one encoder input. Either Path points at an existing file, or
// Data holds an in-memory payload the supervisor materializes to a temp
// file (Path then names the file to create inside the scratch dir).
type Input struct {
	Path string
	Data []byte
}

// Artifact is a support file (concat list, caption document) the supervisor
// writes into the scratch directory before spawning the encoder.
type Artifact struct {
	Path string // Absolute path inside the scratch directory.
	Data []byte
}

// Command is the ordered, fully-resolved description of one encoder
// invocation: inputs, processing graph, stream mappings, codec and
// container flags. It is pure data; Args renders it to argv and the
// supervisor executes it.
type Command struct {
	Binary   string // Encoder binary, normally "ffmpeg".
	Strategy Strategy

	Inputs    []Input
	Stages    []Stage
	Maps      []string
	Artifacts []Artifact

	// Passthrough marks the zero-re-encode linear path: the concat list
	// artifact is the sole input and all streams are stream-copied.
	Passthrough bool
	ConcatList  string // Concat list path when Passthrough.

	VideoEncoder string // e.g. "libx264"; empty when Passthrough.
	AudioEncoder string // e.g. "aac"; empty when Passthrough.
	CRF          int
	HasVideoOut  bool
	HasAudioOut  bool

	Container     Container
	ContainerOpts []string // e.g. -movflags +faststart for mp4/mov.
	OutputPath    string
	Overwrite     bool

	// TotalDuration is the timeline length in seconds, carried for
	// progress estimation and diagnostics.
	TotalDuration float64
}

// scratchPath joins an artifact name onto the scratch directory.
func scratchPath(scratchDir, name string) string {
	return filepath.Join(scratchDir, name)
}
