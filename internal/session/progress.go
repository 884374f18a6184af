package session

import "time"

// Stage is the export lifecycle state exposed to the UI.
type Stage string

const (
	StageIdle      Stage = "idle"
	StagePreparing Stage = "preparing"
	StageEncoding  Stage = "encoding"
	StageComplete  Stage = "complete"
	StageError     Stage = "error"
)

// Progress is the user-visible export state. Message always carries a
// human-readable cause; raw encoder diagnostics go to the log instead.
type Progress struct {
	Stage      Stage  `json:"stage"`
	Percent    int    `json:"percent"`
	Message    string `json:"message"`
	OutputPath string `json:"outputPath,omitempty"`
}

// progressFloor is where the synthetic estimate starts once encoding
// begins; progressCeiling is where it saturates until real completion.
const (
	progressFloor   = 5
	progressCeiling = 95
)

// EstimateProgress maps elapsed wall time to a synthetic percentage. It is
// a pure function: monotonically increasing in elapsed, starting at the
// floor and approaching (never reaching) the ceiling. timelineDuration
// scales the curve — longer timelines fill the bar more slowly; a
// non-positive duration falls back to a nominal 30s.
func EstimateProgress(elapsed, timelineDuration time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	if timelineDuration <= 0 {
		timelineDuration = 30 * time.Second
	}
	span := float64(progressCeiling - progressFloor)
	frac := float64(elapsed) / float64(elapsed+timelineDuration)
	pct := progressFloor + int(span*frac)
	if pct >= progressCeiling {
		pct = progressCeiling - 1
	}
	return pct
}
