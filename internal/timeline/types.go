package timeline

// TrackKind identifies what a track carries.
type TrackKind string

const (
	TrackVideo   TrackKind = "video"   // Main video content.
	TrackAudio   TrackKind = "audio"   // Audio-only content (music, voiceover).
	TrackOverlay TrackKind = "overlay" // Picture-in-picture / overlay video.
)

// Track is an ordered container of clips. Clips within a track may overlap
// in time; overlap is reported by Analyze, not rejected here.
type Track struct {
	Kind   TrackKind `json:"kind"`
	Muted  bool      `json:"muted"`
	Locked bool      `json:"locked"`
	Clips  []Clip    `json:"clips"`
}

// Clip is a timeline-placed reference to a trimmed sub-range of a source
// asset. StartTime is timeline-absolute; TrimIn/TrimOut are asset-relative.
// Expected invariant: 0 <= TrimIn < TrimOut <= asset duration. The preparer
// clamps and enforces this against the resolved asset.
type Clip struct {
	AssetID   string  `json:"assetId"`
	StartTime float64 `json:"startTime"`
	TrimIn    float64 `json:"trimIn"`
	TrimOut   float64 `json:"trimOut"`
}

// Duration returns the played length of the clip in seconds.
func (c Clip) Duration() float64 {
	return c.TrimOut - c.TrimIn
}

// End returns the timeline-absolute end time of the clip.
func (c Clip) End() float64 {
	return c.StartTime + c.Duration()
}

// Gap is an uncovered interval [Start, End) within a single track. The
// composited output must cover it with filler content (black frame or
// silence) on that track.
type Gap struct {
	Track int     `json:"track"` // Index into the analyzed track list.
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the gap length in seconds.
func (g Gap) Duration() float64 {
	return g.End - g.Start
}

// Segment is a maximal interval over the whole timeline during which a
// constant set of clips (across all tracks) is simultaneously active.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Clips int     `json:"clips"` // Number of clips active during the interval.
}

// Summary is the analyzer's report over the full track list.
type Summary struct {
	TotalDuration      float64   `json:"totalDuration"`
	Gaps               []Gap     `json:"gaps"`
	Segments           []Segment `json:"segments"`
	HasOverlappingClips bool     `json:"hasOverlappingClips"`
	MaxConcurrentTracks int      `json:"maxConcurrentTracks"`
}
