package prepare

import (
	"fmt"
	"sort"

	"github.com/backmassage/rendercut/internal/captions"
	"github.com/backmassage/rendercut/internal/media"
	"github.com/backmassage/rendercut/internal/timeline"
)

// minClipDuration is the smallest clip length worth exporting. Clips at or
// below this are artifacts of drag-trim rounding in the editor and are
// silently dropped.
const minClipDuration = 0.01

// PreparedClip is the resolved, export-ready projection of one timeline
// clip. Created here, consumed only by the compiler, never mutated after.
type PreparedClip struct {
	AssetID   string
	Path      string
	Track     int // Index of the originating track.
	StartTime float64
	TrimIn    float64
	TrimOut   float64 // Clamped to the asset's real duration.
	Duration  float64
	HasAudio  bool
	HasVideo  bool

	// Captions is the clip's caption document already rebased into
	// timeline time. Nil when the asset carries no captions.
	Captions *captions.Document
}

// End returns the timeline-absolute end time of the prepared clip.
func (p PreparedClip) End() float64 {
	return p.StartTime + p.Duration
}

// Validation carries the two severities of preparation findings. Errors
// block the export entirely; warnings are informational (they influence
// strategy selection but never stop anything).
type Validation struct {
	Errors   []string
	Warnings []string
}

// OK reports whether the export may proceed.
func (v Validation) OK() bool {
	return len(v.Errors) == 0
}

func (v *Validation) errorf(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

func (v *Validation) warnf(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

// Prepared is the immutable compiler input: ordered clips, the analyzer
// summary, and the merged timeline-relative caption document.
type Prepared struct {
	Clips   []PreparedClip
	Summary timeline.Summary

	// Captions is the merged, rebased caption document across all clips,
	// in clip order. Nil when no clip carries captions.
	Captions *captions.Document
}

// Prepare resolves every clip against the registry, clamps trim bounds to
// the asset's real duration (the UI-supplied TrimOut is never trusted),
// drops degenerate clips, and reports validation findings.
//
// Clips are returned in ascending StartTime order; for equal start times
// the clip from the later-declared track sorts later, which the compiler
// relies on for overlay precedence.
func Prepare(tracks []timeline.Track, reg media.Registry) (*Prepared, Validation) {
	var val Validation
	summary := timeline.Analyze(tracks)

	total := 0
	var clips []PreparedClip
	for ti, track := range tracks {
		for _, c := range track.Clips {
			total++

			asset, err := reg.Resolve(c.AssetID)
			if err != nil {
				val.errorf("clip at %.2fs on track %d: %v", c.StartTime, ti, err)
				continue
			}

			trimIn := c.TrimIn
			if trimIn < 0 {
				trimIn = 0
			}
			trimOut := c.TrimOut
			if trimOut > asset.Duration {
				trimOut = asset.Duration
			}
			dur := trimOut - trimIn
			if dur <= minClipDuration {
				continue
			}

			pc := PreparedClip{
				AssetID:   asset.ID,
				Path:      asset.Path,
				Track:     ti,
				StartTime: c.StartTime,
				TrimIn:    trimIn,
				TrimOut:   trimOut,
				Duration:  dur,
				HasAudio:  asset.HasAudio && !track.Muted,
				HasVideo:  asset.HasVideo && track.Kind != timeline.TrackAudio,
			}
			if !asset.Captions.Empty() {
				pc.Captions = captions.Rebase(asset.Captions, trimIn, c.StartTime)
			}
			clips = append(clips, pc)
		}
	}

	// --- Blocking errors ---
	if total == 0 {
		val.errorf("timeline has no clips")
	} else if len(clips) == 0 && len(val.Errors) == 0 {
		val.errorf("all clips have zero duration after trimming")
	}
	if !val.OK() {
		return nil, val
	}

	// --- Informational warnings ---
	if summary.HasOverlappingClips {
		val.warnf("overlapping clips detected; later tracks take visual precedence")
	}
	if len(summary.Gaps) > 0 {
		val.warnf("%d timeline gap(s) will be filled with black/silence", len(summary.Gaps))
	}
	if summary.MaxConcurrentTracks > 2 {
		val.warnf("high track concurrency (%d); compositing will be expensive", summary.MaxConcurrentTracks)
	}

	sort.SliceStable(clips, func(i, j int) bool {
		return clips[i].StartTime < clips[j].StartTime
	})

	prepared := &Prepared{Clips: clips, Summary: summary}
	var docs []*captions.Document
	for _, pc := range clips {
		if pc.Captions != nil {
			docs = append(docs, pc.Captions)
		}
	}
	if merged := captions.Merge(docs...); !merged.Empty() {
		prepared.Captions = merged
	}
	return prepared, val
}
