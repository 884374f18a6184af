package compile

import (
	"fmt"
	"strings"

	"github.com/backmassage/rendercut/internal/captions"
	"github.com/backmassage/rendercut/internal/prepare"
	"github.com/backmassage/rendercut/internal/timeline"
)

// Compositing canvas defaults, used when the requested output keeps the
// source resolution or frame rate. The canvas needs concrete values even
// when the user asked for "source".
const (
	defaultCanvasWidth  = 1920
	defaultCanvasHeight = 1080
	defaultCanvasFPS    = 30
	bedSampleRate       = 48000
	bedChannelLayout    = "stereo"
)

// CompilationError marks an internal contract violation between the
// preparer and the compiler. It should not occur if preparation succeeded;
// the session treats it as a defect, not a user error.
type CompilationError struct {
	Reason string
}

func (e *CompilationError) Error() string {
	return "compile: " + e.Reason
}

// SelectStrategy picks the composition path from the analyzer summary.
// The linear path handles the common case (a simple back-to-back sequence)
// without the cost and risk of full graph compositing.
func SelectStrategy(s timeline.Summary) Strategy {
	if len(s.Gaps) == 0 && s.MaxConcurrentTracks <= 1 && !s.HasOverlappingClips {
		return StrategyLinear
	}
	return StrategyCompositing
}

// Compile translates the prepared timeline into a Command. It never touches
// the filesystem and never executes anything; given equal inputs it emits
// an identical Command.
func Compile(p *prepare.Prepared, opts Options) (*Command, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}
	if p == nil || len(p.Clips) == 0 {
		return nil, &CompilationError{Reason: "no prepared clips"}
	}
	for _, c := range p.Clips {
		if !c.HasVideo && !c.HasAudio {
			return nil, &CompilationError{Reason: fmt.Sprintf("clip %q carries neither audio nor video", c.AssetID)}
		}
	}

	cmd := &Command{
		Binary:        "ffmpeg",
		Strategy:      SelectStrategy(p.Summary),
		Container:     opts.Container,
		OutputPath:    opts.OutputPath,
		Overwrite:     true,
		TotalDuration: p.Summary.TotalDuration,
	}
	if opts.Container == ContainerMP4 || opts.Container == ContainerMOV {
		cmd.ContainerOpts = []string{"-movflags", "+faststart"}
	}

	if cmd.Strategy == StrategyLinear && passthroughEligible(p, opts) {
		buildPassthrough(cmd, p, opts)
		return cmd, nil
	}

	cmd.VideoEncoder = opts.VideoCodec.encoder()
	cmd.AudioEncoder = opts.AudioCodec
	cmd.CRF = opts.Quality.CRF()

	switch cmd.Strategy {
	case StrategyLinear:
		buildLinear(cmd, p, opts)
	case StrategyCompositing:
		buildCompositing(cmd, p, opts)
	}

	// Burn-in needs a video stream to draw on; an audio-only timeline
	// simply drops its captions.
	if p.Captions != nil && cmd.HasVideoOut {
		appendBurnIn(cmd, p.Captions, opts)
	}
	return cmd, nil
}

// passthroughEligible reports whether the whole pipeline can be
// stream-copied: no resolution or frame-rate change, no caption burn-in,
// and uniform stream presence across clips (the concat demuxer cannot mix
// segments with differing stream sets).
func passthroughEligible(p *prepare.Prepared, opts Options) bool {
	if !opts.keepResolution() || !opts.keepFrameRate() || p.Captions != nil {
		return false
	}
	first := p.Clips[0]
	for _, c := range p.Clips[1:] {
		if c.HasVideo != first.HasVideo || c.HasAudio != first.HasAudio {
			return false
		}
	}
	return true
}

// buildPassthrough emits the zero-re-encode path: one concat-demuxer list
// with per-file inpoint/outpoint, all streams copied.
func buildPassthrough(cmd *Command, p *prepare.Prepared, opts Options) {
	var b strings.Builder
	b.WriteString("ffconcat version 1.0\n")
	for _, c := range p.Clips {
		fmt.Fprintf(&b, "file '%s'\n", escapeConcatPath(c.Path))
		fmt.Fprintf(&b, "inpoint %s\n", formatSeconds(c.TrimIn))
		fmt.Fprintf(&b, "outpoint %s\n", formatSeconds(c.TrimOut))
	}

	list := scratchPath(opts.ScratchDir, concatListName)
	cmd.Passthrough = true
	cmd.ConcatList = list
	cmd.Artifacts = append(cmd.Artifacts, Artifact{Path: list, Data: []byte(b.String())})
	cmd.HasVideoOut = p.Clips[0].HasVideo
	cmd.HasAudioOut = p.Clips[0].HasAudio
}

// buildLinear emits the re-encoding trim-and-concatenate graph. Every clip
// contributes one video and (when the timeline has audio anywhere) one
// audio segment; missing streams are synthesized so the concat inputs stay
// uniform.
func buildLinear(cmd *Command, p *prepare.Prepared, opts Options) {
	hasVideo, hasAudio := timelineStreams(p)

	var concatIn []string
	for i, c := range p.Clips {
		cmd.Inputs = append(cmd.Inputs, Input{Path: c.Path})

		if hasVideo {
			vlabel := fmt.Sprintf("v%d", i)
			if c.HasVideo {
				cmd.Stages = append(cmd.Stages, Stage{
					Kind:    StageTrimVideo,
					Inputs:  []string{fmt.Sprintf("%d:v", i)},
					Outputs: []string{vlabel},
					Start:   c.TrimIn,
					End:     c.TrimOut,
				})
			} else {
				cmd.Stages = append(cmd.Stages, fillerCanvas(vlabel, c.Duration, opts))
			}
			concatIn = append(concatIn, vlabel)
		}
		if hasAudio {
			alabel := fmt.Sprintf("a%d", i)
			if c.HasAudio {
				cmd.Stages = append(cmd.Stages, Stage{
					Kind:    StageTrimAudio,
					Inputs:  []string{fmt.Sprintf("%d:a", i)},
					Outputs: []string{alabel},
					Start:   c.TrimIn,
					End:     c.TrimOut,
				})
			} else {
				cmd.Stages = append(cmd.Stages, Stage{
					Kind:     StageSilence,
					Outputs:  []string{alabel},
					Duration: c.Duration,
				})
			}
			concatIn = append(concatIn, alabel)
		}
	}

	concat := Stage{
		Kind:      StageConcat,
		Inputs:    concatIn,
		Count:     len(p.Clips),
		WithVideo: hasVideo,
		WithAudio: hasAudio,
	}
	if hasVideo {
		concat.Outputs = append(concat.Outputs, "vcat")
	}
	if hasAudio {
		concat.Outputs = append(concat.Outputs, "acat")
	}
	cmd.Stages = append(cmd.Stages, concat)

	vlabel := "vcat"
	if hasVideo {
		vlabel = appendFormatStages(cmd, vlabel, opts)
	}
	finishMaps(cmd, hasVideo, hasAudio, vlabel, "acat")
}

// buildCompositing emits the canvas/bed layering graph. The synthetic base
// streams span the full timeline duration, so gaps need no special casing;
// clips are additive overlays applied in ascending start-time order, which
// alone defines the overlap tie-break (later track wins).
func buildCompositing(cmd *Command, p *prepare.Prepared, opts Options) {
	w, h, fps := opts.Width, opts.Height, opts.FPS
	if opts.keepResolution() {
		w, h = defaultCanvasWidth, defaultCanvasHeight
	}
	if opts.keepFrameRate() {
		fps = defaultCanvasFPS
	}

	cmd.Stages = append(cmd.Stages, Stage{
		Kind:     StageCanvas,
		Outputs:  []string{"base0"},
		Duration: p.Summary.TotalDuration,
		Width:    w,
		Height:   h,
		FPS:      fps,
	}, Stage{
		Kind:     StageSilence,
		Outputs:  []string{"abase0"},
		Duration: p.Summary.TotalDuration,
	})

	vbase, abase := "base0", "abase0"
	vn, an := 0, 0
	for i, c := range p.Clips {
		cmd.Inputs = append(cmd.Inputs, Input{Path: c.Path})

		if c.HasVideo {
			vlabel := fmt.Sprintf("v%d", i)
			cmd.Stages = append(cmd.Stages, Stage{
				Kind:    StageTrimVideo,
				Inputs:  []string{fmt.Sprintf("%d:v", i)},
				Outputs: []string{vlabel},
				Start:   c.TrimIn,
				End:     c.TrimOut,
				Offset:  c.StartTime,
			})
			vn++
			next := fmt.Sprintf("base%d", vn)
			cmd.Stages = append(cmd.Stages, Stage{
				Kind:    StageOverlay,
				Inputs:  []string{vbase, vlabel},
				Outputs: []string{next},
				Start:   c.StartTime,
				End:     c.End(),
			})
			vbase = next
		}
		if c.HasAudio {
			alabel := fmt.Sprintf("a%d", i)
			cmd.Stages = append(cmd.Stages, Stage{
				Kind:    StageTrimAudio,
				Inputs:  []string{fmt.Sprintf("%d:a", i)},
				Outputs: []string{alabel},
				Start:   c.TrimIn,
				End:     c.TrimOut,
				Offset:  c.StartTime,
			})
			an++
			next := fmt.Sprintf("abase%d", an)
			cmd.Stages = append(cmd.Stages, Stage{
				Kind:    StageMix,
				Inputs:  []string{abase, alabel},
				Outputs: []string{next},
			})
			abase = next
		}
	}

	finishMaps(cmd, true, true, vbase, abase)
}

// fillerCanvas synthesizes black video matching the output format for a
// clip that carries no video stream.
func fillerCanvas(label string, duration float64, opts Options) Stage {
	w, h, fps := opts.Width, opts.Height, opts.FPS
	if opts.keepResolution() {
		w, h = defaultCanvasWidth, defaultCanvasHeight
	}
	if opts.keepFrameRate() {
		fps = defaultCanvasFPS
	}
	return Stage{
		Kind:     StageCanvas,
		Outputs:  []string{label},
		Duration: duration,
		Width:    w,
		Height:   h,
		FPS:      fps,
	}
}

// appendFormatStages adds the optional scale and frame-rate stages to the
// video chain and returns the final label. "Source" sentinels add nothing.
func appendFormatStages(cmd *Command, vlabel string, opts Options) string {
	if !opts.keepResolution() {
		cmd.Stages = append(cmd.Stages, Stage{
			Kind:    StageScale,
			Inputs:  []string{vlabel},
			Outputs: []string{"vscaled"},
			Width:   opts.Width,
			Height:  opts.Height,
		})
		vlabel = "vscaled"
	}
	if !opts.keepFrameRate() {
		cmd.Stages = append(cmd.Stages, Stage{
			Kind:    StageFPS,
			Inputs:  []string{vlabel},
			Outputs: []string{"vrated"},
			FPS:     opts.FPS,
		})
		vlabel = "vrated"
	}
	return vlabel
}

// appendBurnIn renders captions into the video pixels as the final stage
// before output mapping, rewriting the video map to the burn-in output.
func appendBurnIn(cmd *Command, doc *captions.Document, opts Options) {
	srt := scratchPath(opts.ScratchDir, captionsName)
	cmd.Artifacts = append(cmd.Artifacts, Artifact{Path: srt, Data: captions.RenderSRT(doc)})

	last := cmd.Maps[0]
	cmd.Stages = append(cmd.Stages, Stage{
		Kind:         StageBurnIn,
		Inputs:       []string{strings.Trim(last, "[]")},
		Outputs:      []string{"vburned"},
		SubtitlePath: srt,
	})
	cmd.Maps[0] = "[vburned]"
}

// finishMaps records the final stream mappings and output stream presence.
func finishMaps(cmd *Command, hasVideo, hasAudio bool, vlabel, alabel string) {
	if hasVideo {
		cmd.Maps = append(cmd.Maps, "["+vlabel+"]")
		cmd.HasVideoOut = true
	}
	if hasAudio {
		cmd.Maps = append(cmd.Maps, "["+alabel+"]")
		cmd.HasAudioOut = true
	}
}

// timelineStreams reports whether any clip contributes video or audio.
func timelineStreams(p *prepare.Prepared) (video, audio bool) {
	for _, c := range p.Clips {
		video = video || c.HasVideo
		audio = audio || c.HasAudio
	}
	return video, audio
}
