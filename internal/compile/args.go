package compile

import (
	"fmt"
	"strconv"
	"strings"
)

// Args renders the command to the encoder's argv. This is the single
// boundary where the typed graph meets ffmpeg's textual filter syntax;
// all escaping rules live here and in the helpers below.
func (c *Command) Args() []string {
	args := make([]string, 0, 32)
	args = append(args, c.Binary, "-hide_banner", "-nostdin", "-loglevel", "error")
	if c.Overwrite {
		args = append(args, "-y")
	} else {
		args = append(args, "-n")
	}

	if c.Passthrough {
		args = append(args,
			"-f", "concat", "-safe", "0",
			"-i", c.ConcatList,
			"-c", "copy",
			"-avoid_negative_ts", "make_zero",
		)
		args = append(args, c.ContainerOpts...)
		args = append(args, c.OutputPath)
		return args
	}

	for _, in := range c.Inputs {
		args = append(args, "-i", in.Path)
	}

	if len(c.Stages) > 0 {
		args = append(args, "-filter_complex", c.filterGraph())
	}
	for _, m := range c.Maps {
		args = append(args, "-map", m)
	}

	if c.HasVideoOut {
		args = append(args,
			"-c:v", c.VideoEncoder,
			"-crf", strconv.Itoa(c.CRF),
			"-preset", "medium",
			"-pix_fmt", "yuv420p",
		)
	}
	if c.HasAudioOut {
		args = append(args, "-c:a", c.AudioEncoder, "-b:a", "192k")
	} else {
		args = append(args, "-an")
	}

	args = append(args, c.ContainerOpts...)
	args = append(args, c.OutputPath)
	return args
}

// filterGraph joins the rendered stages with ";" into one filter_complex
// expression.
func (c *Command) filterGraph() string {
	parts := make([]string, 0, len(c.Stages))
	for _, st := range c.Stages {
		parts = append(parts, renderStage(st))
	}
	return strings.Join(parts, ";")
}

// renderStage serializes one typed stage to ffmpeg filter syntax.
func renderStage(st Stage) string {
	var b strings.Builder
	for _, in := range st.Inputs {
		b.WriteString("[" + in + "]")
	}

	switch st.Kind {
	case StageTrimVideo:
		fmt.Fprintf(&b, "trim=start=%s:end=%s,setpts=PTS-STARTPTS",
			formatSeconds(st.Start), formatSeconds(st.End))
		if st.Offset > 0 {
			fmt.Fprintf(&b, "+%s/TB", formatSeconds(st.Offset))
		}

	case StageTrimAudio:
		fmt.Fprintf(&b, "atrim=start=%s:end=%s,asetpts=PTS-STARTPTS",
			formatSeconds(st.Start), formatSeconds(st.End))
		if st.Offset > 0 {
			fmt.Fprintf(&b, ",adelay=%d:all=1", int(st.Offset*1000+0.5))
		}

	case StageCanvas:
		fmt.Fprintf(&b, "color=c=black:s=%dx%d:r=%d:d=%s",
			st.Width, st.Height, st.FPS, formatSeconds(st.Duration))

	case StageSilence:
		fmt.Fprintf(&b, "anullsrc=channel_layout=%s:sample_rate=%d,atrim=0:%s",
			bedChannelLayout, bedSampleRate, formatSeconds(st.Duration))

	case StageOverlay:
		fmt.Fprintf(&b, "overlay=eof_action=pass:enable='between(t,%s,%s)'",
			formatSeconds(st.Start), formatSeconds(st.End))

	case StageMix:
		b.WriteString("amix=inputs=2:duration=first:normalize=0")

	case StageConcat:
		fmt.Fprintf(&b, "concat=n=%d:v=%d:a=%d",
			st.Count, boolArg(st.WithVideo), boolArg(st.WithAudio))

	case StageScale:
		fmt.Fprintf(&b, "scale=%d:%d", st.Width, st.Height)

	case StageFPS:
		fmt.Fprintf(&b, "fps=fps=%d", st.FPS)

	case StageBurnIn:
		fmt.Fprintf(&b, "subtitles=filename=%s", escapeFilterPath(st.SubtitlePath))
	}

	for _, out := range st.Outputs {
		b.WriteString("[" + out + "]")
	}
	return b.String()
}

// formatSeconds renders a time value with the shortest exact decimal form,
// keeping the serialized graph deterministic.
func formatSeconds(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func boolArg(v bool) int {
	if v {
		return 1
	}
	return 0
}

// escapeFilterPath escapes a file path for use as a filter option value.
// Filter option parsing strips one level: backslash, quote, colon, comma,
// and bracket characters all need escaping or the graph is misparsed.
var filterPathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`:`, `\:`,
	`,`, `\,`,
	`[`, `\[`,
	`]`, `\]`,
	`;`, `\;`,
)

func escapeFilterPath(path string) string {
	return filterPathEscaper.Replace(path)
}

// escapeConcatPath escapes a path for a single-quoted concat-demuxer list
// entry: embedded quotes close the string, insert an escaped quote, and
// reopen it.
func escapeConcatPath(path string) string {
	return strings.ReplaceAll(path, `'`, `'\''`)
}
