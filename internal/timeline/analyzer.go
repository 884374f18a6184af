package timeline

import "sort"

// timeEpsilon absorbs float noise when comparing clip boundary times.
// Intervals shorter than this are not reported as gaps or segments.
const timeEpsilon = 1e-6

// Analyze inspects the full track list and reports gaps, overlaps,
// concurrency depth, and total duration. It is a pure function over its
// input: the track list is not mutated and repeated calls on the same
// timeline return the same Summary, so the editor may call it after every
// mutation.
func Analyze(tracks []Track) Summary {
	s := Summary{}

	for ti, track := range tracks {
		clips := sortedByStart(track.Clips)

		for i, c := range clips {
			if end := c.End(); end > s.TotalDuration {
				s.TotalDuration = end
			}
			if i == 0 {
				continue
			}
			prev := clips[i-1]
			delta := c.StartTime - prev.End()
			switch {
			case delta > timeEpsilon:
				s.Gaps = append(s.Gaps, Gap{Track: ti, Start: prev.End(), End: c.StartTime})
			case delta < -timeEpsilon:
				s.HasOverlappingClips = true
			}
		}
	}

	s.Segments = buildSegments(tracks)
	for _, seg := range s.Segments {
		if seg.Clips > s.MaxConcurrentTracks {
			s.MaxConcurrentTracks = seg.Clips
		}
	}
	return s
}

// buildSegments collects every clip boundary into a sorted set and counts,
// for each adjacent pair of time points, how many clips are active in that
// half-open interval. Zero-clip intervals are kept so segments partition
// [0, TotalDuration) exactly; empty timelines yield no segments.
func buildSegments(tracks []Track) []Segment {
	var points []float64
	for _, track := range tracks {
		for _, c := range track.Clips {
			points = append(points, c.StartTime, c.End())
		}
	}
	if len(points) == 0 {
		return nil
	}

	sort.Float64s(points)
	points = dedupe(points)

	var segs []Segment
	for i := 0; i+1 < len(points); i++ {
		start, end := points[i], points[i+1]
		if end-start <= timeEpsilon {
			continue
		}
		mid := (start + end) / 2
		active := 0
		for _, track := range tracks {
			for _, c := range track.Clips {
				if c.StartTime <= mid && mid < c.End() {
					active++
				}
			}
		}
		segs = append(segs, Segment{Start: start, End: end, Clips: active})
	}
	return segs
}

func sortedByStart(clips []Clip) []Clip {
	out := make([]Clip, len(clips))
	copy(out, clips)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func dedupe(sorted []float64) []float64 {
	out := sorted[:1]
	for _, p := range sorted[1:] {
		if p-out[len(out)-1] > timeEpsilon {
			out = append(out, p)
		}
	}
	return out
}
