package captions

// Span is one time-stamped caption line. Start and End are seconds; the
// reference frame (asset-relative vs timeline-relative) depends on whether
// the document has been rebased.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Document is an ordered list of caption spans, as produced by the external
// caption service in asset-relative seconds.
type Document struct {
	Spans []Span `json:"spans"`
}

// Empty reports whether the document carries no spans.
func (d *Document) Empty() bool {
	return d == nil || len(d.Spans) == 0
}

// Rebase shifts a document's timestamps from asset-relative to
// timeline-relative time for a clip placed at startTime and trimmed at
// trimIn: each boundary becomes max(0, t-trimIn)+startTime. Spans that end
// at or before the trim point are dropped. The input document is not
// modified.
func Rebase(doc *Document, trimIn, startTime float64) *Document {
	if doc.Empty() {
		return &Document{}
	}

	out := &Document{Spans: make([]Span, 0, len(doc.Spans))}
	for _, sp := range doc.Spans {
		end := sp.End - trimIn
		if end <= 0 {
			continue
		}
		start := sp.Start - trimIn
		if start < 0 {
			start = 0
		}
		out.Spans = append(out.Spans, Span{
			Start: start + startTime,
			End:   end + startTime,
			Text:  sp.Text,
		})
	}
	return out
}

// Merge concatenates already-rebased documents in clip order into one
// document. Span order within each input is preserved; nothing is re-sorted.
func Merge(docs ...*Document) *Document {
	out := &Document{}
	for _, d := range docs {
		if d.Empty() {
			continue
		}
		out.Spans = append(out.Spans, d.Spans...)
	}
	return out
}
