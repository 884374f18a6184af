package captions

import (
	"fmt"
	"math"
	"strings"
)

// RenderSRT serializes a rebased document as SubRip text, re-indexed from 1.
// This is the on-disk artifact the compiler's burn-in stage references.
// Output is deterministic: the same document always renders the same bytes.
func RenderSRT(doc *Document) []byte {
	if doc.Empty() {
		return nil
	}

	var b strings.Builder
	for i, sp := range doc.Spans {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n",
			i+1, srtTimestamp(sp.Start), srtTimestamp(sp.End), strings.TrimRight(sp.Text, "\n"))
	}
	return []byte(b.String())
}

// srtTimestamp formats seconds as the SubRip HH:MM:SS,mmm form.
func srtTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int(math.Round(seconds * 1000))
	h := ms / 3600000
	ms -= h * 3600000
	m := ms / 60000
	ms -= m * 60000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
