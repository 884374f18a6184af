// Package prepare resolves the editable timeline into the immutable,
// export-ready projection the command compiler consumes.
//
// Preparation is the validation boundary: asset lookups, trim clamping, and
// degenerate-clip filtering all happen here so the compiler can trust its
// input completely. Problems split into two severities — errors that block
// the export and warnings that only inform strategy selection.
package prepare
