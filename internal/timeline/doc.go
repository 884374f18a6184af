// Package timeline holds the editable multi-track timeline model and the
// analyzer that inspects it.
//
// The model (Track, Clip) is deliberately permissive: clips within a track
// may overlap and leave gaps, because the editor mutates it freely. Analyze
// is the read-only inspection pass that reports those conditions — gaps,
// overlaps, concurrency depth, total duration — without rejecting anything.
// The export preparer and command compiler decide what to do about them.
package timeline
