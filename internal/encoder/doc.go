// Package encoder supervises the external ffmpeg process for a compiled
// command: it materializes command artifacts to the scratch directory,
// spawns the encoder, tracks it in an active-process table keyed by an
// opaque handle, and classifies the outcome.
//
// Lifecycle guarantees: every temp file the supervisor creates is deleted
// on every exit path, including failures of the output read-back itself;
// cancellation escalates from a graceful termination signal to a forced
// kill after a bounded grace period; cancelling a process that has already
// exited (and left the table) is a benign no-op.
package encoder
