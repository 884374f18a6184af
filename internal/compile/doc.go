// Package compile translates a prepared timeline into one deterministic
// ffmpeg invocation. It is a pure translator: it never executes anything
// and is tested by asserting on the emitted structure alone.
//
// Strategy selection is the first decision. A gap-free, non-overlapping,
// single-concurrency timeline takes the linear path (trim and concatenate,
// with a zero-re-encode passthrough when no format change is requested).
// Anything else takes the compositing path: a synthetic black canvas and
// silent audio bed span the whole timeline, and clips are layered on top
// in ascending start-time order, so gaps need no special casing and the
// layering order alone defines overlap precedence.
//
// The processing graph is a typed stage list; serialization to ffmpeg's
// filter syntax (including escaping) lives in exactly one boundary
// function, Command.Args.
package compile
