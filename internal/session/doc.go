// Package session owns the single active export: its state machine
// (idle → preparing → encoding → complete/error, with cancel back to
// idle), the single-flight guard, synthetic progress, and the guarantee
// that no temporary files survive a terminal state.
//
// The encoder reports nothing but its exit status, so the progress
// percentage during encoding is a synthesized, monotonically increasing
// estimate capped below 100; it snaps to 100 only when the process
// genuinely exits.
package session
