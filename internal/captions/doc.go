// Package captions rebases caption timestamps from asset-relative time to
// timeline-relative time and merges per-clip documents into the single
// burn-in artifact the command compiler consumes.
//
// Both Rebase and Merge are pure, order-preserving transforms: re-running
// them on the same inputs yields byte-identical output.
package captions
