// Package state holds the partitioned mutable state of a story session.
//
// A State has four independently addressable partitions:
//   - state (s): working memory mutated by template evaluation, snapshotted into history
//   - meta (m): per-transition payload passed to the passage being shown
//   - globals (g): settings that survive rewind and reset
//   - config (c): story configuration, read-only once the story has started
//
// Setting a partition replaces it wholesale. There is no partial merge.
package state
