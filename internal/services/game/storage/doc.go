// Package storage defines where saved matches live.
//
// Adapters in subpackages persist one match snapshot per store:
//   - jsonfile: the single save file written by earlier releases
//   - sqlite: named save slots in a SQLite database
//   - memory: process-local, for tests and scripted scenarios
//
// Common error types:
//   - ErrNotFound: there is no saved match
//   - ErrSlotConflict: the match is already saved under another slot
package storage
