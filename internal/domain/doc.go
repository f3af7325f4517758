// Package domain contains the stats aggregate and the pure operations that
// produce its next snapshot: planner edits, shop purchases, preference changes
// and snapshot hydration. Nothing here performs I/O or keeps hidden state.
package domain
