// Package perft implements the move-generation self-test of spec 8: count
// leaf nodes reachable by depth-N exhaustive enumeration from a position,
// to cross-check the generator and make/unmake against known node counts.
// Grounded on the pack's own perft references (zurichess's perft.go shape,
// treepeck-chego/internal/perft), using internal/move's unstaged Full
// generator rather than the staged/ordered one since perft needs every
// pseudo-legal move, not a best-first subset.
package perft

import (
	"github.com/rudzen/feliscatus-sub000/internal/move"
	"github.com/rudzen/feliscatus-sub000/internal/position"
)

// Count returns the number of leaf positions reachable in exactly depth
// plies from b's current position.
func Count(b *position.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var nodes uint64
	for _, m := range move.Full(b, true) {
		b.DoMove(m)
		nodes += Count(b, depth-1)
		b.UndoMove(m)
	}
	return nodes
}

// Divide returns, for each legal root move, the leaf count of the subtree
// rooted at it (depth-1 plies below), keyed by the move's UCI notation —
// the standard per-move breakdown used to localize a perft mismatch.
func Divide(b *position.Board, depth int) map[string]uint64 {
	out := make(map[string]uint64)
	if depth <= 0 {
		return out
	}
	for _, m := range move.Full(b, true) {
		b.DoMove(m)
		out[m.UCI()] = Count(b, depth-1)
		b.UndoMove(m)
	}
	return out
}
