package search

import "github.com/rudzen/feliscatus-sub000/internal/position"

// pvTable is the triangular principal-variation array of spec 4.I: row ply
// holds the best line from ply to length[ply]-1. On an exact-bound
// improvement at ply, the child row ply+1 is copied into row ply starting at
// ply+1, and the move just played is prepended at ply.
type pvTable struct {
	table  [MaxPly][MaxPly]position.Move
	length [MaxPly]int
}

// clear marks row ply empty, ahead of this node's move loop.
func (pv *pvTable) clear(ply int) {
	pv.length[ply] = ply
}

// update prepends m to row ply and copies the child row forward, per spec
// 4.I's "PV update".
func (pv *pvTable) update(ply int, m position.Move) {
	pv.table[ply][ply] = m
	for next := ply + 1; next < pv.length[ply+1]; next++ {
		pv.table[ply][next] = pv.table[ply+1][next]
	}
	pv.length[ply] = pv.length[ply+1]
}

// line returns the root principal variation.
func (pv *pvTable) line() []position.Move {
	n := pv.length[0]
	if n <= 0 {
		return nil
	}
	out := make([]position.Move, n)
	copy(out, pv.table[0][:n])
	return out
}
