package search

import "github.com/rudzen/feliscatus-sub000/internal/position"

const historyMax = 2048

// historyTable is a per-thread quiet-move ordering score, indexed by the
// moving Piece (low 3 bits type, bit 3 color) and destination square, per
// spec 4.I's "history[piece][to] += depth^2" update.
type historyTable struct {
	scores [16][64]int32
}

func (h *historyTable) get(piece position.Piece, to position.Square) int32 {
	return h.scores[piece][to]
}

// bonus adds depth^2 to the entry, right-shifting the whole table by 2 bits
// (dividing by 4) once the updated entry crosses historyMax, per spec 4.I.
func (h *historyTable) bonus(piece position.Piece, to position.Square, depth int) {
	d := int32(depth)
	h.scores[piece][to] += d * d
	if h.scores[piece][to] <= historyMax {
		return
	}
	for p := range h.scores {
		for s := range h.scores[p] {
			h.scores[p][s] >>= 2
		}
	}
}

// counterMoveTable records, for the (piece, to) of the move that led to a
// node, the move that most recently produced a beta cutoff there.
type counterMoveTable struct {
	moves [16][64]position.Move
}

func (c *counterMoveTable) get(priorMove position.Move) position.Move {
	if priorMove.IsNull() {
		return position.NullMove
	}
	return c.moves[priorMove.Piece()][priorMove.To()]
}

func (c *counterMoveTable) set(priorMove, reply position.Move) {
	if priorMove.IsNull() {
		return
	}
	c.moves[priorMove.Piece()][priorMove.To()] = reply
}

// insertKiller prepends m to the ring, removing any existing occurrence
// first so the 4-slot ring never holds a duplicate, per spec 4.I.
func insertKiller(ring *[position.KillerSlots]position.Move, m position.Move) {
	if ring[0] == m {
		return
	}
	for i, k := range ring {
		if k == m {
			copy(ring[1:i+1], ring[0:i])
			ring[0] = m
			return
		}
	}
	copy(ring[1:], ring[0:len(ring)-1])
	ring[0] = m
}

func isKiller(ring [position.KillerSlots]position.Move, m position.Move) bool {
	for _, k := range ring {
		if k == m {
			return true
		}
	}
	return false
}
