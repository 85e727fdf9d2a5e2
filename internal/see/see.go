// Package see implements the static exchange evaluator of spec 4.H: the
// predicted material outcome of a sequence of captures on one square,
// computed via the standard "swap algorithm" (minimax over negated gains),
// grounded on zurichess's see.go.
package see

import (
	"github.com/rudzen/feliscatus-sub000/internal/bitboard"
	"github.com/rudzen/feliscatus-sub000/internal/position"
)

const maxSwapDepth = 32

// Move evaluates the capture sequence on m.To() assuming m is about to be
// played, without mutating the board. Used for capture-ordering scores.
func Move(b *position.Board, m position.Move) int32 {
	to := m.To()
	from := m.From()
	mover := m.Piece()
	us := mover.Color()
	them := us.Opposite()

	occ := b.Occupancy() &^ from.Bb()

	var capturedValue int32
	if m.Has(position.EpCapture) {
		capSq := epCaptureSquare(to, us)
		occ &^= capSq.Bb()
		capturedValue = position.PieceValue[position.Pawn]
	} else if m.Has(position.Capture) {
		capturedValue = position.PieceValue[m.Captured()]
	}

	attackerType := mover.Type()
	if m.Has(position.Promotion) {
		promoted := m.Promoted()
		// The pawn arrives on the back rank as the promoted piece, so the
		// bait for the first recapture is worth the promoted piece, not a
		// pawn; fold that delta into the initial gain.
		capturedValue += position.PieceValue[promoted] - position.PieceValue[position.Pawn]
		attackerType = promoted
	}

	return swap(b, to, them, occ, capturedValue, attackerType)
}

// LastMove evaluates whether the move that produced the board's current
// position was a losing capture, from the mover's perspective. Returns 0 for
// a non-capture or the null move.
func LastMove(b *position.Board) int32 {
	cur := b.Current()
	m := cur.LastMove
	if m.IsNull() || !m.IsCapture() {
		return 0
	}

	to := m.To()
	mover := m.Piece()
	us := mover.Color()
	them := us.Opposite()

	var capturedValue int32
	if m.Has(position.EpCapture) {
		capturedValue = position.PieceValue[position.Pawn]
	} else {
		capturedValue = position.PieceValue[m.Captured()]
	}

	attackerType := mover.Type()
	if m.Has(position.Promotion) {
		promoted := m.Promoted()
		capturedValue += position.PieceValue[promoted] - position.PieceValue[position.Pawn]
		attackerType = promoted
	}

	// The move is already applied: `from` is empty and the mover's piece
	// already sits on `to`, so the board's live occupancy is exactly what
	// Move would have built by hand before making the move.
	return swap(b, to, them, b.Occupancy(), capturedValue, attackerType)
}

// swap runs the exchange on `to`, with `side` owning the next recapture,
// `occ` the occupancy after the triggering move has been applied, and
// (capturedValue, attackerType) describing the piece now sitting on `to`
// and what it's worth to take.
func swap(b *position.Board, to position.Square, side position.Color, occ position.Bitboard, capturedValue int32, attackerType position.PieceType) int32 {
	var gain [maxSwapDepth]int32
	gain[0] = capturedValue
	d := 0

	for d < maxSwapDepth-1 {
		d++
		gain[d] = position.PieceValue[attackerType] - gain[d-1]
		if max32(-gain[d-1], gain[d]) < 0 {
			break
		}

		ours := attackersTo(b, to, occ) & b.ColorBB(side) & occ
		if ours == 0 {
			break
		}
		sq, pt := leastValuableAttacker(b, ours)
		occ &^= sq.Bb()
		attackerType = pt
		side = side.Opposite()
	}

	for d--; d > 0; d-- {
		gain[d-1] = -max32(-gain[d-1], gain[d])
	}
	return gain[0]
}

// attackersTo mirrors Board.AttackersTo but additionally restricts every
// candidate set to occ, so pieces "used up" earlier in the swap no longer
// count as attackers even though they still occupy the live board.
func attackersTo(b *position.Board, sq position.Square, occ position.Bitboard) position.Bitboard {
	return (bitboard.PawnAttacks[position.White][sq] & b.PieceBB(position.Black, position.Pawn) & occ) |
		(bitboard.PawnAttacks[position.Black][sq] & b.PieceBB(position.White, position.Pawn) & occ) |
		(bitboard.KnightAttacks[sq] & b.PieceTypeBB(position.Knight) & occ) |
		(bitboard.KingAttacks[sq] & b.PieceTypeBB(position.King) & occ) |
		(bitboard.BishopAttacks(sq, occ) & (b.PieceTypeBB(position.Bishop) | b.PieceTypeBB(position.Queen)) & occ) |
		(bitboard.RookAttacks(sq, occ) & (b.PieceTypeBB(position.Rook) | b.PieceTypeBB(position.Queen)) & occ)
}

func leastValuableAttacker(b *position.Board, attackers position.Bitboard) (position.Square, position.PieceType) {
	for pt := position.Pawn; pt <= position.King; pt++ {
		bb := attackers & b.PieceTypeBB(pt)
		if bb != 0 {
			sq := bitboard.PopLSB(&bb)
			return sq, pt
		}
	}
	return position.NoSquare, position.NoPieceType
}

func epCaptureSquare(to position.Square, mover position.Color) position.Square {
	if mover == position.White {
		return to - 8
	}
	return to + 8
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
