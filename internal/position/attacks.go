package position

import "github.com/rudzen/feliscatus-sub000/internal/bitboard"

// attacksFrom returns the attack set of piece type pt, color c, standing on
// sq, given the full-board occupancy occ. Pawns need the color to pick the
// correct capture direction; other figures don't.
func attacksFrom(pt PieceType, c Color, sq Square, occ Bitboard) Bitboard {
	switch pt {
	case Pawn:
		return bitboard.PawnAttacks[c][sq]
	case Knight:
		return bitboard.KnightAttacks[sq]
	case Bishop:
		return bitboard.BishopAttacks(sq, occ)
	case Rook:
		return bitboard.RookAttacks(sq, occ)
	case Queen:
		return bitboard.QueenAttacks(sq, occ)
	case King:
		return bitboard.KingAttacks[sq]
	}
	return 0
}

// AttackersTo returns every square occupied by a piece (of either color,
// unless restricted by the caller) attacking sq, given occupancy occ.
func (b *Board) AttackersTo(sq Square, occ Bitboard) Bitboard {
	return (bitboard.PawnAttacks[White][sq] & b.PieceBB(Black, Pawn)) |
		(bitboard.PawnAttacks[Black][sq] & b.PieceBB(White, Pawn)) |
		(bitboard.KnightAttacks[sq] & b.PieceTypeBB(Knight)) |
		(bitboard.KingAttacks[sq] & b.PieceTypeBB(King)) |
		(bitboard.BishopAttacks(sq, occ) & (b.PieceTypeBB(Bishop) | b.PieceTypeBB(Queen))) |
		(bitboard.RookAttacks(sq, occ) & (b.PieceTypeBB(Rook) | b.PieceTypeBB(Queen)))
}

// IsAttacked reports whether sq is attacked by color `by`, per spec 4.C.
func (b *Board) IsAttacked(sq Square, by Color) bool {
	return b.AttackersTo(sq, b.Occupancy())&b.ColorBB(by) != 0
}

// computeCheckers returns the set of `by`'s pieces giving check to the king
// of the side to move.
func (b *Board) computeCheckers(kingSq Square, by Color) Bitboard {
	return b.AttackersTo(kingSq, b.Occupancy()) & b.ColorBB(by)
}

// PinnedPieces returns us's pieces that are pinned to us's king, via X-ray
// attacks from the king through a single own blocker to an enemy slider
// (spec 4.C).
func (b *Board) PinnedPieces(us Color, kingSq Square) Bitboard {
	them := us.Opposite()
	occ := b.Occupancy()

	var pinned Bitboard
	snipers := (bitboard.RookAttacks(kingSq, 0) & (b.PieceBB(them, Rook) | b.PieceBB(them, Queen))) |
		(bitboard.BishopAttacks(kingSq, 0) & (b.PieceBB(them, Bishop) | b.PieceBB(them, Queen)))

	for s := snipers; s != 0; {
		sniperSq := bitboard.PopLSB(&s)
		between := bitboard.Between[kingSq][sniperSq] & occ
		if between != 0 && (between&(between-1)) == 0 {
			// Exactly one blocker between king and sniper.
			if between&b.ColorBB(us) != 0 {
				pinned |= between
			}
		}
	}
	return pinned
}

// IsInCheck reports whether c's king is currently attacked.
func (b *Board) IsInCheck(c Color) bool {
	return b.IsAttacked(b.KingSquare(c), c.Opposite())
}
