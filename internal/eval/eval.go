// Package eval implements the evaluation interface of spec 4.G:
// evaluate(board, alpha, beta) -> centipawns from the side to move. The
// search core only depends on this signature; everything here (piece-square
// tables, mobility, king safety) is internal detail, per spec 1's "evaluation
// internals are opaque to the core". Grounded on the teacher's phased
// (midgame/endgame) weighted-feature evaluation shape and its lazy-margin
// early exit.
package eval

import (
	"github.com/rudzen/feliscatus-sub000/internal/bitboard"
	"github.com/rudzen/feliscatus-sub000/internal/pawnhash"
	"github.com/rudzen/feliscatus-sub000/internal/position"
)

// LazyMargin is the spec 4.G lazy-exit threshold: when the material-only
// score is farther from both window bounds than this, skip the rest of
// evaluation and return it directly.
const LazyMargin = 200

type score struct{ M, E int32 }

// phaseWeight[pieceType] contributes to the 0..24 game-phase counter used to
// blend midgame/endgame scores (standard "phase from remaining material").
var phaseWeight = [7]int32{0, 0, 1, 1, 2, 4, 0}

const totalPhase = 24

// mobilityWeight is applied per reachable square, per piece type.
var mobilityWeight = [7]score{
	{}, {}, {M: 4, E: 4}, {M: 4, E: 4}, {M: 2, E: 4}, {M: 1, E: 2}, {},
}

var bishopPairBonus = score{M: 30, E: 50}
var rookOpenFile = score{M: 20, E: 10}
var rookHalfOpenFile = score{M: 10, E: 5}
var kingShelterPawn = score{M: 8, E: 0}

// pst holds white-perspective piece-square tables indexed [pieceType][square
// as rank*8+file with rank 0 = white's first rank]; black's score for a
// square is looked up via the vertically mirrored square.
var pst [7][64]score

func init() {
	// Gentle centralization bonus, stronger for minor pieces, flatter for
	// rooks/queens — matches the shape (not the tuned magnitude) of the
	// teacher's wFigureFile/wFigureRank split without reproducing its
	// trained coefficients.
	center := func(sq bitboard.Square) int32 {
		f, r := sq.File(), sq.Rank()
		df, dr := f-3, r-3
		if df < 0 {
			df = -df - 1
		}
		if dr < 0 {
			dr = -dr - 1
		}
		return int32(6 - df - dr)
	}
	for sq := bitboard.Square(0); sq < 64; sq++ {
		c := center(sq)
		pst[position.Knight][sq] = score{M: 3 * c, E: 2 * c}
		pst[position.Bishop][sq] = score{M: 2 * c, E: 2 * c}
		pst[position.Queen][sq] = score{M: c, E: c}
		pst[position.King][sq] = score{M: -2 * c, E: 2 * c}
	}
}

func mirror(sq bitboard.Square) bitboard.Square {
	return bitboard.Square(int(sq) ^ 56)
}

// Evaluate returns a centipawn score from board's side-to-move perspective,
// honoring the lazy-margin early exit and feeding material draws straight
// through (Position.RecognizedDraw is maintained incrementally by
// internal/position on every DoMove, ahead of this call).
func Evaluate(b *position.Board, pawns *pawnhash.Table, alpha, beta int32) int32 {
	cur := b.Current()
	if cur.RecognizedDraw {
		return 0
	}

	us := cur.SideToMove
	them := us.Opposite()

	material := cur.MaterialScore[us] - cur.MaterialScore[them]
	if material > beta+LazyMargin || material < alpha-LazyMargin {
		return material
	}

	phase := gamePhase(cur)
	pe := pawns.Get(b)

	var mid, end int32
	mid += accumulate(b, us, pe, true) - accumulate(b, them, pe, true)
	end += accumulate(b, us, pe, false) - accumulate(b, them, pe, false)

	blended := (mid*(totalPhase-phase) + end*phase) / totalPhase
	return material + blended
}

func gamePhase(p *position.Position) int32 {
	phase := totalPhase
	for c := position.White; c <= position.Black; c++ {
		for pt := position.Knight; pt <= position.Queen; pt++ {
			n := (p.MaterialCount[c] >> (4 * uint(pt))) & 0xF
			phase -= int(n) * int(phaseWeight[pt])
		}
	}
	if phase < 0 {
		phase = 0
	}
	return int32(phase)
}

func accumulate(b *position.Board, c position.Color, pe pawnhash.Entry, mid bool) int32 {
	var total int32
	occ := b.Occupancy()

	for pt := position.Knight; pt <= position.King; pt++ {
		for p := b.PieceBB(c, pt); p != 0; {
			sq := bitboard.PopLSB(&p)
			lookup := sq
			if c == position.Black {
				lookup = mirror(sq)
			}
			sc := pst[pt][lookup]
			if mid {
				total += sc.M
			} else {
				total += sc.E
			}

			attacks := attacksFromFor(pt, sq, occ) &^ b.ColorBB(c)
			mw := mobilityWeight[pt]
			n := int32(attacks.Count())
			if mid {
				total += n * mw.M
			} else {
				total += n * mw.E
			}

			if pt == position.Rook {
				file := sq.File()
				fileMask := bitboard.FileBb(file)
				if pe.OpenFiles[c]&fileMask != 0 {
					if mid {
						total += rookOpenFile.M
					} else {
						total += rookOpenFile.E
					}
				} else if pe.HalfOpenFiles[c]&fileMask != 0 {
					if mid {
						total += rookHalfOpenFile.M
					} else {
						total += rookHalfOpenFile.E
					}
				}
			}
		}
	}

	if b.PieceBB(c, position.Bishop).Count() >= 2 {
		if mid {
			total += bishopPairBonus.M
		} else {
			total += bishopPairBonus.E
		}
	}

	if mid {
		total += pe.MidScore[c]
		total += shelterScore(b, c)
	} else {
		total += pe.EndScore[c]
	}

	return total
}

func shelterScore(b *position.Board, c position.Color) int32 {
	kingSq := b.KingSquare(c)
	shield := bitboard.KingAttacks[kingSq] & b.PieceBB(c, position.Pawn)
	return int32(shield.Count()) * kingShelterPawn.M
}

func attacksFromFor(pt position.PieceType, sq position.Square, occ position.Bitboard) position.Bitboard {
	switch pt {
	case position.Knight:
		return bitboard.KnightAttacks[sq]
	case position.Bishop:
		return bitboard.BishopAttacks(sq, occ)
	case position.Rook:
		return bitboard.RookAttacks(sq, occ)
	case position.Queen:
		return bitboard.QueenAttacks(sq, occ)
	case position.King:
		return bitboard.KingAttacks[sq]
	}
	return 0
}
