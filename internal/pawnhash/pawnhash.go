// Package pawnhash implements the per-thread pawn structure cache of spec
// 4.F: direct-indexed by the low bits of the pawn-only Zobrist key,
// recomputed from scratch on a miss. Grounded on the teacher's
// evaluatePawns/evaluateShelter feature set (isolated, doubled, passed,
// connected pawns) and its cache/cacheEntry recompute-on-miss shape.
package pawnhash

import (
	"github.com/rudzen/feliscatus-sub000/internal/bitboard"
	"github.com/rudzen/feliscatus-sub000/internal/position"
)

const tableBits = 16
const tableSize = 1 << tableBits
const tableMask = tableSize - 1

// Entry is one cached pawn-structure evaluation, per spec 3's Pawn-Hash
// Entry record.
type Entry struct {
	Key           uint64
	MidScore      [2]int32
	EndScore      [2]int32
	Passed        [2]position.Bitboard
	OpenFiles     [2]position.Bitboard
	HalfOpenFiles [2]position.Bitboard
	Attacks       [2]position.Bitboard
}

// Table is a fixed-size, per-thread pawn hash. Not safe for concurrent use.
type Table struct {
	entries [tableSize]Entry
	filled  [tableSize]bool
}

// New returns an empty pawn hash table.
func New() *Table { return &Table{} }

// Get returns the cached entry for the board's current pawn key, recomputing
// it on a miss.
func (t *Table) Get(b *position.Board) Entry {
	key := b.Current().PawnKey
	idx := key & tableMask
	e := &t.entries[idx]
	if t.filled[idx] && e.Key == key {
		return *e
	}
	fresh := compute(b, key)
	*e = fresh
	t.filled[idx] = true
	return fresh
}

var doubledPawn = score{M: -8, E: -20}
var isolatedPawn = score{M: -12, E: -16}
var connectedPawn = score{M: 6, E: 10}
var passedPawnByRank = [8]score{
	{M: 0, E: 0}, {M: 0, E: 0}, {M: 4, E: 8}, {M: 8, E: 18},
	{M: 18, E: 34}, {M: 34, E: 60}, {M: 58, E: 96}, {M: 0, E: 0},
}

type score struct{ M, E int32 }

func compute(b *position.Board, key uint64) Entry {
	e := Entry{Key: key}

	pawns := [2]position.Bitboard{
		b.PieceBB(position.White, position.Pawn),
		b.PieceBB(position.Black, position.Pawn),
	}

	e.Attacks[position.White] = attacksOf(pawns[position.White], position.White)
	e.Attacks[position.Black] = attacksOf(pawns[position.Black], position.Black)

	for c := position.White; c <= position.Black; c++ {
		mid, end := scoreSide(c, pawns[c], pawns[c.Opposite()], &e)
		e.MidScore[c] = mid
		e.EndScore[c] = end
	}

	for f := 0; f < 8; f++ {
		fileMask := bitboard.FileBb(f)
		for c := position.White; c <= position.Black; c++ {
			own := pawns[c] & fileMask
			enemy := pawns[c.Opposite()] & fileMask
			if own == 0 && enemy == 0 {
				e.OpenFiles[c] |= fileMask
			} else if own == 0 {
				e.HalfOpenFiles[c] |= fileMask
			}
		}
	}

	return e
}

func scoreSide(c position.Color, own, enemy position.Bitboard, e *Entry) (mid, end int32) {
	for p := own; p != 0; {
		sq := bitboard.PopLSB(&p)
		file := sq.File()
		rank := sq.Rank()

		adjFiles := adjacentFilesMask(file)

		if own&bitboard.FileBb(file)&^sq.Bb() != 0 {
			mid += doubledPawn.M
			end += doubledPawn.E
		}
		if own&adjFiles == 0 {
			mid += isolatedPawn.M
			end += isolatedPawn.E
		} else if own&adjFiles&rankNeighborMask(rank) != 0 {
			mid += connectedPawn.M
			end += connectedPawn.E
		}

		passedZone := aheadMask(sq, c) & (bitboard.FileBb(file) | adjFiles)
		if enemy&passedZone == 0 {
			e.Passed[c] |= sq.Bb()
			adv := advancement(rank, c)
			mid += passedPawnByRank[adv].M
			end += passedPawnByRank[adv].E
		}
	}
	return mid, end
}

func attacksOf(pawns position.Bitboard, c position.Color) position.Bitboard {
	var a position.Bitboard
	for p := pawns; p != 0; {
		sq := bitboard.PopLSB(&p)
		a |= bitboard.PawnAttacks[c][sq]
	}
	return a
}

func adjacentFilesMask(file int) position.Bitboard {
	var m position.Bitboard
	if file > 0 {
		m |= bitboard.FileBb(file - 1)
	}
	if file < 7 {
		m |= bitboard.FileBb(file + 1)
	}
	return m
}

func aheadMask(sq position.Square, c position.Color) position.Bitboard {
	rank := sq.Rank()
	var m position.Bitboard
	if c == position.White {
		for r := rank + 1; r <= 7; r++ {
			m |= bitboard.RankBb(r)
		}
	} else {
		for r := rank - 1; r >= 0; r-- {
			m |= bitboard.RankBb(r)
		}
	}
	return m
}

func rankNeighborMask(rank int) position.Bitboard {
	m := bitboard.RankBb(rank)
	if rank > 0 {
		m |= bitboard.RankBb(rank - 1)
	}
	if rank < 7 {
		m |= bitboard.RankBb(rank + 1)
	}
	return m
}

func advancement(rank int, c position.Color) int {
	if c == position.White {
		return rank
	}
	return 7 - rank
}
