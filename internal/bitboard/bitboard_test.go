package bitboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKnightAttacksCorner(t *testing.T) {
	// A knight on a1 attacks exactly b3 and c2.
	want := B3.Bb() | C2.Bb()
	require.Equal(t, want, KnightAttacks[A1])
}

func TestKingAttacksCenter(t *testing.T) {
	require.Equal(t, 8, KingAttacks[E4].Count())
}

func TestPawnAttacks(t *testing.T) {
	require.Equal(t, D3.Bb()|F3.Bb(), PawnAttacks[0][E2])
	require.Equal(t, D6.Bb()|F6.Bb(), PawnAttacks[1][E7])
}

func TestRookAttacksEmptyBoard(t *testing.T) {
	att := RookAttacks(A1, Empty)
	require.Equal(t, 14, att.Count())
}

func TestBishopAttacksBlocked(t *testing.T) {
	occ := D4.Bb()
	att := BishopAttacks(A1, occ)
	require.True(t, att.Has(D4))
	require.False(t, att.Has(E5))
}

func TestQueenAttacksIsUnion(t *testing.T) {
	occ := Bitboard(0)
	require.Equal(t, RookAttacks(D4, occ)|BishopAttacks(D4, occ), QueenAttacks(D4, occ))
}

func TestBetweenAndLine(t *testing.T) {
	require.Equal(t, B1.Bb()|C1.Bb()|D1.Bb(), Between[A1][E1])
	require.Equal(t, Rank1Bb, Line[A1][E1])
	require.Equal(t, Empty, Between[A1][B2])
}

func TestPopLSB(t *testing.T) {
	bb := C2.Bb() | A1.Bb()
	sq := PopLSB(&bb)
	require.Equal(t, A1, sq)
	require.Equal(t, C2.Bb(), bb)
}
