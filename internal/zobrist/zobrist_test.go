package zobrist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPawnPieceSquareOnlyHasPawnEntries(t *testing.T) {
	for pc := 0; pc < 16; pc++ {
		for sq := 0; sq < 64; sq++ {
			if pc == 1 || pc == 9 {
				require.Equal(t, PieceSquare[pc][sq], PawnPieceSquare[pc][sq])
				continue
			}
			require.Equal(t, uint64(0), PawnPieceSquare[pc][sq])
		}
	}
}

func TestKeysAreDeterministicAcrossPackageLoad(t *testing.T) {
	// init() runs once per process from a fixed seed: every key must be
	// non-zero (an all-zero key would mean the generator silently failed)
	// and no two piece/square slots collide by coincidence of our fixture.
	require.NotEqual(t, uint64(0), PieceSquare[1][0])
	require.NotEqual(t, uint64(0), Side)
	require.NotEqual(t, PieceSquare[1][0], PieceSquare[1][1])
}

func TestCastlingHasSixteenDistinctEntries(t *testing.T) {
	seen := make(map[uint64]bool, 16)
	for _, k := range Castling {
		seen[k] = true
	}
	require.Len(t, seen, 16)
}

func TestEpFileHasNineDistinctEntries(t *testing.T) {
	seen := make(map[uint64]bool, len(EpFile))
	for _, k := range EpFile {
		seen[k] = true
	}
	require.Len(t, seen, len(EpFile))
	require.Equal(t, 8, EpNone)
}
