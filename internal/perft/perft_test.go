package perft

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rudzen/feliscatus-sub000/internal/position"
)

func perftBoard(t *testing.T, fen string) *position.Board {
	t.Helper()
	b := position.NewBoard()
	require.NoError(t, b.SetFromFEN(fen))
	return b
}

func TestCountStartposKnownValues(t *testing.T) {
	b := perftBoard(t, position.StartFEN)
	require.Equal(t, uint64(1), Count(b, 0))
	require.Equal(t, uint64(20), Count(b, 1))
	require.Equal(t, uint64(400), Count(b, 2))
	require.Equal(t, uint64(8902), Count(b, 3))
}

func TestCountKiwipeteKnownValue(t *testing.T) {
	b := perftBoard(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.Equal(t, uint64(48), Count(b, 1))
}

func TestCountRestoresBoardAfterRecursion(t *testing.T) {
	b := perftBoard(t, position.StartFEN)
	before := b.Current().Key
	Count(b, 3)
	require.Equal(t, before, b.Current().Key)
}

func TestDivideSumsToCount(t *testing.T) {
	b := perftBoard(t, position.StartFEN)
	div := Divide(b, 3)

	var total uint64
	for _, n := range div {
		total += n
	}
	require.Len(t, div, 20)
	require.Equal(t, Count(b, 3), total)
}

func TestDivideAtZeroDepthIsEmpty(t *testing.T) {
	b := perftBoard(t, position.StartFEN)
	require.Empty(t, Divide(b, 0))
}
