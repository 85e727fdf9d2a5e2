package position

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
		"8/8/8/4k3/8/8/4K3/8 w - - 0 1",
	}
	for _, fen := range fens {
		b := NewBoard()
		require.NoError(t, b.SetFromFEN(fen))
		require.Equal(t, fen, b.ToFEN())
	}
}

func TestInvalidFenRejected(t *testing.T) {
	b := NewBoard()
	require.ErrorIs(t, b.SetFromFEN("not a fen"), ErrInvalidFen)
}

func TestDoMoveUndoMoveRestoresKey(t *testing.T) {
	b := NewBoard()
	require.NoError(t, b.SetFromFEN(StartFEN))
	before := b.Current().Key

	m := NewMove(Square(12), Square(28), DoublePush, MakePiece(White, Pawn), NoPieceType, NoPieceType) // e2e4
	b.DoMove(m)
	require.NotEqual(t, before, b.Current().Key)

	b.UndoMove(m)
	require.Equal(t, before, b.Current().Key)
	require.Equal(t, StartFEN, b.ToFEN())
}

func TestDoNullMoveTogglesSideOnly(t *testing.T) {
	b := NewBoard()
	require.NoError(t, b.SetFromFEN(StartFEN))
	stm := b.Current().SideToMove

	b.DoNullMove()
	require.Equal(t, stm.Opposite(), b.Current().SideToMove)

	b.UndoNullMove()
	require.Equal(t, stm, b.Current().SideToMove)
}

func TestKillersSurviveDoMoveSlotReuse(t *testing.T) {
	b := NewBoard()
	require.NoError(t, b.SetFromFEN(StartFEN))

	killer := NewMove(Square(12), Square(28), DoublePush, MakePiece(White, Pawn), NoPieceType, NoPieceType)
	m1 := NewMove(Square(8), Square(16), Quiet, MakePiece(White, Pawn), NoPieceType, NoPieceType) // a2a3

	b.DoMove(m1)
	b.Current().Killers[0] = killer
	b.UndoMove(m1)

	// Revisiting the same ply slot from a different sibling must not wipe
	// the killer recorded on the previous visit.
	m2 := NewMove(Square(9), Square(17), Quiet, MakePiece(White, Pawn), NoPieceType, NoPieceType) // b2b3
	b.DoMove(m2)
	require.Equal(t, killer, b.Current().Killers[0])
	b.UndoMove(m2)
}

func TestRepetitionDraw(t *testing.T) {
	b := NewBoard()
	require.NoError(t, b.SetFromFEN(StartFEN))

	knightOut := NewMove(Square(1), Square(18), Quiet, MakePiece(White, Knight), NoPieceType, NoPieceType)   // b1c3
	knightBack := NewMove(Square(18), Square(1), Quiet, MakePiece(White, Knight), NoPieceType, NoPieceType)  // c3b1
	knightOutB := NewMove(Square(57), Square(42), Quiet, MakePiece(Black, Knight), NoPieceType, NoPieceType) // b8c6
	knightBackB := NewMove(Square(42), Square(57), Quiet, MakePiece(Black, Knight), NoPieceType, NoPieceType)

	for i := 0; i < 2; i++ {
		b.DoMove(knightOut)
		b.DoMove(knightOutB)
		b.DoMove(knightBack)
		b.DoMove(knightBackB)
	}

	require.True(t, b.IsDraw())
}

func TestCastleLegalityRequiresEmptyAndUnattackedPath(t *testing.T) {
	b := NewBoard()
	require.NoError(t, b.SetFromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1"))
	kingSide := NewMove(Square(4), Square(6), Castle, MakePiece(White, King), NoPieceType, NoPieceType)
	require.True(t, b.IsPseudoLegal(kingSide))

	// Put a black rook attacking f1, the king's transit square.
	require.NoError(t, b.SetFromFEN("r3k2r/8/8/8/8/8/5r2/R3K2R w KQkq - 0 1"))
	require.False(t, b.IsPseudoLegal(kingSide))
}
