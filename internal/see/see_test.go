package see

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rudzen/feliscatus-sub000/internal/position"
)

func seeBoard(t *testing.T, fen string) *position.Board {
	t.Helper()
	b := position.NewBoard()
	require.NoError(t, b.SetFromFEN(fen))
	return b
}

// The spec's own SEE fixture position: a lone undefended pawn on e5 sits on
// the same open file as the white rook on e1, so Re1xe5 must never be
// reported as a loss (wins a clean pawn with no recapture available).
func TestSEEFixturePositionNonNegative(t *testing.T) {
	b := seeBoard(t, "1k1r4/1pp4p/p7/4p3/8/P5P1/1PP4P/2K1R3 w - - 0 1")

	m := position.NewMove(position.Square(4), position.Square(36), position.Capture,
		position.MakePiece(position.White, position.Rook), position.Pawn, position.NoPieceType) // Re1xe5

	require.GreaterOrEqual(t, Move(b, m), int32(0))
}

// A pawn takes an undefended pawn with nothing else on the board: a clean
// win of a pawn, no recapture to weigh.
func TestSEEUndefendedPawnCaptureWinsAPawn(t *testing.T) {
	b := seeBoard(t, "4k3/8/3p4/4P3/8/8/8/4K3 w - - 0 1")
	// exd6, recaptured by nothing here (d6 undefended): a clean pawn win.
	m := position.NewMove(position.Square(36), position.Square(43), position.Capture,
		position.MakePiece(position.White, position.Pawn), position.Pawn, position.NoPieceType)
	require.Equal(t, int32(100), Move(b, m))
}

// A pawn captures a pawn that's defended by a rook behind it: recapturing
// loses the rook for a pawn, so the initial capture must read as a clean
// pawn win for the side that doesn't have to recapture with the rook.
func TestSEELosingRecaptureSignFlips(t *testing.T) {
	// White pawn on e5 can take the black pawn on d6; d6 is defended only
	// by the black rook on d8 down the d-file, and the white pawn on c5
	// covers d6 too, so Rxd6 would be a losing recapture for black (rook
	// for pawn), and White's capture nets a full pawn.
	b := seeBoard(t, "3r4/8/3p4/2P1P3/8/8/8/4K2k w - - 0 1")
	m := position.NewMove(position.Square(36), position.Square(43), position.Capture,
		position.MakePiece(position.White, position.Pawn), position.Pawn, position.NoPieceType)
	require.Equal(t, int32(100), Move(b, m))
}

func TestSEENullMoveAndQuietScoreZero(t *testing.T) {
	b := seeBoard(t, position.StartFEN)
	m := position.NewMove(position.Square(12), position.Square(28), position.DoublePush,
		position.MakePiece(position.White, position.Pawn), position.NoPieceType, position.NoPieceType)
	require.Equal(t, int32(0), Move(b, m))
	// The root position's LastMove is the null move.
	require.Equal(t, int32(0), LastMove(b))
}
