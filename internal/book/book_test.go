package book

import (
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rudzen/feliscatus-sub000/internal/position"
)

// writeBook serialises raw Polyglot records (key, move, weight, learn) into
// a temp .bin file and returns its path.
func writeBook(t *testing.T, entries []entry) string {
	t.Helper()
	buf := make([]byte, len(entries)*entrySize)
	for i, e := range entries {
		rec := buf[i*entrySize : (i+1)*entrySize]
		binary.BigEndian.PutUint64(rec[0:8], e.key)
		binary.BigEndian.PutUint16(rec[8:10], e.move)
		binary.BigEndian.PutUint16(rec[10:12], e.weight)
		binary.BigEndian.PutUint32(rec[12:16], e.learn)
	}
	path := filepath.Join(t.TempDir(), "book.bin")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func startBoard(t *testing.T) *position.Board {
	t.Helper()
	b := position.NewBoard()
	require.NoError(t, b.SetFromFEN(position.StartFEN))
	return b
}

// e2e4Raw is the Polyglot move encoding for e2e4: to-file 4, to-rank 3,
// from-file 4, from-rank 1, no promotion.
const e2e4Raw = uint16(4) | uint16(3)<<3 | uint16(4)<<6 | uint16(1)<<9

func TestOpenRejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))
	_, err := Open(path)
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestOpenReportsPathAndSize(t *testing.T) {
	b := startBoard(t)
	key := polyglotKey(b)
	path := writeBook(t, []entry{{key: key, move: e2e4Raw, weight: 10}})

	bk, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, path, bk.Path())
	require.Equal(t, 1, bk.Size())
}

func TestProbeFindsMatchingPositionAndDecodesMove(t *testing.T) {
	b := startBoard(t)
	key := polyglotKey(b)
	path := writeBook(t, []entry{{key: key, move: e2e4Raw, weight: 10}})

	bk, err := Open(path)
	require.NoError(t, err)

	m, ok := bk.Probe(b, rand.New(rand.NewSource(1)))
	require.True(t, ok)
	require.Equal(t, position.Square(12), m.From())
	require.Equal(t, position.Square(28), m.To())
}

func TestProbeMissesUnknownPosition(t *testing.T) {
	b := startBoard(t)
	path := writeBook(t, []entry{{key: polyglotKey(b) + 1, move: e2e4Raw, weight: 10}})

	bk, err := Open(path)
	require.NoError(t, err)

	_, ok := bk.Probe(b, rand.New(rand.NewSource(1)))
	require.False(t, ok)
}

func TestProbeSelectsAmongTiedKeysOnly(t *testing.T) {
	b := startBoard(t)
	key := polyglotKey(b)

	// a2a3: from-file 0, from-rank 1, to-file 0, to-rank 2, no promotion.
	a2a3Raw := uint16(0) | uint16(2)<<3 | uint16(0)<<6 | uint16(1)<<9
	path := writeBook(t, []entry{
		{key: key, move: e2e4Raw, weight: 0},
		{key: key, move: a2a3Raw, weight: 0},
		{key: key + 1, move: e2e4Raw, weight: 1000}, // different position, must never be picked
	})

	bk, err := Open(path)
	require.NoError(t, err)

	seen := map[position.Square]bool{}
	for seed := int64(0); seed < 20; seed++ {
		m, ok := bk.Probe(b, rand.New(rand.NewSource(seed)))
		require.True(t, ok)
		seen[m.To()] = true
	}
	require.Subset(t, []position.Square{position.Square(28), position.Square(16)}, keys(seen))
}

func keys(m map[position.Square]bool) []position.Square {
	out := make([]position.Square, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestDecodeMoveRemapsKingCapturesRookCastling(t *testing.T) {
	b := position.NewBoard()
	require.NoError(t, b.SetFromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1"))

	// e1h1 (from-file 4, from-rank 0, to-file 7, to-rank 0): Polyglot's
	// king-captures-own-rook kingside castle encoding.
	raw := uint16(7) | uint16(0)<<3 | uint16(4)<<6 | uint16(0)<<9
	m, ok := decodeMove(b, raw)
	require.True(t, ok)
	require.True(t, m.IsCastle())
	require.Equal(t, position.Square(6), m.To())
}

func TestPolyPieceKindOrdersBlackBeforeWhite(t *testing.T) {
	blackPawn := position.MakePiece(position.Black, position.Pawn)
	whitePawn := position.MakePiece(position.White, position.Pawn)
	require.Equal(t, polyPieceKind(blackPawn)+1, polyPieceKind(whitePawn))
}
