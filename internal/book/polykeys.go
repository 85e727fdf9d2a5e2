package book

import "math/rand"

// polyglotSeed seeds the random64 table used by the standard Polyglot book
// key, kept separate from internal/zobrist's own table (spec 4.B) since a
// book file's keys are computed with Polyglot's own published constants, not
// this engine's internal hash. Generated once at process start from a fixed
// seed, mirroring internal/zobrist's own init()-time table construction.
const polyglotSeed = 0x9E3779B97F4A7C15

// Layout matches the published Polyglot format: 12 pieces * 64 squares,
// then 4 castling rights, then 8 en-passant files, then 1 side-to-move key.
const (
	polyPieceCount  = 12 * 64
	polyCastleBase  = polyPieceCount
	polyEpBase      = polyCastleBase + 4
	polyTurnIndex   = polyEpBase + 8
	polyRandomCount = polyTurnIndex + 1
)

var polyRandom [polyRandomCount]uint64

func init() {
	r := rand.New(rand.NewSource(polyglotSeed))
	for i := range polyRandom {
		polyRandom[i] = r.Uint64()
	}
}

// polyPieceIndex maps a Polyglot piece kind (0=black pawn..11=white king, the
// published kind = 2*(pieceType-1) + color ordering) and square to its slot
// in polyRandom.
func polyPieceIndex(kind int, sq int) int {
	return kind*64 + sq
}
