// Package zobrist holds the random key tables used to incrementally hash a
// position (spec 4.B/4.C). Keys are generated once at process start from a
// fixed seed so the same binary always produces the same keys, matching the
// teacher's own init()-time weight table setup in search.go.
package zobrist

import "math/rand"

const seed = 0x5DEECE66D

// PieceSquare[piece][square] XORs in/out a piece occupying a square. Index 0
// is reserved (no piece) so piece type constants from internal/position can
// index directly without an off-by-one.
var PieceSquare [16][64]uint64

// PawnPieceSquare mirrors PieceSquare but only the entries for the two pawn
// pieces are meaningful; everything else is zero. It feeds the pawn-only key
// referenced by spec 4.B/4.F.
var PawnPieceSquare [16][64]uint64

// Castling[mask] XORs in the castling-rights component for the 16 possible
// combinations of the 4 rights bits.
var Castling [16]uint64

// EpFile[file] XORs in the en-passant file component (file 0..7); EpNone is
// used when there is no en-passant square.
var EpFile [9]uint64

const EpNone = 8

// Side XORs in the side-to-move component (applied whenever it's black to move).
var Side uint64

func init() {
	r := rand.New(rand.NewSource(seed))
	for pc := 0; pc < 16; pc++ {
		for sq := 0; sq < 64; sq++ {
			PieceSquare[pc][sq] = r.Uint64()
		}
	}
	// Pawn piece codes: by convention in internal/position, WhitePawn=1,
	// BlackPawn=9 (color bit in bit 3). Both are copied into the pawn-only
	// table; everything else stays zero.
	for sq := 0; sq < 64; sq++ {
		PawnPieceSquare[1][sq] = PieceSquare[1][sq]
		PawnPieceSquare[9][sq] = PieceSquare[9][sq]
	}
	for i := range Castling {
		Castling[i] = r.Uint64()
	}
	for i := range EpFile {
		EpFile[i] = r.Uint64()
	}
	Side = r.Uint64()
}
