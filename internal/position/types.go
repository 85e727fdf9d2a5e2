// Package position implements the board representation and make/unmake
// machinery of spec 4.B/4.C: Position records, the Board they sit on,
// incremental Zobrist hashing, FEN I/O, attack/pin queries, and
// repetition/draw detection.
package position

import (
	"github.com/rudzen/feliscatus-sub000/internal/bitboard"
)

// Square is re-exported from bitboard so callers don't need to import both
// packages for the common case.
type Square = bitboard.Square

// Bitboard is re-exported from bitboard for the same reason.
type Bitboard = bitboard.Bitboard

const NoSquare = bitboard.NoSquare

// Color identifies a side to move, per spec 3: White=0, Black=1.
type Color uint8

const (
	White Color = 0
	Black Color = 1
)

// Opposite returns the other color.
func (c Color) Opposite() Color { return c ^ 1 }

// PieceType identifies a piece kind without color.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Piece packs a PieceType (low 3 bits) with a Color (bit 3), per spec 3.
type Piece uint8

const NoPiece Piece = 0

// MakePiece builds a Piece from a color and piece type.
func MakePiece(c Color, pt PieceType) Piece {
	return Piece(pt) | Piece(c)<<3
}

// Type returns the piece's PieceType.
func (p Piece) Type() PieceType { return PieceType(p & 0x7) }

// Color returns the piece's Color. Only meaningful when p != NoPiece.
func (p Piece) Color() Color { return Color(p >> 3 & 1) }

// CastleRight enumerates the 4 castling rights as a bitmask.
type CastleRight uint8

const (
	WOO CastleRight = 1 << iota
	WOOO
	BOO
	BOOO

	AllCastleRights = WOO | WOOO | BOO | BOOO
)

// MoveType is a bitmask over the kinds a Move can simultaneously be, per
// spec 3's Move data model ("type:6 (bitmask over {Quiet, DoublePush,
// Castle, EpCapture, Promotion, Capture})").
type MoveType uint8

const (
	Quiet MoveType = 1 << iota
	DoublePush
	Castle
	EpCapture
	Promotion
	Capture
)

// Move is the 32-bit packed move of spec 3: to:6, from:6, type:6,
// promoted:4, captured:4, piece:4.
type Move uint32

const (
	moveToShift       = 0
	moveFromShift     = 6
	moveTypeShift     = 12
	movePromotedShift = 18
	moveCapturedShift = 22
	movePieceShift    = 26
)

// NullMove is the all-zero Move value, per spec 3.
const NullMove Move = 0

// NewMove packs a move. promoted/captured are NoPieceType when not applicable.
func NewMove(from, to Square, mt MoveType, piece Piece, captured, promoted PieceType) Move {
	return Move(uint32(to)<<moveToShift |
		uint32(from)<<moveFromShift |
		uint32(mt)<<moveTypeShift |
		uint32(promoted)<<movePromotedShift |
		uint32(captured)<<moveCapturedShift |
		uint32(piece)<<movePieceShift)
}

func (m Move) To() Square          { return Square((m >> moveToShift) & 0x3F) }
func (m Move) From() Square        { return Square((m >> moveFromShift) & 0x3F) }
func (m Move) Type() MoveType      { return MoveType((m >> moveTypeShift) & 0x3F) }
func (m Move) Promoted() PieceType { return PieceType((m >> movePromotedShift) & 0xF) }
func (m Move) Captured() PieceType { return PieceType((m >> moveCapturedShift) & 0xF) }
func (m Move) Piece() Piece        { return Piece((m >> movePieceShift) & 0xF) }

func (m Move) Has(t MoveType) bool { return m.Type()&t != 0 }
func (m Move) IsCapture() bool     { return m.Has(Capture) || m.Has(EpCapture) }
func (m Move) IsPromotion() bool   { return m.Has(Promotion) }
func (m Move) IsCastle() bool      { return m.Has(Castle) }
func (m Move) IsNull() bool        { return m == NullMove }

// UCI returns the wire notation for m: <from><to>[promo], "0000" for null.
func (m Move) UCI() string {
	if m.IsNull() {
		return "0000"
	}
	s := squareName(m.From()) + squareName(m.To())
	if m.IsPromotion() {
		s += string("??nbrq"[m.Promoted()])
	}
	return s
}

func squareName(s Square) string {
	return string(rune('a'+s.File())) + string(rune('1'+s.Rank()))
}

// MaxPly is the fixed upper bound on the Position stack depth (spec 3/9):
// depth beyond this is treated as a draw-by-rule, never a panic.
const MaxPly = 4096
