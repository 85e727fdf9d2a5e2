package position

import "github.com/rudzen/feliscatus-sub000/internal/bitboard"

// KillerSlots is the fixed length of the per-ply killer-move ring (spec 3/4.I).
const KillerSlots = 4

// Position is one ply's worth of state, per spec 3. Positions form a
// singly-linked stack; Previous is an index into Board.stack rather than a
// pointer, per spec 9 ("implement as an index into that stack... never as
// shared ownership").
type Position struct {
	SideToMove     Color
	Castling       CastleRight
	EpSquare       Square
	HalfMoveClock  int
	Key            uint64
	PawnKey        uint64
	LastMove       Move
	NullMoveStreak int
	Checkers       Bitboard
	InCheck        bool
	Pinned         Bitboard
	Killers        [KillerSlots]Move
	Previous       int // index into Board.stack, -1 for the root
	RecognizedDraw bool

	// Material mirrors spec 3's Material record: per-color piece counts
	// packed 4 bits per piece type, plus a running material score.
	MaterialCount [2]uint32
	MaterialScore [2]int32
}

// Board is the full board representation of spec 4.C.
type Board struct {
	occupancy [2]Bitboard    // per-color occupancy
	byType    [7]Bitboard    // index by PieceType, 0 unused
	pieces    [64]Piece      // piece array
	chess960  bool

	// castlePath[right] is the set of squares that must be empty for that
	// right to be exercised (union of king-path and rook-path, excluding the
	// king/rook home squares themselves).
	castlePath [4]Bitboard
	// kingPath[right] is the set of squares the king must not be attacked on
	// while castling (its transit squares, inclusive of start and end).
	kingPath [4]Bitboard
	// rookFrom/kingTo/rookTo record the Chess960-aware castling geometry.
	rookFrom [4]Square
	kingTo   [4]Square
	rookTo   [4]Square

	// castleRightsMask[sq], when a move touches sq (as from or to), is
	// AND-NOT'ed into the castling rights, per spec 4.C.
	castleRightsMask [64]CastleRight

	stack    []Position
	ply      int // index of the current Position in stack
	fullMove int // fullmove number of the root Position, as read from FEN
}

// NewBoard returns an empty board with its Position stack preallocated.
func NewBoard() *Board {
	b := &Board{stack: make([]Position, MaxPly), fullMove: 1}
	b.stack[0] = Position{EpSquare: NoSquare, Previous: -1}
	return b
}

// Current returns the current Position.
func (b *Board) Current() *Position { return &b.stack[b.ply] }

// Ply returns the current ply index (0 at the root of this board's history).
func (b *Board) Ply() int { return b.ply }

// Chess960 reports whether castling is interpreted Shredder-FEN style.
func (b *Board) Chess960() bool { return b.chess960 }

// SetChess960 toggles Chess960 castling interpretation (UCI_Chess960 option).
func (b *Board) SetChess960(v bool) { b.chess960 = v }

// Occupancy returns the combined occupancy of both colors.
func (b *Board) Occupancy() Bitboard { return b.occupancy[White] | b.occupancy[Black] }

// ColorBB returns the occupancy bitboard of one color.
func (b *Board) ColorBB(c Color) Bitboard { return b.occupancy[c] }

// PieceTypeBB returns the occupancy bitboard of one piece type (both colors).
func (b *Board) PieceTypeBB(pt PieceType) Bitboard { return b.byType[pt] }

// PieceBB returns the occupancy bitboard of one color+piece-type.
func (b *Board) PieceBB(c Color, pt PieceType) Bitboard { return b.byType[pt] & b.occupancy[c] }

// PieceAt returns the piece occupying sq, or NoPiece.
func (b *Board) PieceAt(sq Square) Piece { return b.pieces[sq] }

// KingSquare returns the square of c's king.
func (b *Board) KingSquare(c Color) Square {
	return bitboard.Square(firstSquare(b.PieceBB(c, King)))
}

func firstSquare(bb Bitboard) int {
	sq := bitboard.PopLSB(&bb)
	return int(sq)
}

// put places piece p on sq. sq must be empty.
func (b *Board) put(sq Square, p Piece) {
	b.pieces[sq] = p
	bb := sq.Bb()
	b.occupancy[p.Color()] |= bb
	b.byType[p.Type()] |= bb
}

// remove clears sq, which must hold piece p.
func (b *Board) remove(sq Square, p Piece) {
	b.pieces[sq] = NoPiece
	bb := ^sq.Bb()
	b.occupancy[p.Color()] &= bb
	b.byType[p.Type()] &= bb
}

// move relocates piece p from `from` (must hold p) to `to` (must be empty).
func (b *Board) move(from, to Square, p Piece) {
	b.remove(from, p)
	b.put(to, p)
}
