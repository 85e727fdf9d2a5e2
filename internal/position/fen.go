package position

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rudzen/feliscatus-sub000/internal/bitboard"
	"github.com/rudzen/feliscatus-sub000/internal/zobrist"
)

// ErrInvalidFen is returned by SetFromFEN when any token is malformed, per
// spec 7's InvalidFen error kind.
var ErrInvalidFen = errors.New("invalid fen")

var pieceSymbols = map[byte]Piece{
	'P': MakePiece(White, Pawn), 'N': MakePiece(White, Knight), 'B': MakePiece(White, Bishop),
	'R': MakePiece(White, Rook), 'Q': MakePiece(White, Queen), 'K': MakePiece(White, King),
	'p': MakePiece(Black, Pawn), 'n': MakePiece(Black, Knight), 'b': MakePiece(Black, Bishop),
	'r': MakePiece(Black, Rook), 'q': MakePiece(Black, Queen), 'k': MakePiece(Black, King),
}

var symbolForPiece = map[Piece]byte{}

func init() {
	for sym, p := range pieceSymbols {
		symbolForPiece[p] = sym
	}
}

// StartFEN is the standard chess starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// SetFromFEN parses s into the board, replacing all prior state, per
// spec 4.C. Standard and Chess960/Shredder castling letters are both
// accepted; callers that know it is a 960 game should call SetChess960
// beforehand so castling moves are interpreted correctly.
func (b *Board) SetFromFEN(s string) error {
	fields := strings.Fields(s)
	if len(fields) < 4 {
		return fmt.Errorf("%w: need at least 4 fields, got %d", ErrInvalidFen, len(fields))
	}

	b.occupancy = [2]Bitboard{}
	b.byType = [7]Bitboard{}
	b.pieces = [64]Piece{}

	rank, file := 7, 0
	for i := 0; i < len(fields[0]); i++ {
		c := fields[0][i]
		switch {
		case c == '/':
			if file != 8 {
				return fmt.Errorf("%w: short rank in piece placement", ErrInvalidFen)
			}
			rank--
			file = 0
		case c >= '1' && c <= '8':
			file += int(c - '0')
		default:
			p, ok := pieceSymbols[c]
			if !ok {
				return fmt.Errorf("%w: unknown piece symbol %q", ErrInvalidFen, c)
			}
			if rank < 0 || file > 7 {
				return fmt.Errorf("%w: piece placement out of range", ErrInvalidFen)
			}
			sq := bitboard.Square(rank*8 + file)
			b.put(sq, p)
			file++
		}
	}
	if rank != 0 || file != 8 {
		return fmt.Errorf("%w: incomplete piece placement", ErrInvalidFen)
	}

	var stm Color
	switch fields[1] {
	case "w":
		stm = White
	case "b":
		stm = Black
	default:
		return fmt.Errorf("%w: bad side to move %q", ErrInvalidFen, fields[1])
	}

	castling, err := b.parseCastling(fields[2])
	if err != nil {
		return err
	}

	ep := NoSquare
	if fields[3] != "-" {
		sq, err := parseSquare(fields[3])
		if err != nil {
			return err
		}
		ep = sq
	}

	halfMove := 0
	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil {
			return fmt.Errorf("%w: bad halfmove clock", ErrInvalidFen)
		}
		halfMove = n
	}

	fullMove := 1
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil {
			return fmt.Errorf("%w: bad fullmove number", ErrInvalidFen)
		}
		fullMove = n
	}

	b.computeCastleMasks(castling)

	b.ply = 0
	b.fullMove = fullMove
	b.stack[0] = Position{
		SideToMove:    stm,
		Castling:      castling,
		EpSquare:      ep,
		HalfMoveClock: halfMove,
		Previous:      -1,
	}
	b.recomputeMaterial(&b.stack[0])
	b.stack[0].Key = b.recomputeKey(&b.stack[0])
	b.stack[0].PawnKey = b.recomputePawnKey()
	b.refreshCheckersAndPins()
	return nil
}

func parseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("%w: bad square %q", ErrInvalidFen, s)
	}
	return bitboard.Square(int(s[1]-'1')*8 + int(s[0]-'a')), nil
}

// parseCastling accepts both standard KQkq letters and Chess960/Shredder
// A-H/a-h file letters.
func (b *Board) parseCastling(s string) (CastleRight, error) {
	var rights CastleRight
	if s == "-" {
		return 0, nil
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == 'K':
			rights |= WOO
		case c == 'Q':
			rights |= WOOO
		case c == 'k':
			rights |= BOO
		case c == 'q':
			rights |= BOOO
		case c >= 'A' && c <= 'H':
			rights |= b.shredderRight(White, c-'A')
		case c >= 'a' && c <= 'h':
			rights |= b.shredderRight(Black, c-'a')
		default:
			return 0, fmt.Errorf("%w: bad castling token %q", ErrInvalidFen, s)
		}
	}
	return rights, nil
}

// shredderRight maps a rook file letter to WOO/WOOO/BOO/BOOO by comparing it
// against the king's file for that color.
func (b *Board) shredderRight(c Color, file byte) CastleRight {
	kingSq := b.KingSquare(c)
	if int(file) > kingSq.File() {
		if c == White {
			return WOO
		}
		return BOO
	}
	if c == White {
		return WOOO
	}
	return BOOO
}

// ToFEN serializes the current position, emitting Shredder-style castling
// letters when the board is in Chess960 mode (spec 4.C).
func (b *Board) ToFEN() string {
	pos := b.Current()
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := bitboard.Square(rank*8 + file)
			p := b.pieces[sq]
			if p == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(symbolForPiece[p])
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if pos.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(b.castlingFEN(pos.Castling))

	sb.WriteByte(' ')
	if pos.EpSquare == NoSquare {
		sb.WriteByte('-')
	} else {
		sb.WriteString(squareName(pos.EpSquare))
	}

	fmt.Fprintf(&sb, " %d %d", pos.HalfMoveClock, b.fullMove+(b.ply+int(b.stack[0].SideToMove))/2)
	return sb.String()
}

func (b *Board) castlingFEN(c CastleRight) string {
	if c == 0 {
		return "-"
	}
	var sb strings.Builder
	if b.chess960 {
		if c&WOO != 0 {
			sb.WriteByte('A' + byte(b.rookFrom[0].File()))
		}
		if c&WOOO != 0 {
			sb.WriteByte('A' + byte(b.rookFrom[1].File()))
		}
		if c&BOO != 0 {
			sb.WriteByte('a' + byte(b.rookFrom[2].File()))
		}
		if c&BOOO != 0 {
			sb.WriteByte('a' + byte(b.rookFrom[3].File()))
		}
		return sb.String()
	}
	if c&WOO != 0 {
		sb.WriteByte('K')
	}
	if c&WOOO != 0 {
		sb.WriteByte('Q')
	}
	if c&BOO != 0 {
		sb.WriteByte('k')
	}
	if c&BOOO != 0 {
		sb.WriteByte('q')
	}
	return sb.String()
}

func (b *Board) recomputeMaterial(p *Position) {
	for c := White; c <= Black; c++ {
		var count uint32
		var score int32
		for pt := Pawn; pt <= King; pt++ {
			n := b.PieceBB(c, pt).Count()
			count |= uint32(n) << (4 * uint(pt))
			score += int32(n) * pieceValue[pt]
		}
		p.MaterialCount[c] = count
		p.MaterialScore[c] = score
	}
}

// PieceValue is the canonical material value table indexed by PieceType,
// shared by move ordering (4.D) and SEE (4.H) so both agree with the
// material counters updated in DoMove.
var PieceValue = [7]int32{0, 100, 320, 330, 500, 900, 0}

var pieceValue = PieceValue

func (b *Board) recomputeKey(p *Position) uint64 {
	var key uint64
	for sq := bitboard.Square(0); sq < 64; sq++ {
		if pc := b.pieces[sq]; pc != NoPiece {
			key ^= zobrist.PieceSquare[pc][sq]
		}
	}
	key ^= zobrist.Castling[p.Castling]
	if p.EpSquare != NoSquare {
		key ^= zobrist.EpFile[p.EpSquare.File()]
	} else {
		key ^= zobrist.EpFile[zobrist.EpNone]
	}
	if p.SideToMove == Black {
		key ^= zobrist.Side
	}
	return key
}

func (b *Board) recomputePawnKey() uint64 {
	var key uint64
	for sq := bitboard.Square(0); sq < 64; sq++ {
		if pc := b.pieces[sq]; pc != NoPiece && pc.Type() == Pawn {
			key ^= zobrist.PawnPieceSquare[pc][sq]
		}
	}
	return key
}

func (b *Board) refreshCheckersAndPins() {
	p := b.Current()
	kingSq := b.KingSquare(p.SideToMove)
	them := p.SideToMove.Opposite()
	p.Checkers = b.computeCheckers(kingSq, them)
	p.InCheck = p.Checkers != 0
	p.Pinned = b.PinnedPieces(p.SideToMove, kingSq)
}

// computeCastleMasks derives the castling path/king-path bitboards and the
// per-square rights-erasure mask from the current piece placement and the
// rights parsed from FEN. Must run after pieces are placed and before the
// Position stack is initialized.
func (b *Board) computeCastleMasks(rights CastleRight) {
	b.castleRightsMask = [64]CastleRight{}
	for sq := range b.castleRightsMask {
		b.castleRightsMask[sq] = AllCastleRights
	}

	setup := func(idx int, c Color, right CastleRight, kingsideFile int) {
		if rights&right == 0 {
			return
		}
		kingSq := b.KingSquare(c)
		homeRank := 0
		if c == Black {
			homeRank = 7
		}
		var rookSq Square
		if b.chess960 {
			// Shredder FEN stores the rook file directly; reconstruct it by
			// scanning for the first/last rook on the home rank relative to
			// the king, matching the letter that was parsed.
			rookSq = findCastleRook(b, c, kingSq, kingsideFile == 6)
		} else {
			if kingsideFile == 6 {
				rookSq = bitboard.Square(homeRank*8 + 7)
			} else {
				rookSq = bitboard.Square(homeRank * 8)
			}
		}
		kingTo := bitboard.Square(homeRank*8 + kingsideFile)
		rookTo := bitboard.Square(homeRank*8 + kingsideFile + rookToOffset(kingsideFile))

		path := bitboard.Between[kingSq][kingTo] | bitboard.Between[rookSq][rookTo] | kingTo.Bb() | rookTo.Bb()
		path &^= kingSq.Bb() | rookSq.Bb()

		kpath := bitboard.Between[kingSq][kingTo] | kingSq.Bb() | kingTo.Bb()

		b.castlePath[idx] = path
		b.kingPath[idx] = kpath
		b.rookFrom[idx] = rookSq
		b.kingTo[idx] = kingTo
		b.rookTo[idx] = rookTo

		if c == White {
			b.castleRightsMask[kingSq] &^= WOO | WOOO
		} else {
			b.castleRightsMask[kingSq] &^= BOO | BOOO
		}
		b.castleRightsMask[rookSq] &^= right
	}

	setup(0, White, WOO, 6)
	setup(1, White, WOOO, 2)
	setup(2, Black, BOO, 6)
	setup(3, Black, BOOO, 2)
}

func rookToOffset(kingsideFile int) int {
	if kingsideFile == 6 {
		return -1
	}
	return 1
}

func findCastleRook(b *Board, c Color, kingSq Square, kingside bool) Square {
	homeRank := kingSq.Rank()
	rooks := b.PieceBB(c, Rook) & bitboard.RankBb(homeRank)
	best := NoSquare
	for r := rooks; r != 0; {
		sq := bitboard.PopLSB(&r)
		if kingside {
			if sq.File() > kingSq.File() && (best == NoSquare || sq.File() > best.File()) {
				best = sq
			}
		} else {
			if sq.File() < kingSq.File() && (best == NoSquare || sq.File() < best.File()) {
				best = sq
			}
		}
	}
	return best
}
