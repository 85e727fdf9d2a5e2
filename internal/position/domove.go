package position

import (
	"github.com/rudzen/feliscatus-sub000/internal/bitboard"
	"github.com/rudzen/feliscatus-sub000/internal/zobrist"
)

// DoMove applies move m, pushing a new Position onto the stack, per spec
// 4.C. Callers must only pass moves produced by a legal generator or
// validated by IsLegal; DoMove itself trusts the packed fields.
func (b *Board) DoMove(m Move) {
	prev := b.Current()
	prevIdx := b.ply
	b.ply++
	next := &b.stack[b.ply]
	// Killers are scoped to the ply, not to the node: they record refutation
	// moves for whatever position search last visited at this depth, and
	// must survive across sibling branches reached after backtracking, so
	// they're carried forward across this slot's reuse rather than zeroed.
	carriedKillers := next.Killers
	*next = Position{
		SideToMove:     prev.SideToMove.Opposite(),
		Castling:       prev.Castling,
		EpSquare:       NoSquare,
		HalfMoveClock:  prev.HalfMoveClock + 1,
		Key:            prev.Key,
		PawnKey:        prev.PawnKey,
		LastMove:       m,
		NullMoveStreak: 0,
		Previous:       prevIdx,
		MaterialCount:  prev.MaterialCount,
		MaterialScore:  prev.MaterialScore,
		Killers:        carriedKillers,
	}

	us := prev.SideToMove
	them := us.Opposite()
	pc := m.Piece()
	from, to := m.From(), m.To()

	// next.Key was seeded from prev.Key, which carries prev's en-passant
	// term. Replace it with the "no ep" term; a DoublePush further down
	// replaces that with the real file term.
	next.Key ^= zobrist.EpFile[epKeyIndex(prev.EpSquare)] ^ zobrist.EpFile[zobrist.EpNone]

	if m.Has(EpCapture) {
		capSq := epCaptureSquare(to, us)
		capPiece := MakePiece(them, Pawn)
		b.remove(capSq, capPiece)
		next.Key ^= zobrist.PieceSquare[capPiece][capSq]
		next.PawnKey ^= zobrist.PawnPieceSquare[capPiece][capSq]
		removeMaterial(next, them, Pawn)
	} else if m.Has(Capture) {
		capPiece := MakePiece(them, m.Captured())
		b.remove(to, capPiece)
		next.Key ^= zobrist.PieceSquare[capPiece][to]
		if m.Captured() == Pawn {
			next.PawnKey ^= zobrist.PawnPieceSquare[capPiece][to]
		}
		removeMaterial(next, them, m.Captured())
	}

	if m.Has(Castle) {
		idx := castleIndex(us, to)
		rook := MakePiece(us, Rook)
		b.move(b.rookFrom[idx], b.rookTo[idx], rook)
		next.Key ^= zobrist.PieceSquare[rook][b.rookFrom[idx]] ^ zobrist.PieceSquare[rook][b.rookTo[idx]]
		b.remove(from, pc)
		b.put(b.kingTo[idx], pc)
		next.Key ^= zobrist.PieceSquare[pc][from] ^ zobrist.PieceSquare[pc][b.kingTo[idx]]
	} else if m.Has(Promotion) {
		b.remove(from, pc)
		promoted := MakePiece(us, m.Promoted())
		b.put(to, promoted)
		next.Key ^= zobrist.PieceSquare[pc][from] ^ zobrist.PieceSquare[promoted][to]
		removeMaterial(next, us, Pawn)
		addMaterial(next, us, m.Promoted())
	} else {
		b.move(from, to, pc)
		next.Key ^= zobrist.PieceSquare[pc][from] ^ zobrist.PieceSquare[pc][to]
		if pc.Type() == Pawn {
			next.PawnKey ^= zobrist.PawnPieceSquare[pc][from] ^ zobrist.PawnPieceSquare[pc][to]
		}
	}

	next.Castling &= b.castleRightsMask[from] & b.castleRightsMask[to]
	if next.Castling != prev.Castling {
		next.Key ^= zobrist.Castling[prev.Castling] ^ zobrist.Castling[next.Castling]
	}

	if m.Has(DoublePush) {
		next.EpSquare = (from + to) / 2
		next.Key ^= zobrist.EpFile[zobrist.EpNone] ^ zobrist.EpFile[next.EpSquare.File()]
	}

	if m.Has(Capture) || m.Has(EpCapture) || pc.Type() == Pawn {
		next.HalfMoveClock = 0
	}

	next.Key ^= zobrist.Side

	kingSq := b.KingSquare(next.SideToMove)
	next.Checkers = b.computeCheckers(kingSq, next.SideToMove.Opposite())
	next.InCheck = next.Checkers != 0
	next.Pinned = b.PinnedPieces(next.SideToMove, kingSq)
	next.RecognizedDraw = b.isMaterialDraw(next)
}

// UndoMove pops the current Position, restoring the board to the state
// before the last DoMove. m must be the same move that produced the
// current top of stack.
func (b *Board) UndoMove(m Move) {
	cur := b.Current()
	prevIdx := cur.Previous
	mover := b.stack[prevIdx].SideToMove

	pc := m.Piece()
	from, to := m.From(), m.To()

	if m.Has(Castle) {
		idx := castleIndex(mover, to)
		b.remove(b.kingTo[idx], pc)
		b.put(from, pc)
		rook := MakePiece(mover, Rook)
		b.move(b.rookTo[idx], b.rookFrom[idx], rook)
	} else if m.Has(Promotion) {
		promoted := MakePiece(mover, m.Promoted())
		b.remove(to, promoted)
		b.put(from, pc)
	} else {
		b.move(to, from, pc)
	}

	if m.Has(EpCapture) {
		capSq := epCaptureSquare(to, mover)
		b.put(capSq, MakePiece(mover.Opposite(), Pawn))
	} else if m.Has(Capture) {
		b.put(to, MakePiece(mover.Opposite(), m.Captured()))
	}

	b.ply = prevIdx
}

// DoNullMove pushes a Position representing a null move: side to move
// flips, en-passant is cleared, nothing else changes (spec 4.C/4.I, used by
// null-move pruning).
func (b *Board) DoNullMove() {
	prev := b.Current()
	prevIdx := b.ply
	b.ply++
	next := &b.stack[b.ply]
	*next = *prev
	next.SideToMove = prev.SideToMove.Opposite()
	next.LastMove = NullMove
	next.Previous = prevIdx
	next.NullMoveStreak = prev.NullMoveStreak + 1
	next.HalfMoveClock = prev.HalfMoveClock + 1

	next.Key ^= zobrist.Side
	if prev.EpSquare != NoSquare {
		next.Key ^= zobrist.EpFile[prev.EpSquare.File()] ^ zobrist.EpFile[zobrist.EpNone]
	}
	next.EpSquare = NoSquare

	kingSq := b.KingSquare(next.SideToMove)
	next.Checkers = b.computeCheckers(kingSq, next.SideToMove.Opposite())
	next.InCheck = next.Checkers != 0
	next.Pinned = b.PinnedPieces(next.SideToMove, kingSq)
}

// UndoNullMove pops a Position pushed by DoNullMove.
func (b *Board) UndoNullMove() {
	b.ply = b.Current().Previous
}

func epKeyIndex(sq Square) int {
	if sq == NoSquare {
		return zobrist.EpNone
	}
	return sq.File()
}

func epCaptureSquare(to Square, mover Color) Square {
	if mover == White {
		return to - 8
	}
	return to + 8
}

func castleIndex(c Color, kingTo Square) int {
	kingside := kingTo.File() == 6
	if c == White {
		if kingside {
			return 0
		}
		return 1
	}
	if kingside {
		return 2
	}
	return 3
}

func removeMaterial(p *Position, c Color, pt PieceType) {
	shift := 4 * uint(pt)
	p.MaterialCount[c] -= 1 << shift
	p.MaterialScore[c] -= pieceValue[pt]
}

func addMaterial(p *Position, c Color, pt PieceType) {
	shift := 4 * uint(pt)
	p.MaterialCount[c] += 1 << shift
	p.MaterialScore[c] += pieceValue[pt]
}

// isMaterialDraw reports positions with insufficient mating material (K vs
// K, K+N vs K, K+B vs K), the only unconditional material draws spec 4.C
// asks to be flagged eagerly rather than left to search-side detection.
func (b *Board) isMaterialDraw(p *Position) bool {
	wc, bc := p.MaterialCount[White], p.MaterialCount[Black]
	minor := func(count uint32) (knights, bishops int) {
		return int(count>>(4*uint(Knight))) & 0xF, int(count>>(4*uint(Bishop))) & 0xF
	}
	hasMajorOrPawn := func(count uint32) bool {
		return (count>>(4*uint(Pawn)))&0xF != 0 ||
			(count>>(4*uint(Rook)))&0xF != 0 ||
			(count>>(4*uint(Queen)))&0xF != 0
	}
	if hasMajorOrPawn(wc) || hasMajorOrPawn(bc) {
		return false
	}
	wn, wb := minor(wc)
	bn, bb := minor(bc)
	total := wn + wb + bn + bb
	if total == 0 {
		return true
	}
	if total == 1 {
		return true
	}
	return false
}

// IsPseudoLegal reports whether m could be played from the current position
// ignoring whether it leaves the mover's own king in check: piece presence,
// capture/quiet consistency and castling path emptiness are checked, per
// spec 4.C. Full legality (king safety) is IsLegal.
func (b *Board) IsPseudoLegal(m Move) bool {
	if m.IsNull() {
		return false
	}
	p := b.Current()
	us := p.SideToMove
	from, to := m.From(), m.To()
	pc := b.PieceAt(from)
	if pc == NoPiece || pc.Color() != us || pc != m.Piece() {
		return false
	}
	target := b.PieceAt(to)
	if m.Has(Capture) {
		if target == NoPiece || target.Color() == us || target.Type() != m.Captured() {
			return false
		}
	} else if !m.Has(EpCapture) && !m.Has(Castle) {
		if target != NoPiece {
			return false
		}
	}
	if m.Has(EpCapture) && to != p.EpSquare {
		return false
	}
	if m.Has(Castle) {
		idx := castleIndex(us, to)
		if p.Castling&castleRightForIndex(idx) == 0 {
			return false
		}
		if b.castlePath[idx]&b.Occupancy() != 0 {
			return false
		}
		if b.kingPath[idx]&b.attackedByMask(us.Opposite()) != 0 {
			return false
		}
	}
	return true
}

func castleRightForIndex(idx int) CastleRight {
	switch idx {
	case 0:
		return WOO
	case 1:
		return WOOO
	case 2:
		return BOO
	default:
		return BOOO
	}
}

// attackedByMask returns every square attacked by color by, used for castle
// transit legality. Not cached: callers only need it along a short path.
func (b *Board) attackedByMask(by Color) Bitboard {
	occ := b.Occupancy()
	var attacked Bitboard
	for c := b.ColorBB(by); c != 0; {
		sq := bitboard.PopLSB(&c)
		attacked |= attacksFrom(b.PieceAt(sq).Type(), by, sq, occ)
	}
	return attacked
}

// IsLegal reports whether making m would leave the mover's own king in
// check. Assumes m is already pseudo-legal.
func (b *Board) IsLegal(m Move) bool {
	p := b.Current()
	us := p.SideToMove
	kingSq := b.KingSquare(us)
	from := m.From()

	if m.Piece().Type() == King {
		if m.Has(Castle) {
			// Path and destination safety were already verified in
			// IsPseudoLegal (kingPath vs attackedByMask).
			return true
		}
		return b.kingMoveIsSafe(m)
	}
	if p.InCheck {
		b.DoMove(m)
		legal := !b.IsInCheck(us)
		b.UndoMove(m)
		return legal
	}
	if p.Pinned.Has(from) && !bitboard.Line[kingSq][from].Has(m.To()) {
		return false
	}
	if m.Has(EpCapture) {
		return b.epDoesNotExposeKing(m, kingSq, us)
	}
	return true
}

func (b *Board) kingMoveIsSafe(m Move) bool {
	us := b.Current().SideToMove
	occ := b.Occupancy() &^ m.From().Bb()
	return b.attackersToExcluding(m.To(), occ, us.Opposite()) == 0
}

func (b *Board) attackersToExcluding(sq Square, occ Bitboard, by Color) Bitboard {
	return (bitboard.PawnAttacks[by.Opposite()][sq] & b.PieceBB(by, Pawn)) |
		(bitboard.KnightAttacks[sq] & b.PieceBB(by, Knight)) |
		(bitboard.KingAttacks[sq] & b.PieceBB(by, King)) |
		(bitboard.BishopAttacks(sq, occ) & (b.PieceBB(by, Bishop) | b.PieceBB(by, Queen))) |
		(bitboard.RookAttacks(sq, occ) & (b.PieceBB(by, Rook) | b.PieceBB(by, Queen)))
}

// epDoesNotExposeKing handles the rare case where an en-passant capture
// uncovers a rank-pin on the mover's king (both captured and capturing pawn
// leave the rank simultaneously).
func (b *Board) epDoesNotExposeKing(m Move, kingSq Square, us Color) bool {
	capSq := epCaptureSquare(m.To(), us)
	occ := b.Occupancy() &^ m.From().Bb() &^ capSq.Bb() | m.To().Bb()
	them := us.Opposite()
	return (bitboard.RookAttacks(kingSq, occ) & (b.PieceBB(them, Rook) | b.PieceBB(them, Queen))) == 0 &&
		(bitboard.BishopAttacks(kingSq, occ) & (b.PieceBB(them, Bishop) | b.PieceBB(them, Queen))) == 0
}

// IsRepetition reports whether the current position's key has occurred at
// least once earlier since the last irreversible move (capture, pawn move,
// or loss of castling rights), per spec 4.C.
func (b *Board) IsRepetition() bool {
	cur := b.Current()
	idx := cur.Previous
	for idx >= 0 {
		p := &b.stack[idx]
		if p.Key == cur.Key {
			return true
		}
		if p.HalfMoveClock == 0 {
			break
		}
		idx = p.Previous
	}
	return false
}

// IsDraw reports the fifty-move rule, threefold repetition (two earlier
// occurrences, i.e. this would be the third), and recognized insufficient
// material, per spec 4.C.
func (b *Board) IsDraw() bool {
	cur := b.Current()
	if cur.RecognizedDraw {
		return true
	}
	if cur.HalfMoveClock >= 100 {
		return true
	}
	idx := cur.Previous
	seen := 0
	for idx >= 0 {
		p := &b.stack[idx]
		if p.Key == cur.Key {
			seen++
			if seen >= 2 {
				return true
			}
		}
		if p.HalfMoveClock == 0 {
			break
		}
		idx = p.Previous
	}
	return false
}
