// Package move implements the staged, ordered move generator of spec 4.D:
// hash move, then captures/promotions, then quiets, each stage sorted
// best-first by the spec's scoring formula. The packed Move type itself
// lives in internal/position alongside Board, since both are core data
// types; this package only adds the generation/ordering algorithm on top.
package move

import (
	"sort"

	"github.com/rudzen/feliscatus-sub000/internal/bitboard"
	"github.com/rudzen/feliscatus-sub000/internal/position"
	"github.com/rudzen/feliscatus-sub000/internal/see"
)

// Stage identifies where the staged generator currently is.
type Stage int

const (
	StageTT Stage = iota
	StageCapturesAndPromotions
	StageQuiet
	StageEnd
)

// OrderingContext carries everything the scoring formula needs that isn't
// derivable from the board itself. Search owns killers/history/counter-move;
// passing them in keeps this package from depending on internal/search.
type OrderingContext struct {
	TTMove      position.Move
	Killers     [position.KillerSlots]position.Move
	CounterMove position.Move
	History     func(piece position.Piece, to position.Square) int32
}

type scoredMove struct {
	m     position.Move
	score int32
}

// Generator is a staged, ordered pseudo-legal move iterator over one board
// position. Not safe for concurrent use; one per searching thread.
type Generator struct {
	board     *position.Board
	ctx       OrderingContext
	stage     Stage
	moves     []scoredMove
	idx       int
	legalOnly bool
	skipTT    bool
}

// NewGenerator starts a staged generator over board's current position.
// When legalOnly is set, every yielded move has already passed Board.IsLegal.
func NewGenerator(b *position.Board, ctx OrderingContext, legalOnly bool) *Generator {
	return &Generator{board: b, ctx: ctx, legalOnly: legalOnly}
}

// Next returns the next move in staged best-first order, or ok=false once
// every stage is exhausted.
func (g *Generator) Next() (position.Move, bool) {
	for {
		switch g.stage {
		case StageTT:
			g.stage = StageCapturesAndPromotions
			m := g.ctx.TTMove
			if m != position.NullMove && !m.Has(position.Castle) && !m.Has(position.EpCapture) && g.board.IsPseudoLegal(m) {
				if !g.legalOnly || g.board.IsLegal(m) {
					g.skipTT = true
					return m, true
				}
			}
			continue

		case StageCapturesAndPromotions:
			if g.moves == nil {
				g.moves = g.generateCapturesAndPromotions()
				g.score()
				g.sortDesc()
				g.idx = 0
			}
			if mv, ok := g.pull(); ok {
				return mv, true
			}
			g.stage = StageQuiet
			g.moves = nil
			continue

		case StageQuiet:
			if g.moves == nil {
				g.moves = g.generateQuiets()
				g.score()
				g.sortDesc()
				g.idx = 0
			}
			if mv, ok := g.pull(); ok {
				return mv, true
			}
			g.stage = StageEnd
			g.moves = nil
			continue

		default:
			return position.NullMove, false
		}
	}
}

func (g *Generator) pull() (position.Move, bool) {
	for g.idx < len(g.moves) {
		mv := g.moves[g.idx]
		g.idx++
		if g.skipTT && mv.m == g.ctx.TTMove {
			continue
		}
		if g.legalOnly && !g.board.IsLegal(mv.m) {
			continue
		}
		return mv.m, true
	}
	return position.NullMove, false
}

func (g *Generator) score() {
	for i := range g.moves {
		g.moves[i].score = Score(g.board, g.ctx, g.moves[i].m)
	}
}

func (g *Generator) sortDesc() {
	sort.SliceStable(g.moves, func(i, j int) bool { return g.moves[i].score > g.moves[j].score })
}

// Score implements spec 4.D's capture/promotion/quiet scoring formula.
func Score(b *position.Board, ctx OrderingContext, m position.Move) int32 {
	if m == ctx.TTMove {
		return 890010
	}
	if m.Has(position.Promotion) && m.Promoted() == position.Queen {
		return 890000
	}
	if m.IsCapture() {
		capturedType := m.Captured()
		if m.Has(position.EpCapture) {
			capturedType = position.Pawn
		}
		capturedValue := position.PieceValue[capturedType]
		pieceValue := position.PieceValue[m.Piece().Type()]
		var bonus int32
		switch {
		case pieceValue <= capturedValue:
			bonus = 300000
		case see.Move(b, m) >= 0:
			bonus = 160000
		default:
			bonus = -100000
		}
		return capturedValue*20 - pieceValue + bonus
	}
	if m.Has(position.Promotion) {
		return 50000 + position.PieceValue[m.Promoted()]
	}
	for i, k := range ctx.Killers {
		if k != position.NullMove && m == k {
			return 124900 + int32(20-i)
		}
	}
	if ctx.CounterMove != position.NullMove && m == ctx.CounterMove {
		return 60000
	}
	if ctx.History != nil {
		return ctx.History(m.Piece(), m.To())
	}
	return 0
}

var promotionPieces = [4]position.PieceType{position.Queen, position.Rook, position.Bishop, position.Knight}

func (g *Generator) generateCapturesAndPromotions() []scoredMove {
	b := g.board
	cur := b.Current()
	us := cur.SideToMove
	them := us.Opposite()
	occ := b.Occupancy()
	theirs := b.ColorBB(them)

	var out []scoredMove

	for p := b.PieceBB(us, position.Pawn); p != 0; {
		from := bitboard.PopLSB(&p)
		pc := b.PieceAt(from)

		for a := bitboard.PawnAttacks[us][from] & theirs; a != 0; {
			to := bitboard.PopLSB(&a)
			capturedType := b.PieceAt(to).Type()
			if isPromotionRank(to, us) {
				for _, pt := range promotionPieces {
					out = append(out, scoredMove{m: position.NewMove(from, to, position.Capture|position.Promotion, pc, capturedType, pt)})
				}
			} else {
				out = append(out, scoredMove{m: position.NewMove(from, to, position.Capture, pc, capturedType, position.NoPieceType)})
			}
		}

		if to := pawnPush(from, us); !occ.Has(to) && isPromotionRank(to, us) {
			for _, pt := range promotionPieces {
				out = append(out, scoredMove{m: position.NewMove(from, to, position.Promotion, pc, position.NoPieceType, pt)})
			}
		}

		if ep := cur.EpSquare; ep != position.NoSquare && bitboard.PawnAttacks[us][from].Has(ep) {
			out = append(out, scoredMove{m: position.NewMove(from, ep, position.EpCapture, pc, position.Pawn, position.NoPieceType)})
		}
	}

	for _, pt := range [5]position.PieceType{position.Knight, position.Bishop, position.Rook, position.Queen, position.King} {
		for p := b.PieceBB(us, pt); p != 0; {
			from := bitboard.PopLSB(&p)
			pc := b.PieceAt(from)
			for a := attacksFromFor(pt, from, occ) & theirs; a != 0; {
				to := bitboard.PopLSB(&a)
				out = append(out, scoredMove{m: position.NewMove(from, to, position.Capture, pc, b.PieceAt(to).Type(), position.NoPieceType)})
			}
		}
	}

	return out
}

func (g *Generator) generateQuiets() []scoredMove {
	b := g.board
	cur := b.Current()
	us := cur.SideToMove
	occ := b.Occupancy()

	var out []scoredMove

	for p := b.PieceBB(us, position.Pawn); p != 0; {
		from := bitboard.PopLSB(&p)
		pc := b.PieceAt(from)
		to := pawnPush(from, us)
		if occ.Has(to) || isPromotionRank(to, us) {
			continue
		}
		out = append(out, scoredMove{m: position.NewMove(from, to, position.Quiet, pc, position.NoPieceType, position.NoPieceType)})
		if isPawnStart(from, us) {
			to2 := pawnPush(to, us)
			if !occ.Has(to2) {
				out = append(out, scoredMove{m: position.NewMove(from, to2, position.Quiet|position.DoublePush, pc, position.NoPieceType, position.NoPieceType)})
			}
		}
	}

	for _, pt := range [5]position.PieceType{position.Knight, position.Bishop, position.Rook, position.Queen, position.King} {
		for p := b.PieceBB(us, pt); p != 0; {
			from := bitboard.PopLSB(&p)
			pc := b.PieceAt(from)
			for a := attacksFromFor(pt, from, occ) &^ occ; a != 0; {
				to := bitboard.PopLSB(&a)
				out = append(out, scoredMove{m: position.NewMove(from, to, position.Quiet, pc, position.NoPieceType, position.NoPieceType)})
			}
		}
	}

	if !cur.InCheck {
		out = append(out, g.generateCastles()...)
	}

	return out
}

// generateCastles builds both castle candidates and keeps the ones
// Board.IsPseudoLegal accepts (which already enforces rights, empty path,
// and unattacked transit squares, Chess960-aware).
func (g *Generator) generateCastles() []scoredMove {
	b := g.board
	us := b.Current().SideToMove
	kingFrom := b.KingSquare(us)
	pc := b.PieceAt(kingFrom)
	homeRank := 0
	if us == position.Black {
		homeRank = 7
	}
	var out []scoredMove
	for _, file := range [2]int{6, 2} {
		to := bitboard.Square(homeRank*8 + file)
		m := position.NewMove(kingFrom, to, position.Castle, pc, position.NoPieceType, position.NoPieceType)
		if b.IsPseudoLegal(m) {
			out = append(out, scoredMove{m: m})
		}
	}
	return out
}

func attacksFromFor(pt position.PieceType, sq position.Square, occ position.Bitboard) position.Bitboard {
	switch pt {
	case position.Knight:
		return bitboard.KnightAttacks[sq]
	case position.Bishop:
		return bitboard.BishopAttacks(sq, occ)
	case position.Rook:
		return bitboard.RookAttacks(sq, occ)
	case position.Queen:
		return bitboard.QueenAttacks(sq, occ)
	case position.King:
		return bitboard.KingAttacks[sq]
	}
	return 0
}

func pawnPush(sq position.Square, c position.Color) position.Square {
	if c == position.White {
		return sq + 8
	}
	return sq - 8
}

func isPromotionRank(sq position.Square, c position.Color) bool {
	if c == position.White {
		return sq.Rank() == 7
	}
	return sq.Rank() == 0
}

func isPawnStart(sq position.Square, c position.Color) bool {
	if c == position.White {
		return sq.Rank() == 1
	}
	return sq.Rank() == 6
}

// NewQuiescenceGenerator starts a generator directly at the
// captures/promotions stage, skipping the TT and quiet stages entirely, for
// quiescence search (spec 4.I: "only captures and promotions are generated").
func NewQuiescenceGenerator(b *position.Board, legalOnly bool) *Generator {
	return &Generator{board: b, stage: StageCapturesAndPromotions, legalOnly: legalOnly}
}

// ParseUCI resolves UCI long-algebraic notation ("e2e4", "e7e8q") against
// b's legal moves, since the wire format alone can't disambiguate castling,
// en-passant, or which piece promotes into without the board's own
// generator (spec 6's "position ... moves ..." and uci go/bestmove parsing).
func ParseUCI(b *position.Board, s string) (position.Move, bool) {
	if len(s) < 4 {
		return position.NullMove, false
	}
	from, ok := parseSquare(s[0:2])
	if !ok {
		return position.NullMove, false
	}
	to, ok := parseSquare(s[2:4])
	if !ok {
		return position.NullMove, false
	}
	var promoted position.PieceType
	if len(s) >= 5 {
		switch s[4] {
		case 'n':
			promoted = position.Knight
		case 'b':
			promoted = position.Bishop
		case 'r':
			promoted = position.Rook
		case 'q':
			promoted = position.Queen
		default:
			return position.NullMove, false
		}
	}

	for _, m := range Full(b, true) {
		if m.From() != from || m.To() != to {
			continue
		}
		if m.IsPromotion() && m.Promoted() != promoted {
			continue
		}
		if !m.IsPromotion() && promoted != position.NoPieceType {
			continue
		}
		return m, true
	}
	return position.NullMove, false
}

func parseSquare(s string) (position.Square, bool) {
	if len(s) != 2 {
		return position.NoSquare, false
	}
	file := s[0]
	rank := s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return position.NoSquare, false
	}
	return position.Square(int(rank-'1')*8 + int(file-'a')), true
}

// Full generates every pseudo-legal move in one pass, unstaged and
// unscored, for perft and root move enumeration (spec 4.D).
func Full(b *position.Board, legalOnly bool) []position.Move {
	g := &Generator{board: b, legalOnly: legalOnly}
	caps := g.generateCapturesAndPromotions()
	quiets := g.generateQuiets()
	out := make([]position.Move, 0, len(caps)+len(quiets))
	for _, mv := range caps {
		if !legalOnly || b.IsLegal(mv.m) {
			out = append(out, mv.m)
		}
	}
	for _, mv := range quiets {
		if !legalOnly || b.IsLegal(mv.m) {
			out = append(out, mv.m)
		}
	}
	return out
}
