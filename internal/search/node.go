package search

import (
	"time"

	"github.com/rudzen/feliscatus-sub000/internal/eval"
	"github.com/rudzen/feliscatus-sub000/internal/move"
	"github.com/rudzen/feliscatus-sub000/internal/position"
	"github.com/rudzen/feliscatus-sub000/internal/see"
	"github.com/rudzen/feliscatus-sub000/internal/tt"
)

// search is the node function of spec 4.I: TT cutoff, null-move pruning,
// razoring, singular-extension probing, a PVS move loop with late-move
// reductions and futility pruning, and the terminal/store steps.
// pvNode reports whether the caller is itself on the principal variation;
// cutNode is the expected node type (true when this node is expected to
// fail high), used only to add an extra LMR reduction.
func (e *Engine) search(depth int, alpha, beta int32, ply int, pvNode bool, cutNode bool) int32 {
	b := e.board
	e.pv.clear(ply)
	if ply > e.seldepth {
		e.seldepth = ply
	}

	if ply > 0 {
		if b.IsDraw() {
			return e.drawScore()
		}
		if ply >= MaxPly-1 {
			return eval.Evaluate(b, e.pawns, alpha, beta)
		}
	}

	e.nodes++
	if e.nodes&nodeCheckMask == 0 && e.shouldAbort() {
		return 0
	}

	if depth <= 0 {
		return e.quiescence(alpha, beta, ply, 0)
	}

	origAlpha := alpha
	key := b.Current().Key

	var ttMove position.Move
	var ttEntry tt.Entry
	var ttHit bool
	if e.tt != nil {
		ttEntry, ttHit = e.tt.Probe(key)
		if ttHit {
			ttMove = position.Move(ttEntry.Move)
			if !pvNode && int(ttEntry.Depth) >= depth {
				score := scoreFromTT(int32(ttEntry.Score), ply)
				flags := tt.Flag(ttEntry.Flags)
				switch {
				case flags&tt.Exact != 0:
					return score
				case flags&tt.LowerBound != 0 && score >= beta:
					return score
				case flags&tt.UpperBound != 0 && score <= alpha:
					return score
				}
			}
		}
	}

	cur := b.Current()
	inCheck := cur.InCheck
	staticEval := eval.Evaluate(b, e.pawns, alpha, beta)

	if !pvNode && !inCheck && cur.NullMoveStreak < 1 && !isKingMinorOnly(b, cur.SideToMove) && staticEval >= beta {
		if depth <= 5 {
			margin := staticEval - 50 - int32(100*(depth/2))
			if margin >= beta {
				return margin
			}
		}
		reduction := 4 + depth/4
		if depth-reduction >= 1 {
			b.DoNullMove()
			score := -e.search(depth-reduction, -beta, -beta+1, ply+1, false, !cutNode)
			b.UndoNullMove()
			if e.aborted {
				return 0
			}
			if score >= beta {
				return score
			}
		}
	}

	if !pvNode && !inCheck && depth <= 3 {
		margin := razorMargin[depth]
		if staticEval+margin < beta {
			qs := e.quiescence(beta-1, beta, ply, 0)
			if e.aborted {
				return 0
			}
			if qs < beta {
				return maxInt32(qs, staticEval+margin)
			}
		}
	}

	singularMove := position.NullMove
	if pvNode && ttHit && tt.Flag(ttEntry.Flags)&tt.Exact != 0 && int(ttEntry.Depth) >= 4 && ttMove != position.NullMove {
		singularBeta := maxInt32(-Infinity, staticEval-75)
		if e.siblingsFailLow(depth-4, singularBeta, ply, ttMove) {
			singularMove = ttMove
		}
	}

	ctx := move.OrderingContext{
		TTMove:      ttMove,
		Killers:     cur.Killers,
		CounterMove: e.counters.get(cur.LastMove),
		History:     e.history.get,
	}
	gen := move.NewGenerator(b, ctx, true)

	var best position.Move
	bestScore := -Infinity
	moveCount := 0

	for {
		m, ok := gen.Next()
		if !ok {
			break
		}
		moveCount++

		if ply == 0 && depth >= 20 && e.Main && e.Info != nil && e.tc != nil && e.tc.ShouldPostCurrMove(time.Now()) {
			e.Info(Info{CurrMove: m, CurrMoveNumber: moveCount})
		}

		isQuiet := !m.IsCapture() && !m.IsPromotion()
		isQueenPromo := m.IsPromotion() && m.Promoted() == position.Queen

		b.DoMove(m)
		inCheckAfter := b.Current().InCheck

		var nextDepth int
		switch {
		case m == singularMove:
			nextDepth = depth
		case moveCount == 1:
			if (inCheckAfter || isPassedPawnPush(e, m)) && see.Move(b, m) >= 0 {
				nextDepth = depth
			} else {
				nextDepth = depth - 1
			}
		case inCheckAfter && see.Move(b, m) >= 0:
			nextDepth = depth
		default:
			nextDepth = depth - 1
			threshold := 3
			if pvNode {
				threshold = 5
			}
			if moveCount >= threshold && !isQueenPromo && !m.IsCapture() && !isKiller(cur.Killers, m) {
				reduction := 2 + depth/8 + (moveCount-6)/10
				if cutNode {
					reduction += 2
				}
				reducedDepth := depth - reduction
				if reducedDepth < 1 {
					reducedDepth = 1
				}
				if reducedDepth <= 3 {
					futility := -staticEval + futilityMargin[reducedDepth]
					if futility < alpha {
						b.UndoMove(m)
						moveCount--
						continue
					}
				}
				nextDepth = reducedDepth
			}
		}

		reduced := nextDepth < depth-1

		var score int32
		if moveCount == 1 {
			score = -e.search(nextDepth, -beta, -alpha, ply+1, pvNode, false)
		} else {
			score = -e.search(nextDepth, -alpha-1, -alpha, ply+1, false, true)
			if score > alpha && reduced {
				score = -e.search(depth-1, -alpha-1, -alpha, ply+1, false, true)
			}
			if score > alpha && score < beta {
				score = -e.search(depth-1, -beta, -alpha, ply+1, pvNode, false)
			}
		}
		b.UndoMove(m)

		if e.aborted {
			return 0
		}

		if score > bestScore {
			bestScore = score
			best = m
			if score > alpha {
				alpha = score
				e.pv.update(ply, m)
				if alpha >= beta {
					if isQuiet {
						e.recordCutoff(cur, m, depth)
					}
					break
				}
			}
		}
	}

	if moveCount == 0 {
		if inCheck {
			return -MateValue + int32(ply)
		}
		return e.drawScore()
	}
	if cur.HalfMoveClock >= 100 {
		return e.drawScore()
	}

	if e.tt != nil && !e.aborted {
		flag := tt.UpperBound
		switch {
		case bestScore >= beta:
			flag = tt.LowerBound
		case bestScore > origAlpha:
			flag = tt.Exact
		}
		e.tt.Store(key, depth, int16(clampScore(scoreToTT(bestScore, ply))), flag, best, int16(clampScore(staticEval)))
	}

	return bestScore
}

// siblingsFailLow runs a reduced-depth search of every legal move except
// excluded below singularBeta, reporting whether all of them fail low (spec
// 4.I's singular probe: when true, the excluded TT move is "singular" and
// its own full-depth search below isn't reduced).
func (e *Engine) siblingsFailLow(depth int, singularBeta int32, ply int, excluded position.Move) bool {
	if depth < 1 {
		depth = 1
	}
	b := e.board
	cur := b.Current()
	ctx := move.OrderingContext{
		Killers:     cur.Killers,
		CounterMove: e.counters.get(cur.LastMove),
		History:     e.history.get,
	}
	gen := move.NewGenerator(b, ctx, true)
	for {
		m, ok := gen.Next()
		if !ok {
			break
		}
		if m == excluded {
			continue
		}
		b.DoMove(m)
		score := -e.search(depth, -singularBeta-1, -singularBeta, ply+1, false, true)
		b.UndoMove(m)
		if e.aborted {
			return false
		}
		if score >= singularBeta {
			return false
		}
	}
	return true
}

// recordCutoff applies spec 4.I's quiet-history update on a beta cutoff by a
// non-capture, non-promotion move.
func (e *Engine) recordCutoff(cur *position.Position, best position.Move, depth int) {
	e.counters.set(cur.LastMove, best)
	insertKiller(&cur.Killers, best)
	e.history.bonus(best.Piece(), best.To(), depth)
}

// isPassedPawnPush reports whether the move just made (board is already
// past DoMove) advanced a pawn to a square with no enemy pawn able to stop
// its promotion, per the pawn-hash table's own passed-pawn computation.
func isPassedPawnPush(e *Engine, m position.Move) bool {
	if m.Piece().Type() != position.Pawn {
		return false
	}
	pe := e.pawns.Get(e.board)
	return pe.Passed[m.Piece().Color()].Has(m.To())
}

func clampScore(v int32) int32 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return v
}

// quiescence is the capture/promotion-only search of spec 4.I: stand-pat,
// delta pruning, and a quiescence-ply cap distinct from the main ply count.
func (e *Engine) quiescence(alpha, beta int32, ply int, qply int) int32 {
	b := e.board
	e.pv.clear(ply)
	if ply > e.seldepth {
		e.seldepth = ply
	}

	e.nodes++
	if e.nodes&nodeCheckMask == 0 && e.shouldAbort() {
		return 0
	}

	if b.IsDraw() {
		return e.drawScore()
	}
	if ply >= MaxPly-1 {
		return eval.Evaluate(b, e.pawns, alpha, beta)
	}

	cur := b.Current()
	standPat := eval.Evaluate(b, e.pawns, alpha, beta)
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}
	if qply >= quiescenceMaxPly {
		return alpha
	}

	gen := move.NewQuiescenceGenerator(b, true)
	for {
		m, ok := gen.Next()
		if !ok {
			break
		}

		if !cur.InCheck {
			capturedType := m.Captured()
			if m.Has(position.EpCapture) {
				capturedType = position.Pawn
			}
			capturedValue := position.PieceValue[capturedType]
			if m.IsPromotion() {
				capturedValue += position.PieceValue[m.Promoted()] - position.PieceValue[position.Pawn]
			}
			if standPat+capturedValue+deltaMargin < alpha {
				continue
			}
			if m.IsCapture() && see.Move(b, m) < 0 {
				continue
			}
		}

		b.DoMove(m)
		score := -e.quiescence(-beta, -alpha, ply+1, qply+1)
		b.UndoMove(m)

		if e.aborted {
			return 0
		}

		if score >= beta {
			return score
		}
		if score > alpha {
			alpha = score
			e.pv.update(ply, m)
		}
	}

	return alpha
}
