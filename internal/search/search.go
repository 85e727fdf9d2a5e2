// Package search implements the parallel alpha-beta engine of spec 4.I:
// iterative deepening with aspiration windows, a node function combining TT
// cutoffs, null-move pruning, razoring, singular extension, PVS with late
// move reductions and futility pruning, quiescence search, and a triangular
// PV table. Grounded on the teacher's search.go (engine/stack/history/pv
// shape, α/β parameter naming) with its thrown-sentinel cancellation
// replaced by an explicit aborted flag per spec 9's design note.
package search

import (
	"sync/atomic"
	"time"

	"github.com/rudzen/feliscatus-sub000/internal/move"
	"github.com/rudzen/feliscatus-sub000/internal/pawnhash"
	"github.com/rudzen/feliscatus-sub000/internal/position"
	"github.com/rudzen/feliscatus-sub000/internal/timecontrol"
	"github.com/rudzen/feliscatus-sub000/internal/tt"
)

// Infinity bounds every score; MateValue-ply is "mate in ply plies".
const (
	Infinity  int32 = 32000
	MateValue int32 = 31000
	MaxPly          = 128
)

const (
	aspirationWindow int32 = 100
	aspirationExpand int32 = 100
	nodeCheckMask          = 1<<14 - 1 // check stop/time roughly every 16k nodes
	quiescenceMaxPly       = 6
	deltaMargin      int32 = 150
)

var razorMargin = [4]int32{0, 125, 125, 400}
var futilityMargin = [4]int32{150, 150, 150, 400}

// Info is one progress snapshot emitted to the UCI layer during a search.
type Info struct {
	Depth          int
	SelDepth       int
	Score          int32
	LowerBound     bool
	UpperBound     bool
	Nodes          uint64
	NPS            uint64
	Time           time.Duration
	Hashfull       int
	PV             []position.Move
	CurrMove       position.Move
	CurrMoveNumber int
}

// Result is the outcome of one Go call: the move to play and, when known,
// the move to ponder on.
type Result struct {
	BestMove position.Move
	Ponder   position.Move
	Score    int32
	Depth    int
}

// Engine is one searching thread's private state: its own board, pawn hash,
// history/counter-move/killer data, and PV table. The transposition table is
// the only resource shared across Engines (spec 5).
type Engine struct {
	board *position.Board
	tt    *tt.TT
	pawns *pawnhash.Table

	pv        pvTable
	history   historyTable
	counters  counterMoveTable

	stop *int32 // shared atomic cancellation flag, owned by the pool

	tc       *timecontrol.TimeControl
	nodes    uint64
	seldepth int
	aborted  bool
	contempt int32

	// Main reports whether this Engine drives UCI info output; worker
	// threads in a Lazy-SMP pool search silently.
	Main bool
	Info func(Info)
}

// NewEngine builds a searching thread bound to board and the shared
// transposition table. pawns is this thread's private pawn-hash cache.
func NewEngine(b *position.Board, table *tt.TT, pawns *pawnhash.Table) *Engine {
	return &Engine{board: b, tt: table, pawns: pawns}
}

// SetStop binds the shared cancellation flag; a non-zero value observed at
// any node aborts the in-flight search (spec 4.K/5, replacing the thrown
// sentinel of spec 9 with an explicit flag every recursion level checks).
func (e *Engine) SetStop(stop *int32) { e.stop = stop }

// SetContempt sets the score, in centipawns, returned for a recognized draw
// instead of zero: c when White is to move and -c when Black is to move.
func (e *Engine) SetContempt(c int32) { e.contempt = c }

// Contempt returns the value last set by SetContempt.
func (e *Engine) Contempt() int32 { return e.contempt }

// Nodes returns the node count searched since the last Go call.
func (e *Engine) Nodes() uint64 { return e.nodes }

func (e *Engine) drawScore() int32 {
	if e.board.Current().SideToMove == position.White {
		return e.contempt
	}
	return -e.contempt
}

func (e *Engine) shouldAbort() bool {
	if e.aborted {
		return true
	}
	if e.stop != nil && atomic.LoadInt32(e.stop) != 0 {
		e.aborted = true
		return true
	}
	if e.tc != nil && !e.tc.IsAnalysing() && e.tc.TimeUp(time.Now()) {
		e.aborted = true
		return true
	}
	return false
}

// scoreToTT converts a score found ply levels below the root into one
// relative to this node, so a stored mate score remains meaningful however
// deep in the tree it's later retrieved from (spec 4.I point 9).
func scoreToTT(score int32, ply int) int32 {
	switch {
	case score >= MateValue-int32(MaxPly):
		return score + int32(ply)
	case score <= -MateValue+int32(MaxPly):
		return score - int32(ply)
	default:
		return score
	}
}

// scoreFromTT reverses scoreToTT for a score read back at ply.
func scoreFromTT(score int32, ply int) int32 {
	switch {
	case score >= MateValue-int32(MaxPly):
		return score - int32(ply)
	case score <= -MateValue+int32(MaxPly):
		return score + int32(ply)
	default:
		return score
	}
}

func isKingMinorOnly(b *position.Board, c position.Color) bool {
	counts := b.Current().MaterialCount[c]
	rooks := (counts >> (4 * uint(position.Rook))) & 0xF
	queens := (counts >> (4 * uint(position.Queen))) & 0xF
	knights := (counts >> (4 * uint(position.Knight))) & 0xF
	bishops := (counts >> (4 * uint(position.Bishop))) & 0xF
	if rooks+queens > 0 {
		return false
	}
	return knights+bishops <= 1
}

// Go runs iterative deepening from the board's current position up to
// depthLimit plies (or MaxPly-1 when depthLimit is 0), honoring tc's budget
// and the shared stop flag, per spec 4.I's contract.
func (e *Engine) Go(tc *timecontrol.TimeControl, depthLimit int) Result {
	e.tc = tc
	e.aborted = false
	e.nodes = 0
	if e.tt != nil {
		e.tt.NewSearch()
	}

	legal := move.Full(e.board, true)
	if len(legal) == 0 {
		return Result{}
	}

	if depthLimit <= 0 || depthLimit > MaxPly-1 {
		depthLimit = MaxPly - 1
	}

	started := time.Now()
	var result Result
	result.BestMove = legal[0]

	alpha, beta := -Infinity, Infinity
	var score int32

	for depth := 1; depth <= depthLimit; depth++ {
		e.seldepth = 0
		score = e.aspirationSearch(depth, score, &alpha, &beta)
		if e.aborted && depth > 1 {
			break
		}

		line := e.pv.line()
		if len(line) > 0 {
			result.BestMove = line[0]
		}
		if len(line) > 1 {
			result.Ponder = line[1]
		}
		result.Score = score
		result.Depth = depth

		if e.Main && e.Info != nil {
			e.Info(Info{
				Depth:    depth,
				SelDepth: e.seldepth,
				Score:    score,
				Nodes:    e.nodes,
				NPS:      nps(e.nodes, time.Since(started)),
				Time:     time.Since(started),
				Hashfull: e.hashfull(),
				PV:       line,
			})
		}

		if e.aborted {
			break
		}
		if score >= MateValue-int32(MaxPly) || score <= -MateValue+int32(MaxPly) {
			pliesToMate := MateValue - abs32(score)
			if int32(depth) >= pliesToMate {
				break
			}
		}
		if !tc.IsAnalysing() && !tc.PlentyTime(time.Now(), tc.PlentyFactor()) {
			break
		}
	}

	return result
}

func (e *Engine) hashfull() int {
	if e.tt == nil {
		return 0
	}
	return e.tt.Hashfull()
}

func nps(nodes uint64, elapsed time.Duration) uint64 {
	if elapsed <= 0 {
		return 0
	}
	return uint64(float64(nodes) / elapsed.Seconds())
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// aspirationSearch runs one iterative-deepening depth with a narrowing
// window, re-searching with a widened window on fail-high/fail-low without
// advancing depth, per spec 4.I.
func (e *Engine) aspirationSearch(depth int, prevScore int32, alpha, beta *int32) int32 {
	a, b := -Infinity, Infinity
	if depth > 1 {
		a = maxInt32(-Infinity, prevScore-aspirationWindow)
		b = minInt32(Infinity, prevScore+aspirationWindow)
	}

	for {
		score := e.search(depth, a, b, 0, true, false)
		if e.aborted {
			return score
		}
		if score <= a {
			a = maxInt32(-Infinity, a-aspirationExpand)
			continue
		}
		if score >= b {
			b = minInt32(Infinity, b+aspirationExpand)
			continue
		}
		*alpha = score - 20
		*beta = score + 20
		return score
	}
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minInt32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
