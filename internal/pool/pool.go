// Package pool implements the thread pool of spec 4.K: a fixed vector of
// worker threads including one designated main, sharing a transposition
// table and diverging only in UCI I/O, grounded on the teacher's
// atomicFlag/sync.Mutex idle-wait idiom generalized to Lazy-SMP, with
// golang.org/x/sync/errgroup for the parallel node-count reduction spec 4.K
// names.
package pool

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rudzen/feliscatus-sub000/internal/pawnhash"
	"github.com/rudzen/feliscatus-sub000/internal/position"
	"github.com/rudzen/feliscatus-sub000/internal/search"
	"github.com/rudzen/feliscatus-sub000/internal/timecontrol"
	"github.com/rudzen/feliscatus-sub000/internal/tt"
)

// parallelReductionThreshold is spec 4.K's ">8 threads" cutover for a
// parallel, rather than sequential, node-count reduction.
const parallelReductionThreshold = 8

// worker is one searching thread: its own board, pawn hash, and Engine.
// Workers beyond worker 0 ("main") never touch UCI output.
type worker struct {
	id     int
	board  *position.Board
	engine *search.Engine
	nodes  uint64 // atomically updated node count, read by Pool.NodeCount

	mu        sync.Mutex
	cond      *sync.Cond
	searching bool
	exit      bool

	tc     *timecontrol.TimeControl
	depth  int
	result search.Result
}

// Pool is the fixed-size worker vector of spec 4.K. Construction spawns
// every worker parked in its own idle-wait loop; StartThinking wakes them.
type Pool struct {
	tt      *tt.TT
	workers []*worker
	stop    int32 // shared atomic cancellation flag, spec 4.K/5

	activeTC *timecontrol.TimeControl // the in-flight search's time control, for PonderHit
}

// New builds a pool of n workers (n>=1; worker 0 is main) sharing table.
func New(table *tt.TT, n int) *Pool {
	p := &Pool{tt: table}
	p.workers = p.buildWorkers(n)
	return p
}

// Resize discards the pool and rebuilds it with n workers, preserving the
// shared transposition table and stop flag.
func (p *Pool) Resize(n int) {
	p.Destroy()
	atomic.StoreInt32(&p.stop, 0)
	p.workers = p.buildWorkers(n)
}

func (p *Pool) buildWorkers(n int) []*worker {
	if n < 1 {
		n = 1
	}
	workers := make([]*worker, n)
	for i := range workers {
		b := position.NewBoard()
		w := &worker{id: i, board: b}
		w.cond = sync.NewCond(&w.mu)
		w.engine = search.NewEngine(b, p.tt, pawnhash.New())
		w.engine.SetStop(&p.stop)
		w.engine.Main = i == 0
		workers[i] = w
		go w.loop()
	}
	return workers
}

// Destroy sets each worker's exit flag and wakes it, per spec 4.K
// ("destruction sets an exit flag and signals all workers"). A worker
// already inside a synchronous engine.Go call only notices exit once that
// call returns; Destroy does not interrupt an in-flight search.
func (p *Pool) Destroy() {
	for _, w := range p.workers {
		w.mu.Lock()
		w.exit = true
		w.cond.Signal()
		w.mu.Unlock()
	}
}

// SetInfoSink wires the main worker's UCI info callback.
func (p *Pool) SetInfoSink(sink func(search.Info)) {
	p.workers[0].engine.Info = sink
}

// Threads returns the worker count.
func (p *Pool) Threads() int { return len(p.workers) }

// SetContempt propagates a contempt value to every worker's engine, per
// spec's configurable per-color contempt (search.Engine.SetContempt).
func (p *Pool) SetContempt(c int32) {
	for _, w := range p.workers {
		w.engine.SetContempt(c)
	}
}

// SetChess960 toggles shredder-FEN castling interpretation on every worker's
// board.
func (p *Pool) SetChess960(v bool) {
	for _, w := range p.workers {
		w.board.SetChess960(v)
	}
}

// LoadFEN sets every worker's board to fen, then replays moves (UCI
// long-algebraic, already-legal) on each.
func (p *Pool) LoadFEN(fen string, moves []position.Move) error {
	for _, w := range p.workers {
		if err := w.board.SetFromFEN(fen); err != nil {
			return err
		}
		for _, m := range moves {
			w.board.DoMove(m)
		}
	}
	return nil
}

// StartThinking sets each worker's node_count to zero and signals every
// worker, main included, to begin; the main worker does not signal the
// others itself. StartThinking blocks until every worker has finished.
func (p *Pool) StartThinking(tc *timecontrol.TimeControl, depth int) search.Result {
	atomic.StoreInt32(&p.stop, 0)
	p.activeTC = tc
	for _, w := range p.workers {
		atomic.StoreUint64(&w.nodes, 0)
		w.mu.Lock()
		w.tc, w.depth = tc, depth
		w.searching = true
		w.cond.Signal()
		w.mu.Unlock()
	}
	p.WaitForSearchFinished()
	return p.workers[0].result
}

// Stop sets the shared cancellation flag observed by every search loop.
func (p *Pool) Stop() { atomic.StoreInt32(&p.stop, 1) }

// PonderHit converts an in-flight ponder search into a normally
// time-bounded one, per spec 4.J's ponder_hit query.
func (p *Pool) PonderHit() {
	if p.activeTC != nil {
		p.activeTC.PonderHit(time.Now())
	}
}

// WaitForSearchFinished waits for every worker's searching flag to drop,
// per spec 5's pool.wait_for_search_finished.
func (p *Pool) WaitForSearchFinished() {
	for _, w := range p.workers {
		w.mu.Lock()
		for w.searching {
			w.cond.Wait()
		}
		w.mu.Unlock()
	}
}

// NodeCount aggregates per-worker node counts, parallelizing the reduction
// above parallelReductionThreshold workers per spec 4.K.
func (p *Pool) NodeCount() uint64 {
	if len(p.workers) <= parallelReductionThreshold {
		var total uint64
		for _, w := range p.workers {
			total += atomic.LoadUint64(&w.nodes)
		}
		return total
	}

	sums := make([]uint64, len(p.workers))
	var g errgroup.Group
	for i, w := range p.workers {
		i, w := i, w
		g.Go(func() error {
			sums[i] = atomic.LoadUint64(&w.nodes)
			return nil
		})
	}
	_ = g.Wait()
	var total uint64
	for _, s := range sums {
		total += s
	}
	return total
}

// Hashfull reports the shared transposition table's per-mille occupancy.
func (p *Pool) Hashfull() int { return p.tt.Hashfull() }

// loop is a worker's idle-wait cycle: park on the condvar until either
// searching is set (run one job) or exit is set (return).
func (w *worker) loop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for {
		for !w.searching && !w.exit {
			w.cond.Wait()
		}
		if w.exit {
			return
		}
		tc, depth := w.tc, w.depth
		w.mu.Unlock()

		result := w.engine.Go(tc, depth)
		atomic.StoreUint64(&w.nodes, w.engine.Nodes())

		w.mu.Lock()
		w.result = result
		w.searching = false
		w.cond.Broadcast()
	}
}
