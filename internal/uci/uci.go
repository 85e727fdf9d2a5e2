// Package uci implements the UCI protocol dispatcher of spec 4 ("out of
// scope" boundary, specified at its interface): reads stdin commands,
// drives internal/pool, internal/config, and internal/book, and writes
// `info`/`bestmove` lines to stdout per spec 6's exact formats. Grounded on
// the teacher's UCI.Execute two-phase dispatch (interface.go: commands that
// don't need the engine ready, then commands that do) and its go_/setoption
// field-by-field argument parsing, with github.com/op/go-logging for the
// diagnostics the teacher sent through its own log.SetPrefix("info string ").
package uci

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/op/go-logging"

	"github.com/rudzen/feliscatus-sub000/internal/book"
	"github.com/rudzen/feliscatus-sub000/internal/config"
	"github.com/rudzen/feliscatus-sub000/internal/cpuload"
	"github.com/rudzen/feliscatus-sub000/internal/move"
	"github.com/rudzen/feliscatus-sub000/internal/pool"
	"github.com/rudzen/feliscatus-sub000/internal/position"
	"github.com/rudzen/feliscatus-sub000/internal/search"
	"github.com/rudzen/feliscatus-sub000/internal/timecontrol"
	"github.com/rudzen/feliscatus-sub000/internal/tt"
)

var log = logging.MustGetLogger("uci")

const (
	engineName   = "Feliscatus"
	engineAuthor = "Rudy Alex Kohn"
)

// Engine wires the pool, option table, and book together behind the UCI
// command surface.
type Engine struct {
	out io.Writer

	table *tt.TT
	pool  *pool.Pool
	opts  *config.Table
	bk    *book.Book
	rng   *rand.Rand
	cpu   *cpuload.Sampler

	root     *position.Board
	lastMove position.Move // best move of the most recently finished search
}

// New builds an Engine with the default option table and a single-threaded
// pool over a freshly allocated transposition table.
func New(out io.Writer) *Engine {
	opts := config.NewTable()
	table := tt.New(opts.Int("Hash"))
	e := &Engine{
		out:   out,
		table: table,
		pool:  pool.New(table, opts.Int("Threads")),
		opts:  opts,
		root:  position.NewBoard(),
		rng:   rand.New(rand.NewSource(1)),
		cpu:   cpuload.New(),
	}
	e.root.SetFromFEN(position.StartFEN)
	e.pool.SetInfoSink(e.emitInfo)
	opts.Discover(".")
	if err := opts.LoadDefaults("feliscatus.toml"); err != nil {
		log.Warningf("config: %v", err)
	}
	return e
}

// Run reads commands from in until `quit`/`exit` or EOF, per spec 6.
func (e *Engine) Run(in io.Reader) {
	scan := bufio.NewScanner(in)
	scan.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scan.Scan() {
		if e.execute(strings.TrimSpace(scan.Text())) {
			return
		}
	}
}

// execute dispatches one command line; it returns true when the engine
// should terminate.
func (e *Engine) execute(line string) bool {
	if line == "" {
		return false
	}
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "quit", "exit":
		e.pool.Destroy()
		return true
	case "uci":
		e.cmdUCI()
	case "isready":
		fmt.Fprintln(e.out, "readyok")
	case "ucinewgame":
		e.cmdNewGame()
	case "setoption":
		e.cmdSetOption(line)
	case "position":
		e.cmdPosition(args)
	case "go":
		e.cmdGo(args)
	case "stop":
		e.pool.Stop()
	case "ponderhit":
		e.pool.PonderHit()
	case "perft":
		e.cmdPerft(args)
	default:
		log.Warningf("unhandled command: %s", cmd)
	}
	return false
}

func (e *Engine) cmdUCI() {
	fmt.Fprintf(e.out, "id name %s\n", engineName)
	fmt.Fprintf(e.out, "id author %s\n", engineAuthor)
	e.opts.Each(func(o config.Option) {
		fmt.Fprintln(e.out, o.Line())
	})
	fmt.Fprintln(e.out, "uciok")
}

func (e *Engine) cmdNewGame() {
	if e.opts.Bool("Clear hash on new game") {
		e.table.Clear()
	}
	e.root.SetFromFEN(position.StartFEN)
}

func (e *Engine) cmdSetOption(line string) {
	name, value, ok := parseSetOption(line)
	if !ok {
		log.Warning("invalid setoption arguments")
		return
	}

	switch strings.ToLower(name) {
	case "clear hash":
		e.table.Clear()
		return
	}

	if err := e.opts.Set(name, value); err != nil {
		log.Warningf("setoption: %v", err)
		return
	}

	switch strings.ToLower(name) {
	case "threads":
		e.pool.Resize(e.opts.Int("Threads"))
	case "hash":
		e.table.Resize(e.opts.Int("Hash"))
	case "uci_chess960":
		e.pool.SetChess960(e.opts.Bool("UCI_Chess960"))
		e.root.SetChess960(e.opts.Bool("UCI_Chess960"))
	case "books":
		e.loadBook()
	case "use book":
		if e.opts.Bool("Use book") {
			e.loadBook()
		}
	case "contempt":
		e.pool.SetContempt(int32(e.opts.Int("Contempt")))
	}
}

func (e *Engine) loadBook() {
	path := e.opts.String("Books")
	if path == "" {
		return
	}
	bk, err := book.Open(path)
	if err != nil {
		log.Warningf("book: %v", err)
		return
	}
	e.bk = bk
	fmt.Fprintf(e.out, "info string Parsed book. path=%s,size=%d\n", path, bk.Size())
}

// parseSetOption splits `setoption name X value Y` (value optional, for
// button options), per the teacher's reOption regex.
func parseSetOption(line string) (name, value string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 || strings.ToLower(fields[1]) != "name" {
		return "", "", false
	}
	i := 2
	var nameParts []string
	for i < len(fields) && strings.ToLower(fields[i]) != "value" {
		nameParts = append(nameParts, fields[i])
		i++
	}
	name = strings.Join(nameParts, " ")
	if name == "" {
		return "", "", false
	}
	if i < len(fields) && strings.ToLower(fields[i]) == "value" {
		value = strings.Join(fields[i+1:], " ")
	}
	return name, value, true
}

func (e *Engine) cmdPosition(args []string) {
	if len(args) == 0 {
		return
	}

	var fen string
	i := 0
	switch args[0] {
	case "startpos":
		fen = position.StartFEN
		i = 1
	case "fen":
		if len(args) < 7 {
			log.Warning("position fen: too few fields")
			return
		}
		fen = strings.Join(args[1:7], " ")
		i = 7
	default:
		log.Warningf("position: unknown subcommand %s", args[0])
		return
	}

	b := position.NewBoard()
	b.SetChess960(e.opts.Bool("UCI_Chess960"))
	if err := b.SetFromFEN(fen); err != nil {
		fmt.Fprintf(e.out, "info string invalid fen: %v\n", err)
		return
	}

	var moves []position.Move
	if i < len(args) && args[i] == "moves" {
		for _, s := range args[i+1:] {
			m, ok := move.ParseUCI(b, s)
			if !ok {
				log.Warningf("position: illegal move %s", s)
				break
			}
			b.DoMove(m)
			moves = append(moves, m)
		}
	}

	e.root = b
	if err := e.pool.LoadFEN(fen, moves); err != nil {
		log.Warningf("position: %v", err)
	}
}

func (e *Engine) cmdGo(args []string) {
	if e.opts.Bool("Use book") && e.bk != nil {
		if m, ok := e.bk.Probe(e.root, e.rng); ok {
			fmt.Fprintf(e.out, "bestmove %s\n", m.UCI())
			return
		}
	}

	limits := timecontrol.Limits{
		MovesToGo:    30,
		MoveOverhead: time.Duration(e.opts.Int("Move Overhead")) * time.Millisecond,
	}
	depthLimit := 0
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "ponder":
			limits.Ponder = true
		case "infinite":
			limits.Infinite = true
		case "wtime":
			i++
			limits.WTime = msArg(args, i)
		case "winc":
			i++
			limits.WInc = msArg(args, i)
		case "btime":
			i++
			limits.BTime = msArg(args, i)
		case "binc":
			i++
			limits.BInc = msArg(args, i)
		case "movestogo":
			i++
			limits.MovesToGo = intArg(args, i)
		case "movetime":
			i++
			limits.MoveTime = msArg(args, i)
		case "depth":
			i++
			depthLimit = intArg(args, i)
			limits.Depth = depthLimit
		}
	}

	side := timecontrol.White
	if e.root.Current().SideToMove == position.Black {
		side = timecontrol.Black
	}
	tc := timecontrol.Start(time.Now(), side, limits)

	go func() {
		result := e.pool.StartThinking(tc, depthLimit)
		e.lastMove = result.BestMove
		if result.Ponder != position.NullMove {
			fmt.Fprintf(e.out, "bestmove %s ponder %s\n", result.BestMove.UCI(), result.Ponder.UCI())
		} else {
			fmt.Fprintf(e.out, "bestmove %s\n", result.BestMove.UCI())
		}
	}()
}

func (e *Engine) cmdPerft(args []string) {
	depth := 6
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil {
			depth = d
		}
	}
	runPerft(e.out, e.root, depth)
}

func msArg(args []string, i int) time.Duration {
	return time.Duration(intArg(args, i)) * time.Millisecond
}

func intArg(args []string, i int) int {
	if i < 0 || i >= len(args) {
		return 0
	}
	n, _ := strconv.Atoi(args[i])
	return n
}

// emitInfo renders one search.Info snapshot per spec 6's two `info` line
// shapes (plain progress line vs. scored line with a PV).
func (e *Engine) emitInfo(info search.Info) {
	if info.CurrMoveNumber > 0 {
		fmt.Fprintf(e.out, "info currmove %s currmovenumber %d\n", info.CurrMove.UCI(), info.CurrMoveNumber)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "info depth %d seldepth %d", info.Depth, info.SelDepth)
	if len(info.PV) > 0 {
		fmt.Fprintf(&b, " score cp %d", info.Score)
		switch {
		case info.LowerBound:
			b.WriteString(" lowerbound")
		case info.UpperBound:
			b.WriteString(" upperbound")
		}
	}
	fmt.Fprintf(&b, " hashfull %d nodes %d nps %d time %d", info.Hashfull, info.Nodes, info.NPS, info.Time.Milliseconds())
	if len(info.PV) == 0 && e.opts.Bool("Show CPU usage") {
		fmt.Fprintf(&b, " cpuload %d", e.cpu.Usage())
	}
	if len(info.PV) > 0 {
		b.WriteString(" pv")
		for _, m := range info.PV {
			b.WriteString(" ")
			b.WriteString(m.UCI())
		}
	}
	fmt.Fprintln(e.out, b.String())
}
