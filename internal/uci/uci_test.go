package uci

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rudzen/feliscatus-sub000/internal/position"
	"github.com/rudzen/feliscatus-sub000/internal/search"
)

// syncBuf guards a bytes.Buffer so the cmdGo goroutine's bestmove write and
// a test's read of the buffer never race.
type syncBuf struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuf) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuf) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func newTestEngine(t *testing.T) (*Engine, *syncBuf) {
	t.Helper()
	out := &syncBuf{}
	e := New(out)
	t.Cleanup(func() { e.pool.Destroy() })
	return e, out
}

func TestCmdUCIEmitsIdAndOptionsAndUciok(t *testing.T) {
	e, out := newTestEngine(t)
	e.execute("uci")

	s := out.String()
	require.Contains(t, s, "id name Feliscatus")
	require.Contains(t, s, "id author Rudy Alex Kohn")
	require.Contains(t, s, "option name Threads type spin")
	require.True(t, strings.HasSuffix(strings.TrimRight(s, "\n"), "uciok"))
}

func TestCmdIsReadyRespondsReadyOk(t *testing.T) {
	e, out := newTestEngine(t)
	e.execute("isready")
	require.Equal(t, "readyok\n", out.String())
}

func TestCmdPositionStartposWithMovesUpdatesRoot(t *testing.T) {
	e, _ := newTestEngine(t)
	e.execute("position startpos moves e2e4 e7e5")

	require.Equal(t, position.White, e.root.Current().SideToMove)
	require.NotEqual(t, position.StartFEN, e.root.ToFEN())
}

func TestCmdPositionFenSetsExactFEN(t *testing.T) {
	e, _ := newTestEngine(t)
	fen := "8/8/8/4k3/8/8/4K3/8 w - - 0 1"
	e.execute("position fen " + fen)
	require.Equal(t, fen, e.root.ToFEN())
}

func TestCmdSetOptionThreadsResizesPool(t *testing.T) {
	e, _ := newTestEngine(t)
	e.execute("setoption name Threads value 4")
	require.Equal(t, 4, e.pool.Threads())
	require.Equal(t, 4, e.opts.Int("Threads"))
}

func TestCmdSetOptionContemptUpdatesOption(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NotPanics(t, func() { e.execute("setoption name Contempt value 40") })
	require.Equal(t, 40, e.opts.Int("Contempt"))
}

func TestCmdSetOptionUnknownNameDoesNotPanicOrChangeState(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NotPanics(t, func() { e.execute("setoption name Nonexistent value 1") })
	require.Equal(t, "", e.opts.String("Nonexistent"))
}

func TestCmdSetOptionClearHashIsSpecialCased(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NotPanics(t, func() { e.execute("setoption name Clear Hash") })
}

func TestCmdPerftDepthOneReportsTwentyNodes(t *testing.T) {
	e, out := newTestEngine(t)
	e.execute("position startpos")
	e.execute("perft 1")
	require.Contains(t, out.String(), "Nodes searched: 20")
}

func TestCmdGoWithMoveTimeEmitsBestMove(t *testing.T) {
	e, out := newTestEngine(t)
	e.execute("position startpos")
	e.execute("go movetime 20")

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "bestmove")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEmitInfoOmitsCPULoadByDefault(t *testing.T) {
	e, out := newTestEngine(t)
	e.emitInfo(search.Info{Depth: 1, SelDepth: 1})
	require.NotContains(t, out.String(), "cpuload")
}

func TestEmitInfoIncludesCPULoadWhenEnabled(t *testing.T) {
	e, out := newTestEngine(t)
	require.NoError(t, e.opts.Set("Show CPU usage", "true"))
	e.emitInfo(search.Info{Depth: 1, SelDepth: 1})
	require.Contains(t, out.String(), "cpuload")
}

func TestQuitDestroysPoolAndSignalsTermination(t *testing.T) {
	out := &syncBuf{}
	e := New(out)
	require.True(t, e.execute("quit"))
}

func TestEmptyLineIsANoOp(t *testing.T) {
	e, out := newTestEngine(t)
	require.False(t, e.execute(""))
	require.Equal(t, "", out.String())
}
