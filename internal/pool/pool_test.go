package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rudzen/feliscatus-sub000/internal/position"
	"github.com/rudzen/feliscatus-sub000/internal/timecontrol"
	"github.com/rudzen/feliscatus-sub000/internal/tt"
)

func TestNewBuildsRequestedWorkerCount(t *testing.T) {
	p := New(tt.New(1), 4)
	defer p.Destroy()
	require.Equal(t, 4, p.Threads())
}

func TestNewClampsBelowOneWorker(t *testing.T) {
	p := New(tt.New(1), 0)
	defer p.Destroy()
	require.Equal(t, 1, p.Threads())
}

func TestResizeChangesWorkerCount(t *testing.T) {
	p := New(tt.New(1), 2)
	defer p.Destroy()
	p.Resize(6)
	require.Equal(t, 6, p.Threads())
}

func TestLoadFENAppliesMovesToEveryWorker(t *testing.T) {
	p := New(tt.New(1), 2)
	defer p.Destroy()

	e2e4 := position.NewMove(position.Square(12), position.Square(28), position.DoublePush,
		position.MakePiece(position.White, position.Pawn), position.NoPieceType, position.NoPieceType)
	require.NoError(t, p.LoadFEN(position.StartFEN, []position.Move{e2e4}))

	for _, w := range p.workers {
		require.Equal(t, position.Black, w.board.Current().SideToMove)
	}
}

func TestStartThinkingReturnsMainWorkerResult(t *testing.T) {
	p := New(tt.New(1), 2)
	defer p.Destroy()

	require.NoError(t, p.LoadFEN("6k1/8/8/8/8/8/7Q/6K1 w - - 0 1", nil))

	now := time.Now()
	tc := timecontrol.Start(now, timecontrol.White, timecontrol.Limits{MoveTime: 50 * time.Millisecond})

	result := p.StartThinking(tc, 0)
	require.NotEqual(t, position.NullMove, result.BestMove)
	require.Equal(t, result, p.workers[0].result)
}

func TestNodeCountAggregatesAcrossWorkers(t *testing.T) {
	p := New(tt.New(1), 2)
	defer p.Destroy()
	require.NoError(t, p.LoadFEN(position.StartFEN, nil))

	now := time.Now()
	tc := timecontrol.Start(now, timecontrol.White, timecontrol.Limits{MoveTime: 50 * time.Millisecond})
	p.StartThinking(tc, 0)

	require.Greater(t, p.NodeCount(), uint64(0))
}

func TestHashfullReflectsSharedTable(t *testing.T) {
	table := tt.New(1)
	p := New(table, 1)
	defer p.Destroy()
	require.NoError(t, p.LoadFEN(position.StartFEN, nil))

	now := time.Now()
	tc := timecontrol.Start(now, timecontrol.White, timecontrol.Limits{MoveTime: 50 * time.Millisecond})
	p.StartThinking(tc, 0)

	require.Equal(t, table.Hashfull(), p.Hashfull())
}

func TestSetContemptReachesEveryWorker(t *testing.T) {
	p := New(tt.New(1), 3)
	defer p.Destroy()

	p.SetContempt(42)
	for _, w := range p.workers {
		require.Equal(t, int32(42), w.engine.Contempt())
	}
}

func TestDestroyThenResizeRebuildsCleanly(t *testing.T) {
	p := New(tt.New(1), 2)
	p.Destroy()
	p.Resize(3)
	defer p.Destroy()
	require.Equal(t, 3, p.Threads())

	require.NoError(t, p.LoadFEN(position.StartFEN, nil))
	now := time.Now()
	tc := timecontrol.Start(now, timecontrol.White, timecontrol.Limits{MoveTime: 20 * time.Millisecond})
	result := p.StartThinking(tc, 0)
	require.NotEqual(t, position.NullMove, result.BestMove)
}
