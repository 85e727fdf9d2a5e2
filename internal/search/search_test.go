package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rudzen/feliscatus-sub000/internal/pawnhash"
	"github.com/rudzen/feliscatus-sub000/internal/position"
	"github.com/rudzen/feliscatus-sub000/internal/timecontrol"
	"github.com/rudzen/feliscatus-sub000/internal/tt"
)

func searchBoard(t *testing.T, fen string) *position.Board {
	t.Helper()
	b := position.NewBoard()
	require.NoError(t, b.SetFromFEN(fen))
	return b
}

func newTestEngine(b *position.Board) *Engine {
	e := NewEngine(b, tt.New(1), pawnhash.New())
	var stop int32
	e.SetStop(&stop)
	return e
}

func TestSearchScoresAnAlreadyDeliveredCheckmate(t *testing.T) {
	// After 1.f3 e5 2.g4 Qh4#, White to move has no legal reply.
	b := searchBoard(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 2 3")
	e := newTestEngine(b)
	score := e.search(1, -Infinity, Infinity, 0, true, false)
	require.Equal(t, -MateValue, score)
}

func TestSearchScoresStalemateAsDraw(t *testing.T) {
	// Classic stalemate: black king a8 has no legal move and isn't in check.
	b := searchBoard(t, "k7/8/1Q6/8/8/8/8/6K1 b - - 0 1")
	e := newTestEngine(b)
	score := e.search(1, -Infinity, Infinity, 0, true, false)
	require.Equal(t, int32(0), score)
}

func TestGoFindsFoolsMateInOnePly(t *testing.T) {
	b := searchBoard(t, "rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq - 0 2")
	e := newTestEngine(b)

	tc := timecontrol.Start(time.Now(), timecontrol.Black, timecontrol.Limits{Infinite: true})
	result := e.Go(tc, 1)

	require.Equal(t, position.Square(59), result.BestMove.From()) // d8
	require.Equal(t, position.Square(31), result.BestMove.To())   // h4
	require.Greater(t, result.Score, MateValue-int32(MaxPly))
}

func TestGoReturnsZeroResultWithNoLegalMoves(t *testing.T) {
	b := searchBoard(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 2 3")
	e := newTestEngine(b)
	tc := timecontrol.Start(time.Now(), timecontrol.White, timecontrol.Limits{Infinite: true})
	result := e.Go(tc, 2)
	require.Equal(t, Result{}, result)
}

func TestGoPrefersWinningAQueenOverAPawn(t *testing.T) {
	// White to move: Rxd8 wins the undefended black queen outright.
	b := searchBoard(t, "3qk3/8/8/8/8/8/8/3RK3 w - - 0 1")
	e := newTestEngine(b)
	tc := timecontrol.Start(time.Now(), timecontrol.White, timecontrol.Limits{Infinite: true})
	result := e.Go(tc, 3)

	require.Equal(t, position.Square(3), result.BestMove.From())  // d1
	require.Equal(t, position.Square(59), result.BestMove.To())   // d8
	require.True(t, result.BestMove.IsCapture())
}

func TestNodesAccumulateAcrossASearch(t *testing.T) {
	b := searchBoard(t, position.StartFEN)
	e := newTestEngine(b)
	tc := timecontrol.Start(time.Now(), timecontrol.White, timecontrol.Limits{Infinite: true})
	e.Go(tc, 3)
	require.Greater(t, e.Nodes(), uint64(0))
}

func TestScoreToTTAndFromTTRoundTripMateScores(t *testing.T) {
	mate := MateValue - 5
	stored := scoreToTT(mate, 3)
	require.Equal(t, mate+3, stored)
	require.Equal(t, mate, scoreFromTT(stored, 3))
}

func TestScoreToTTLeavesNonMateScoresUnchanged(t *testing.T) {
	require.Equal(t, int32(150), scoreToTT(150, 7))
	require.Equal(t, int32(150), scoreFromTT(150, 7))
}

func TestCurrMoveNeverPostedBelowDepthTwenty(t *testing.T) {
	b := searchBoard(t, position.StartFEN)
	e := newTestEngine(b)
	e.Main = true

	var sawCurrMove bool
	e.Info = func(info Info) {
		if info.CurrMoveNumber > 0 {
			sawCurrMove = true
		}
	}

	tc := timecontrol.Start(time.Now(), timecontrol.White, timecontrol.Limits{Infinite: true})
	e.tc = tc
	e.search(5, -Infinity, Infinity, 0, true, false)

	require.False(t, sawCurrMove)
}

func TestSetContemptFlipsSignByColor(t *testing.T) {
	white := searchBoard(t, position.StartFEN)
	e := newTestEngine(white)
	e.SetContempt(30)
	require.Equal(t, int32(30), e.drawScore())

	black := searchBoard(t, "8/8/8/4k3/8/8/4K3/8 b - - 0 1")
	eb := newTestEngine(black)
	eb.SetContempt(30)
	require.Equal(t, int32(-30), eb.drawScore())
}
