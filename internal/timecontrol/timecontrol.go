// Package timecontrol implements the per-move time budget of spec 4.J,
// grounded on the teacher's TimeControl/thinkingTime/updateDeadlines shape
// (a two-deadline design: a soft "keep iterating" budget and a hard stop),
// with the teacher's own policy constants replaced by the spec's literal
// formulas.
package timecontrol

import "time"

// Limits mirrors the UCI go command's optional fields.
type Limits struct {
	WTime, BTime time.Duration
	WInc, BInc   time.Duration
	MovesToGo    int
	MoveTime     time.Duration
	Depth        int
	Infinite     bool
	Ponder       bool

	// MoveOverhead is a fixed safety margin deducted from the computed
	// budget, reserved for GUI/network/OS scheduling lag around the
	// actual engine-to-engine move transfer.
	MoveOverhead time.Duration
}

// Side identifies which clock a Limits record's wtime/btime apply to.
type Side int

const (
	White Side = iota
	Black
)

// TimeControl tracks one search's time budget and deadlines.
type TimeControl struct {
	started      time.Time
	budget       time.Duration
	lastInfo     time.Time
	lastCurr     time.Time
	infinite     bool
	ponder       bool
	plentyFactor float64
}

// Start computes the budget for one search from the limits and the side to
// move, per spec 4.J's policy, and records the start instant.
func Start(now time.Time, side Side, l Limits) *TimeControl {
	tc := &TimeControl{started: now, infinite: l.Infinite, ponder: l.Ponder}
	tc.lastInfo = now
	tc.lastCurr = now

	if l.MoveTime > 0 {
		tc.budget = time.Duration(float64(l.MoveTime)*0.95) - l.MoveOverhead
		if tc.budget < 0 {
			tc.budget = 0
		}
		tc.plentyFactor = 1
		return tc
	}

	remaining, inc := l.WTime, l.WInc
	if side == Black {
		remaining, inc = l.BTime, l.BInc
	}

	m := l.MovesToGo
	if m < 1 {
		m = 1
	}
	if m > 30 {
		m = 30
	}

	var budget time.Duration
	if inc == 0 && remaining < time.Second {
		budget = remaining / time.Duration(2*m)
		tc.plentyFactor = 1
	} else {
		budget = 2 * (remaining/time.Duration(m+1) + inc)
		tc.plentyFactor = 2.5
	}

	cap := remaining - 72*time.Millisecond
	if budget > cap {
		budget = cap
	}
	budget -= l.MoveOverhead
	if budget < 0 {
		budget = 0
	}
	tc.budget = budget
	return tc
}

// Elapsed returns time spent searching so far.
func (tc *TimeControl) Elapsed(now time.Time) time.Duration { return now.Sub(tc.started) }

// TimeUp reports whether the budget has been exceeded. Infinite/ponder
// searches never time out on their own; only an explicit stop ends them.
func (tc *TimeControl) TimeUp(now time.Time) bool {
	if tc.infinite || tc.ponder {
		return false
	}
	return tc.Elapsed(now) >= tc.budget
}

// PlentyTime reports whether there's enough budget left to comfortably
// start another iteration: elapsed*n > budget means time is NOT plenty.
func (tc *TimeControl) PlentyTime(now time.Time, n float64) bool {
	return float64(tc.Elapsed(now))*n <= float64(tc.budget)
}

// PlentyFactor returns the n used in the policy that computed this budget
// (1 for the low-time/fixed-movetime branch, 2.5 otherwise), so callers
// don't need to re-derive which branch Start took.
func (tc *TimeControl) PlentyFactor() float64 { return tc.plentyFactor }

// ShouldPostCurrMove reports whether 5s have elapsed since the last
// currmove info line, and if so resets the timer.
func (tc *TimeControl) ShouldPostCurrMove(now time.Time) bool {
	if now.Sub(tc.lastCurr) >= 5*time.Second {
		tc.lastCurr = now
		return true
	}
	return false
}

// ShouldPostInfo reports whether 1s has elapsed since the last periodic
// info line, and if so resets the timer.
func (tc *TimeControl) ShouldPostInfo(now time.Time) bool {
	if now.Sub(tc.lastInfo) >= time.Second {
		tc.lastInfo = now
		return true
	}
	return false
}

// IsAnalysing reports whether the search is unbounded (infinite or ponder).
func (tc *TimeControl) IsAnalysing() bool { return tc.infinite || tc.ponder }

// PonderHit extends the budget by the elapsed time already spent pondering,
// converting the ponder search into a normally time-bounded one.
func (tc *TimeControl) PonderHit(now time.Time) {
	tc.ponder = false
	tc.budget += tc.Elapsed(now)
}
