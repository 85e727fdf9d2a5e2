// Package cpuload implements the "Show CPU usage" sampler behind the
// `info ... cpuload C` field of spec 6, grounded on the original engine's
// cpu.cpp: a POSIX times(2) sample of process user/sys CPU ticks taken on
// construction and on every Usage call, converted to a per-mille load
// figure normalized by the machine's processor count. No pack example
// reaches for a gopsutil-style library for this; the original itself talks
// straight to times(2) rather than through one, so this package mirrors
// that with the standard library's syscall.Times.
package cpuload

import (
	"math"
	"runtime"
	"syscall"
)

// Sampler tracks successive CPU-time samples to report process CPU load.
// Not safe for concurrent use; callers poll it from a single goroutine.
type Sampler struct {
	numProcessors int64

	lastCPU  uintptr
	lastSys  int64
	lastUser int64
}

// New takes the sampler's initial reference sample, per cpu.cpp's
// constructor.
func New() *Sampler {
	s := &Sampler{numProcessors: int64(runtime.NumCPU())}
	if s.numProcessors < 1 {
		s.numProcessors = 1
	}
	var tms syscall.Tms
	ticks, err := syscall.Times(&tms)
	if err == nil {
		s.lastCPU = ticks
		s.lastSys = tms.Stime
		s.lastUser = tms.Utime
	}
	return s
}

// Usage returns the process's CPU load since the previous call, as a
// per-mille figure (0..1000 nominally, though a busy multi-threaded engine
// can exceed 1000 on several cores), per cpu.cpp's usage(): clamped to zero
// both on a fresh/invalid sample and on a detected clock overflow.
func (s *Sampler) Usage() int {
	var tms syscall.Tms
	ticks, err := syscall.Times(&tms)
	if err != nil {
		return 0
	}

	wallTicks := ticks - s.lastCPU
	overflow := wallTicks <= 0 || tms.Stime < s.lastSys || tms.Utime < s.lastUser
	if overflow {
		s.lastCPU, s.lastSys, s.lastUser = ticks, tms.Stime, tms.Utime
		return 0
	}

	deltaSys := tms.Stime - s.lastSys
	deltaUser := tms.Utime - s.lastUser
	percent := float64(deltaSys+deltaUser) / float64(wallTicks) / float64(s.numProcessors)

	s.lastCPU, s.lastSys, s.lastUser = ticks, tms.Stime, tms.Utime

	if percent <= 0 {
		return 0
	}
	return int(math.Round(percent * 1000))
}
