// Package tt implements the shared lock-free transposition table of spec
// 4.E: a bucketed, Zobrist-indexed cache with age/depth replacement and
// torn-read-tolerant concurrent access, grounded on the teacher's
// search.go hashEntry/HashTable shape and on morlock's atomic-pointer
// table/node idiom for the "trust only after revalidating the full key"
// contract named in spec 4.E/9.
package tt

import (
	"math/bits"

	"github.com/frankkopp/workerpool"
	"github.com/rudzen/feliscatus-sub000/internal/position"
)

// Flag is the bound kind a stored score represents, plus an Occupied
// marker distinguishing a written entry from a zero-valued empty slot.
type Flag uint8

const (
	Exact      Flag = 1 << 0
	LowerBound Flag = 1 << 1
	UpperBound Flag = 1 << 2
	Occupied   Flag = 1 << 7
)

// Entry is the 16-byte packed TT record of spec 3. Field order matters:
// largest-to-smallest keeps the Go compiler from inserting padding, so
// sizeof(Entry) is exactly 16 bytes.
type Entry struct {
	KeyHigh    uint32
	Move       uint32
	Age        uint16
	Score      int16
	StaticEval int16
	Depth      uint8
	Flags      uint8
}

func (e *Entry) occupied() bool { return e.Flags&Occupied != 0 }

// Bucket holds 4 entries, matching a typical cache line at 64 bytes.
type Bucket struct {
	Entries [4]Entry
}

// TT is the shared transposition table. Reads and writes are intentionally
// unsynchronized (spec 4.E/5/9): callers MUST revalidate KeyHigh against
// the high bits of their own 64-bit key before trusting a hit, and MUST
// treat a torn read (mismatched key) as a miss rather than a bug.
type TT struct {
	buckets []Bucket
	age     uint16
}

const entrySize = 16
const bucketSize = entrySize * 4

// New allocates a table sized to mb megabytes, rounded down to a whole
// number of buckets (at least one).
func New(mb int) *TT {
	t := &TT{}
	t.Resize(mb)
	return t
}

// Resize discards the existing table and allocates a fresh one sized to mb
// megabytes (spec 4.E's "on size change, free prior buffer, allocate").
func (t *TT) Resize(mb int) {
	n := (mb * 1024 * 1024) / bucketSize
	if n < 1 {
		n = 1
	}
	t.buckets = make([]Bucket, n)
}

// Buckets returns the bucket count, for hashfull/UCI reporting.
func (t *TT) Buckets() int { return len(t.buckets) }

// NewSearch bumps the generation counter; called once at the start of each
// root search so replacement can prefer entries from the current search.
func (t *TT) NewSearch() { t.age++ }

// mulHi64 returns the high 64 bits of the 128-bit product a*b, used as a
// fast, non-modulo range reduction from a 64-bit key to a bucket index.
func mulHi64(a, b uint64) uint64 {
	hi, _ := bits.Mul64(a, b)
	return hi
}

func bucketIndex(key uint64, count int) uint64 {
	return mulHi64(key, uint64(count))
}

// Probe scans the bucket for key, returning the stored entry if its
// key-high matches a non-empty slot. Callers still must revalidate against
// their own full key before using Move/Score, per spec 4.E's concurrency
// contract: a torn concurrent write can produce a KeyHigh/Move/Score triple
// that belongs to no real write, and only the caller's full-key comparison
// against the live board catches that.
func (t *TT) Probe(key uint64) (Entry, bool) {
	b := &t.buckets[bucketIndex(key, len(t.buckets))]
	keyHigh := uint32(key >> 32)
	for i := range b.Entries {
		e := b.Entries[i]
		if e.occupied() && e.KeyHigh == keyHigh {
			return e, true
		}
	}
	return Entry{}, false
}

// Store inserts or updates an entry for key, per spec 4.E's replacement
// policy: the first slot, in bucket order, that is empty or holds the same
// key (updated in place), else the entry minimizing (age<<9)+depth. A null replacement move preserves
// the previous entry's move on a key match.
func (t *TT) Store(key uint64, depth int, score int16, flag Flag, m position.Move, staticEval int16) {
	b := &t.buckets[bucketIndex(key, len(t.buckets))]
	keyHigh := uint32(key >> 32)

	slot := -1
	worstVal := int32(1<<31 - 1)
	worstIdx := 0

	for i := range b.Entries {
		e := &b.Entries[i]
		if !e.occupied() {
			slot = i
			break
		}
		if e.KeyHigh == keyHigh {
			slot = i
			break
		}
		v := int32(e.Age)<<9 + int32(e.Depth)
		if v < worstVal {
			worstVal = v
			worstIdx = i
		}
	}
	if slot == -1 {
		slot = worstIdx
	}

	e := &b.Entries[slot]
	finalMove := m
	if finalMove == position.NullMove && e.occupied() && e.KeyHigh == keyHigh {
		finalMove = position.Move(e.Move)
	}

	e.KeyHigh = keyHigh
	e.Move = uint32(finalMove)
	e.Age = t.age
	e.Score = score
	e.StaticEval = staticEval
	e.Depth = uint8(depth)
	e.Flags = uint8(flag) | uint8(Occupied)
}

// Clear zeros the whole table sequentially.
func (t *TT) Clear() {
	for i := range t.buckets {
		t.buckets[i] = Bucket{}
	}
}

// ClearParallel zeros the table split across workers goroutines, per spec
// 4.E's "for large tables this is parallelized across the thread pool, each
// thread zeroing its slice".
func (t *TT) ClearParallel(workers int) {
	if workers <= 1 || len(t.buckets) < workers {
		t.Clear()
		return
	}

	wp := workerpool.New(workers)
	chunk := (len(t.buckets) + workers - 1) / workers
	for start := 0; start < len(t.buckets); start += chunk {
		end := start + chunk
		if end > len(t.buckets) {
			end = len(t.buckets)
		}
		s, e := start, end
		wp.Submit(func() {
			for i := s; i < e; i++ {
				t.buckets[i] = Bucket{}
			}
		})
	}
	wp.StopWait()
}

// Hashfull returns the per-mille occupancy of a representative sample
// (first 1000 buckets' first slot), matching the cheap approximation UCI
// clients expect rather than a full scan.
func (t *TT) Hashfull() int {
	sample := len(t.buckets)
	if sample > 1000 {
		sample = 1000
	}
	if sample == 0 {
		return 0
	}
	used := 0
	for i := 0; i < sample; i++ {
		if t.buckets[i].Entries[0].occupied() {
			used++
		}
	}
	return used * 1000 / sample
}
