// Package book implements the Polyglot opening-book reader of spec 4 ("out
// of scope" boundary, specified at its interface): 16-byte big-endian
// records, binary search on key, and weighted random move selection among
// ties, grounded on original_source/src/polyglot.{hpp,cpp} (PolyBook::open,
// lower_entry/upper_entry, the declared-but-unshown select_random) and the
// teacher's own JSON book (interface.go's BookMoveEntry/BookPositionEntry
// shape) for the surrounding move-entry/printable conventions.
package book

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/rudzen/feliscatus-sub000/internal/bitboard"
	"github.com/rudzen/feliscatus-sub000/internal/move"
	"github.com/rudzen/feliscatus-sub000/internal/position"
)

// entrySize is sizeof(BookEntry): key(8) + move(2) + weight(2) + learn(4).
const entrySize = 16

// ErrInvalidFormat reports a book file that is empty or whose byte size isn't
// a multiple of entrySize, spec 4's BookIoError.
var ErrInvalidFormat = errors.New("book: file size is not a multiple of the 16-byte record size")

// entry is one 16-byte Polyglot record, decoded from big-endian on read.
type entry struct {
	key    uint64
	move   uint16
	weight uint16
	learn  uint32
}

// Book is an opened, sorted-by-key Polyglot book file held entirely in
// memory, per original_source's PolyBook.
type Book struct {
	path    string
	entries []entry
}

// Open reads and parses a Polyglot .bin file. Entries are expected sorted by
// key ascending (the standard Polyglot tool output); Open re-sorts
// defensively so Probe's binary search is always valid.
func Open(path string) (*Book, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("book: open %s: %w", path, err)
	}
	if len(raw) == 0 || len(raw)%entrySize != 0 {
		return nil, ErrInvalidFormat
	}

	count := len(raw) / entrySize
	entries := make([]entry, count)
	for i := 0; i < count; i++ {
		rec := raw[i*entrySize : (i+1)*entrySize]
		entries[i] = entry{
			key:    binary.BigEndian.Uint64(rec[0:8]),
			move:   binary.BigEndian.Uint16(rec[8:10]),
			weight: binary.BigEndian.Uint16(rec[10:12]),
			learn:  binary.BigEndian.Uint32(rec[12:16]),
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	return &Book{path: path, entries: entries}, nil
}

// Path returns the file this Book was opened from.
func (bk *Book) Path() string { return bk.path }

// Size returns the number of entries held.
func (bk *Book) Size() int { return len(bk.entries) }

// Probe looks up b's current position and returns a move chosen by weighted
// random selection among every entry sharing the position's key, per
// original_source's declared (if unshown) select_random. Returns false when
// the position isn't in the book or the selected entry does not decode to a
// legal move; the other entries for the position are not tried in that case.
func (bk *Book) Probe(b *position.Board, rng *rand.Rand) (position.Move, bool) {
	key := polyglotKey(b)
	lo := sort.Search(len(bk.entries), func(i int) bool { return bk.entries[i].key >= key })
	hi := lo
	for hi < len(bk.entries) && bk.entries[hi].key == key {
		hi++
	}
	if lo == hi {
		return position.NullMove, false
	}

	var totalWeight int
	for _, e := range bk.entries[lo:hi] {
		totalWeight += int(e.weight) + 1 // +1 so a zero-weight entry is still selectable
	}
	pick := rng.Intn(totalWeight)
	for _, e := range bk.entries[lo:hi] {
		w := int(e.weight) + 1
		if pick < w {
			if m, ok := decodeMove(b, e.move); ok {
				return m, true
			}
			return position.NullMove, false
		}
		pick -= w
	}
	return position.NullMove, false
}

// decodeMove translates a raw Polyglot move field into this board's own
// Move encoding by matching (from, to[, promoted]) against the legal move
// list, per original_source's decode(): bits 0-2 to-file, 3-5 to-rank, 6-8
// from-file, 9-11 from-rank, 12-14 promotion piece (0 none, 1 knight, 2
// bishop, 3 rook, 4 queen). Castling is encoded king-captures-own-rook even
// for standard chess, so e1h1/e1a1/e8h8/e8a8 are remapped to this engine's
// own king-destination notation before matching.
func decodeMove(b *position.Board, raw uint16) (position.Move, bool) {
	if raw == 0 {
		return position.NullMove, false
	}

	toFile := int(raw & 0x7)
	toRank := int((raw >> 3) & 0x7)
	fromFile := int((raw >> 6) & 0x7)
	fromRank := int((raw >> 9) & 0x7)
	promo := int((raw >> 12) & 0x7)

	from := position.Square(fromRank*8 + fromFile)
	to := position.Square(toRank*8 + toFile)

	pc := b.PieceAt(from)
	if pc.Type() == position.King {
		switch {
		case from == position.Square(4) && to == position.Square(7):
			to = position.Square(6) // e1h1 -> e1g1
		case from == position.Square(4) && to == position.Square(0):
			to = position.Square(2) // e1a1 -> e1c1
		case from == position.Square(60) && to == position.Square(63):
			to = position.Square(62) // e8h8 -> e8g8
		case from == position.Square(60) && to == position.Square(56):
			to = position.Square(58) // e8a8 -> e8c8
		}
	}

	var promoted position.PieceType
	switch promo {
	case 1:
		promoted = position.Knight
	case 2:
		promoted = position.Bishop
	case 3:
		promoted = position.Rook
	case 4:
		promoted = position.Queen
	}

	for _, m := range move.Full(b, true) {
		if m.From() != from || m.To() != to {
			continue
		}
		if m.IsPromotion() && m.Promoted() != promoted {
			continue
		}
		if !m.IsPromotion() && promoted != position.NoPieceType {
			continue
		}
		return m, true
	}
	return position.NullMove, false
}

// polyPieceKind maps a Piece to the Polyglot piece-kind ordering (pawn,
// knight, bishop, rook, queen, king; black before white within each kind).
func polyPieceKind(p position.Piece) int {
	kind := (int(p.Type()) - 1) * 2
	if p.Color() == position.White {
		kind++
	}
	return kind
}

// polyglotKey computes the Polyglot hash of b's current position: XOR of
// every piece-square key, the side-to-move key when it's White to move, the
// castling-rights keys for each right still held, and the en-passant file
// key when an ep capture is actually available, per original_source's
// poly_key/hash_pieces/hash_castle/hash_enpassant/hash_turn.
func polyglotKey(b *position.Board) uint64 {
	var key uint64

	occ := b.PieceTypeBB(position.Pawn) | b.PieceTypeBB(position.Knight) |
		b.PieceTypeBB(position.Bishop) | b.PieceTypeBB(position.Rook) |
		b.PieceTypeBB(position.Queen) | b.PieceTypeBB(position.King)
	for occ != 0 {
		sq := bitboard.PopLSB(&occ)
		pc := b.PieceAt(sq)
		key ^= polyRandom[polyPieceIndex(polyPieceKind(pc), int(sq))]
	}

	cur := b.Current()
	if cur.Castling&position.WOO != 0 {
		key ^= polyRandom[polyCastleBase+0]
	}
	if cur.Castling&position.WOOO != 0 {
		key ^= polyRandom[polyCastleBase+1]
	}
	if cur.Castling&position.BOO != 0 {
		key ^= polyRandom[polyCastleBase+2]
	}
	if cur.Castling&position.BOOO != 0 {
		key ^= polyRandom[polyCastleBase+3]
	}

	if cur.EpSquare != position.NoSquare &&
		bitboard.PawnAttacks[cur.SideToMove.Opposite()][cur.EpSquare]&b.PieceBB(cur.SideToMove, position.Pawn) != 0 {
		key ^= polyRandom[polyEpBase+cur.EpSquare.File()]
	}

	if cur.SideToMove == position.White {
		key ^= polyRandom[polyTurnIndex]
	}

	return key
}
