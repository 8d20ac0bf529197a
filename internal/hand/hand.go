// Package hand implements the Mahjong rules kernel: parsing, sorting,
// triple/pair enumeration, agari/tenpai search, call predicates, and
// fu/fan scoring. Every exported search function returns full
// decompositions (never just a boolean) so scoring can pick the
// highest-value one.
package hand

import (
	"fmt"
	"strings"

	"riichi-server/internal/tile"
)

// Hand is the mutable concealed-tile + called-meld state of one seat.
type Hand struct {
	Concealed []tile.Tile
	Melds     []tile.Meld
	Riichi        bool
	DoubleRiichi  bool
	Ippatsu       bool
}

var suitLetters = map[byte]tile.Suit{'m': tile.Man, 'p': tile.Pin, 's': tile.Sou, 'w': tile.Wind, 'd': tile.Dragon}

// Parse reads the compact notation "<digits>m<digits>p<digits>s<digits>w<digits>d"
// (suit letters may be omitted if that suit is empty) into a concealed-only
// Hand. Per-copy indices are assigned in appearance order so repeated digits
// become distinct physical tiles.
func Parse(notation string) (Hand, error) {
	var h Hand
	copyIdx := make(map[uint16]uint8) // id7 -> next copy index to assign

	digits := make([]byte, 0, 4)
	for i := 0; i < len(notation); i++ {
		c := notation[i]
		if c >= '0' && c <= '9' {
			digits = append(digits, c)
			continue
		}
		suit, ok := suitLetters[c]
		if !ok {
			return Hand{}, fmt.Errorf("hand: unexpected character %q in %q", c, notation)
		}
		for _, d := range digits {
			n := uint8(d - '0')
			if n == 0 {
				return Hand{}, fmt.Errorf("hand: digit 0 is not a valid 1-indexed tile in %q", notation)
			}
			n--
			face := tile.New(suit, n, 0).ID7()
			idx := copyIdx[face]
			if idx > 3 {
				return Hand{}, fmt.Errorf("hand: more than 4 copies of a tile in %q", notation)
			}
			h.Concealed = append(h.Concealed, tile.New(suit, n, idx))
			copyIdx[face] = idx + 1
		}
		digits = digits[:0]
	}
	if len(digits) > 0 {
		return Hand{}, fmt.Errorf("hand: trailing digits without a suit letter in %q", notation)
	}
	h.Sort()
	return h, nil
}

// Sort performs an insertion sort on raw tile id, stable on copy-index.
// Idempotent: sorting a sorted hand is a no-op.
func (h *Hand) Sort() {
	insertionSort(h.Concealed)
}

func insertionSort(tiles []tile.Tile) {
	for i := 1; i < len(tiles); i++ {
		v := tiles[i]
		j := i - 1
		for j >= 0 && v.Less(tiles[j]) {
			tiles[j+1] = tiles[j]
			j--
		}
		tiles[j+1] = v
	}
}

// SortedCopy returns a freshly insertion-sorted copy, leaving tiles untouched.
func SortedCopy(tiles []tile.Tile) []tile.Tile {
	out := make([]tile.Tile, len(tiles))
	copy(out, tiles)
	insertionSort(out)
	return out
}

// String renders the hand back into roughly the compact notation, for logs.
func (h Hand) String() string {
	var b strings.Builder
	for _, s := range []tile.Suit{tile.Man, tile.Pin, tile.Sou, tile.Wind, tile.Dragon} {
		wrote := false
		for _, t := range h.Concealed {
			if t.Suit() != s {
				continue
			}
			fmt.Fprintf(&b, "%d", t.Number()+1)
			wrote = true
		}
		if wrote {
			b.WriteString(s.String())
		}
	}
	return b.String()
}

// Contains reports whether the hand's concealed tiles include a tile whose
// id9 matches t exactly.
func (h Hand) Contains(t tile.Tile) bool {
	for _, c := range h.Concealed {
		if c.SameCopy(t) {
			return true
		}
	}
	return false
}

// CountFace counts concealed tiles sharing t's id7.
func (h Hand) CountFace(t tile.Tile) int {
	n := 0
	for _, c := range h.Concealed {
		if c.SameFace(t) {
			n++
		}
	}
	return n
}

// RemoveCopy removes the first concealed tile with matching id9, returning
// ok=false if none was found.
func (h *Hand) RemoveCopy(t tile.Tile) bool {
	for i, c := range h.Concealed {
		if c.SameCopy(t) {
			h.Concealed = append(h.Concealed[:i], h.Concealed[i+1:]...)
			return true
		}
	}
	return false
}
