package hand

import "riichi-server/internal/tile"

// PongAvailable reports whether two concealed tiles matching t's face exist,
// returning them (so the caller can remove exactly those physical copies
// when the call resolves).
func PongAvailable(h Hand, t tile.Tile) ([2]tile.Tile, bool) {
	var found []tile.Tile
	for _, c := range h.Concealed {
		if c.SameFace(t) {
			found = append(found, c)
			if len(found) == 2 {
				return [2]tile.Tile{found[0], found[1]}, true
			}
		}
	}
	return [2]tile.Tile{}, false
}

// KongAvailable reports whether three concealed tiles matching a discarded
// t exist (an open kong on someone else's discard).
func KongAvailable(h Hand, t tile.Tile) ([3]tile.Tile, bool) {
	var found []tile.Tile
	for _, c := range h.Concealed {
		if c.SameFace(t) {
			found = append(found, c)
			if len(found) == 3 {
				return [3]tile.Tile{found[0], found[1], found[2]}, true
			}
		}
	}
	return [3]tile.Tile{}, false
}

// ClosedKongAvailable reports whether the hand already holds all four
// copies of t's face — a self-declared closed kong, checked on the seat's
// own turn rather than against an opponent's discard.
func ClosedKongAvailable(h Hand, t tile.Tile) ([4]tile.Tile, bool) {
	var found []tile.Tile
	for _, c := range h.Concealed {
		if c.SameFace(t) {
			found = append(found, c)
		}
	}
	if len(found) != 4 {
		return [4]tile.Tile{}, false
	}
	return [4]tile.Tile{found[0], found[1], found[2], found[3]}, true
}

// AddedKongAvailable reports whether the hand has an existing open pong of
// t's face that the just-drawn t can upgrade into a kong, returning the
// index of that meld in h.Melds.
func AddedKongAvailable(h Hand, t tile.Tile) (int, bool) {
	for i, m := range h.Melds {
		if m.IsSet() && m.IsOpen() && m.First().SameFace(t) {
			return i, true
		}
	}
	return -1, false
}

// ChowPair names the two hand tiles a chow call would consume alongside the
// discarded tile.
type ChowPair [2]tile.Tile

// ChowAvailable enumerates every way the hand can extend a same-suit
// discard t into a run of three consecutive numbers, returning the distinct
// auxiliary tile pairs (not the runs themselves — the discard always
// supplies the third number). Only the discarding player's left-hand
// neighbor may call chow; seat-order eligibility is the session engine's
// concern, not this predicate's.
func ChowAvailable(h Hand, t tile.Tile) []ChowPair {
	if !t.IsNumbered() {
		return nil
	}
	n := int(t.Number())
	var out []ChowPair
	type offsets struct{ a, b int }
	for _, o := range []offsets{{-2, -1}, {-1, 1}, {1, 2}} {
		na, nb := n+o.a, n+o.b
		if na < 0 || na > 8 || nb < 0 || nb > 8 {
			continue
		}
		wantA := tile.New(t.Suit(), uint8(na), 0)
		wantB := tile.New(t.Suit(), uint8(nb), 0)
		tileA, okA := firstMatch(h.Concealed, wantA, nil)
		if !okA {
			continue
		}
		tileB, okB := firstMatch(h.Concealed, wantB, &tileA)
		if !okB {
			continue
		}
		out = append(out, ChowPair{tileA, tileB})
	}
	return out
}

// firstMatch finds the first concealed tile sharing want's face, skipping
// over exclude (used so a chow needing two different faces never reuses the
// same physical tile twice when na==nb can't happen, but kept for safety).
func firstMatch(concealed []tile.Tile, want tile.Tile, exclude *tile.Tile) (tile.Tile, bool) {
	for _, c := range concealed {
		if exclude != nil && c.SameCopy(*exclude) {
			continue
		}
		if c.SameFace(want) {
			return c, true
		}
	}
	return tile.Invalid, false
}
