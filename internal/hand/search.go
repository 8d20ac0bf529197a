package hand

import "riichi-server/internal/tile"

// Candidate is one triple (set or sequence) found by enumerateTriples, named
// by index into the sorted slice it was enumerated from.
type Candidate struct {
	Kind    tile.MeldKind
	Indices [3]int
}

// pairCandidate names one pair found by enumeratePairs.
type pairCandidate struct {
	Indices [2]int
}

// enumeratePairs scans a sorted tile slice for adjacent same-face pairs,
// skipping past a matched pair so a run of 4 identical tiles yields two
// non-overlapping pairs rather than three overlapping ones.
func enumeratePairs(sorted []tile.Tile) []pairCandidate {
	var out []pairCandidate
	for i := 0; i+1 < len(sorted); {
		if sorted[i].SameFace(sorted[i+1]) {
			out = append(out, pairCandidate{Indices: [2]int{i, i + 1}})
			i += 2
			continue
		}
		i++
	}
	return out
}

// enumerateTriples scans a sorted tile slice for every set-triple (three
// tiles sharing a face) and sequence-triple (three consecutive numbers in
// one suit), honor tiles naturally excluded from the sequence branch since
// IsNumbered is false for them.
func enumerateTriples(sorted []tile.Tile) []Candidate {
	var out []Candidate
	n := len(sorted)
	for i := 0; i < n; i++ {
		if i+2 < n && sorted[i].SameFace(sorted[i+1]) && sorted[i].SameFace(sorted[i+2]) {
			out = append(out, Candidate{Kind: tile.Set, Indices: [3]int{i, i + 1, i + 2}})
		}
		if !sorted[i].IsNumbered() || sorted[i].Number() > 6 {
			continue
		}
		for j := i + 1; j < n; j++ {
			if sorted[j].Suit() != sorted[i].Suit() || sorted[j].Number() != sorted[i].Number()+1 {
				continue
			}
			for k := j + 1; k < n; k++ {
				if sorted[k].Suit() != sorted[i].Suit() || sorted[k].Number() != sorted[j].Number()+1 {
					continue
				}
				out = append(out, Candidate{Kind: tile.Sequence, Indices: [3]int{i, j, k}})
			}
		}
	}
	return out
}

func removeIndices(sorted []tile.Tile, idx [3]int) []tile.Tile {
	skip := map[int]bool{idx[0]: true, idx[1]: true, idx[2]: true}
	out := make([]tile.Tile, 0, len(sorted)-3)
	for i, t := range sorted {
		if !skip[i] {
			out = append(out, t)
		}
	}
	return out
}

// Decomposition is one way to read a hand as agari: some number of
// concealed melds (set/sequence, found by search) followed by exactly one
// pair. Called melds are not included here — the caller appends them.
type Decomposition []tile.Meld

// findConcealedAgari recursively peels meldsNeeded triples off sorted,
// requiring the final residue to be exactly one pair. Returns every
// decomposition, in candidate-generation order (leftmost first).
func findConcealedAgari(sorted []tile.Tile, meldsNeeded int) []Decomposition {
	if meldsNeeded == 0 {
		if len(sorted) == 2 && sorted[0].SameFace(sorted[1]) {
			return []Decomposition{{tile.NewMeld(tile.Pair, sorted, false)}}
		}
		return nil
	}
	var results []Decomposition
	for _, c := range enumerateTriples(sorted) {
		meldTiles := []tile.Tile{sorted[c.Indices[0]], sorted[c.Indices[1]], sorted[c.Indices[2]]}
		remaining := removeIndices(sorted, c.Indices)
		subs := findConcealedAgari(remaining, meldsNeeded-1)
		if len(subs) == 0 {
			continue
		}
		meld := tile.NewMeld(c.Kind, meldTiles, false)
		for _, sub := range subs {
			d := make(Decomposition, 0, len(sub)+1)
			d = append(d, meld)
			d = append(d, sub...)
			results = append(results, d)
		}
	}
	return results
}

// IsAgariNormal reports every standard (4 melds + pair) decomposition of the
// concealed tiles, given the melds already called (which count toward the
// 4-meld total but are not re-derived).
func IsAgariNormal(h Hand) []Decomposition {
	meldsNeeded := 4 - len(h.Melds)
	if meldsNeeded < 0 {
		return nil
	}
	sorted := SortedCopy(h.Concealed)
	return findConcealedAgari(sorted, meldsNeeded)
}

// IsAgariChiitoitsu reports whether the hand is seven distinct pairs. Only
// possible fully concealed (no called melds), per standard rules.
func IsAgariChiitoitsu(h Hand) bool {
	if len(h.Melds) != 0 || len(h.Concealed) != 14 {
		return false
	}
	sorted := SortedCopy(h.Concealed)
	pairs := enumeratePairs(sorted)
	if len(pairs) != 7 {
		return false
	}
	seen := make(map[uint16]bool, 7)
	for _, p := range pairs {
		face := sorted[p.Indices[0]].ID7()
		if seen[face] {
			return false
		}
		seen[face] = true
	}
	return true
}

var kokushiFaces = func() map[uint16]bool {
	m := make(map[uint16]bool)
	add := func(s tile.Suit, n uint8) { m[tile.New(s, n, 0).ID7()] = true }
	add(tile.Man, 0)
	add(tile.Man, 8)
	add(tile.Pin, 0)
	add(tile.Pin, 8)
	add(tile.Sou, 0)
	add(tile.Sou, 8)
	for n := uint8(0); n < 4; n++ {
		add(tile.Wind, n)
	}
	for n := uint8(0); n < 3; n++ {
		add(tile.Dragon, n)
	}
	return m
}()

// IsAgariKokushi reports whether the hand is the thirteen-orphans special
// hand: one of each terminal/honor face plus a second copy of any one of
// them. Only possible fully concealed.
func IsAgariKokushi(h Hand) bool {
	if len(h.Melds) != 0 || len(h.Concealed) != 14 {
		return false
	}
	counts := make(map[uint16]int, 13)
	for _, t := range h.Concealed {
		face := t.ID7()
		if !kokushiFaces[face] {
			return false
		}
		counts[face]++
	}
	if len(counts) != 13 {
		return false
	}
	pairSeen := false
	for _, c := range counts {
		switch c {
		case 1:
		case 2:
			if pairSeen {
				return false
			}
			pairSeen = true
		default:
			return false
		}
	}
	return pairSeen
}

// AgariKind distinguishes which family a winning decomposition belongs to;
// needed by scoring since chiitoitsu/kokushi have fixed fu or fixed points.
type AgariKind int

const (
	AgariNone AgariKind = iota
	AgariStandard
	AgariChiitoitsu
	AgariKokushi
)

// Agari reports the first family the hand completes, checked in the order
// kokushi, chiitoitsu, standard, with the standard decompositions when that
// family is the one reported (nil for the two special hands). A hand that
// reads both as chiitoitsu and as a standard hand is reported as
// chiitoitsu only; ScoreWin checks every family itself.
func Agari(h Hand) (AgariKind, []Decomposition) {
	if IsAgariKokushi(h) {
		return AgariKokushi, nil
	}
	if IsAgariChiitoitsu(h) {
		return AgariChiitoitsu, nil
	}
	if d := IsAgariNormal(h); len(d) > 0 {
		return AgariStandard, d
	}
	return AgariNone, nil
}

// IsComplete reports only whether the hand is a winning hand, cheaply.
func IsComplete(h Hand) bool {
	kind, _ := Agari(h)
	return kind != AgariNone
}

// TenpaiWaits returns the canonical (copy-index 0, flagless) tiles that
// would complete the hand, probed across all 34 faces.
func TenpaiWaits(h Hand) []tile.Tile {
	var waits []tile.Tile
	for face := 0; face < 34; face++ {
		probe := tile.FromFace34(face)
		trial := Hand{Concealed: append(append([]tile.Tile{}, h.Concealed...), probe), Melds: h.Melds}
		if IsComplete(trial) {
			waits = append(waits, probe)
		}
	}
	return waits
}

// IsTenpai reports whether the hand is one tile away from complete.
func IsTenpai(h Hand) bool {
	return len(TenpaiWaits(h)) > 0
}
