package hand

import "riichi-server/internal/tile"

// YakuHan names one scoring yaku and the fan it contributes. Wind yaku can
// appear twice for the same meld (round wind and seat wind both matching),
// so this is a flat list rather than a set.
type YakuHan struct {
	Name string
	Han  int
}

// WinContext carries everything about the winning moment that the
// decomposition itself doesn't encode: who won, how, and what was revealed.
type WinContext struct {
	WinTile   tile.Tile
	SeatWind  tile.Tile // canonical Wind-suit tile for this seat
	RoundWind tile.Tile // canonical Wind-suit tile for the prevailing round

	Tsumo        bool
	Riichi       bool
	DoubleRiichi bool
	Ippatsu      bool
	Haitei       bool // tsumo on the last live-wall tile
	Houtei       bool // ron on the last discard of the round
	Rinshan      bool // tsumo immediately after a kong replacement draw
	Chankan      bool // ron robbing a kong

	DoraIndicators    []tile.Tile
	UraDoraIndicators []tile.Tile
}

func isYakuhaiPair(pair tile.Meld, ctx WinContext) bool {
	t := pair.First()
	if t.Suit() == tile.Dragon {
		return true
	}
	return t.Suit() == tile.Wind && (t.SameFace(ctx.RoundWind) || t.SameFace(ctx.SeatWind))
}

func allSequences(melds []tile.Meld) bool {
	for _, m := range melds {
		if !m.IsSequence() {
			return false
		}
	}
	return true
}

func allTripletsOrKongs(melds []tile.Meld) bool {
	for _, m := range melds {
		if m.IsSequence() {
			return false
		}
	}
	return true
}

func isFullyConcealed(melds []tile.Meld) bool {
	for _, m := range melds {
		if m.IsOpen() {
			return false
		}
	}
	return true
}

func waitIsRyanmen(melds []tile.Meld, pair tile.Meld, winTile tile.Tile) bool {
	for _, m := range melds {
		if !m.IsSequence() || !containsFace(m, winTile) {
			continue
		}
		tiles := m.Tiles()
		low, mid, high := tiles[0], tiles[1], tiles[2]
		if winTile.SameFace(mid) {
			return false
		}
		if winTile.SameFace(high) && low.Number() == 0 {
			return false
		}
		if winTile.SameFace(low) && high.Number() == 8 {
			return false
		}
		return winTile.SameFace(low) || winTile.SameFace(high)
	}
	return false
}

func containsFace(m tile.Meld, t tile.Tile) bool {
	for _, x := range m.Tiles() {
		if x.SameFace(t) {
			return true
		}
	}
	return false
}

func isPinfu(melds []tile.Meld, pair tile.Meld, ctx WinContext) bool {
	return isFullyConcealed(melds) && allSequences(melds) &&
		!isYakuhaiPair(pair, ctx) && waitIsRyanmen(melds, pair, ctx.WinTile)
}

func isIttsu(melds []tile.Meld) (bool, bool) { // (found, closedBonus-eligible i.e. concealed run set)
	for _, s := range []tile.Suit{tile.Man, tile.Pin, tile.Sou} {
		have := [3]bool{}
		for _, m := range melds {
			if !m.IsSequence() || m.First().Suit() != s {
				continue
			}
			switch m.First().Number() {
			case 0:
				have[0] = true
			case 3:
				have[1] = true
			case 6:
				have[2] = true
			}
		}
		if have[0] && have[1] && have[2] {
			return true, isFullyConcealed(melds)
		}
	}
	return false, false
}

func isSanshokuDoujun(melds []tile.Meld) bool {
	seen := make(map[uint8]uint8) // number -> bitmask of suits present
	for _, m := range melds {
		if !m.IsSequence() {
			continue
		}
		bit := uint8(1) << uint(m.First().Suit())
		seen[m.First().Number()] |= bit
	}
	want := uint8(1)<<tile.Man | uint8(1)<<tile.Pin | uint8(1)<<tile.Sou
	for _, v := range seen {
		if v&want == want {
			return true
		}
	}
	return false
}

func isToitoi(melds []tile.Meld) bool {
	return len(melds) > 0 && allTripletsOrKongs(melds)
}

func suitProfile(melds []tile.Meld, pair tile.Meld) (suits map[tile.Suit]bool, hasHonor bool) {
	suits = make(map[tile.Suit]bool)
	all := append(append([]tile.Meld{}, melds...), pair)
	for _, m := range all {
		for _, t := range m.Tiles() {
			if t.IsHonor() {
				hasHonor = true
				continue
			}
			suits[t.Suit()] = true
		}
	}
	return
}

func isHonitsuOrChinitsu(melds []tile.Meld, pair tile.Meld) (honitsu, chinitsu bool) {
	suits, hasHonor := suitProfile(melds, pair)
	if len(suits) != 1 {
		return false, false
	}
	if hasHonor {
		return true, false
	}
	return false, true
}

func countDora(tiles []tile.Tile, indicators []tile.Tile) int {
	n := 0
	for _, ind := range indicators {
		want := ind.Succ().ID7()
		for _, t := range tiles {
			if t.ID7() == want {
				n++
			}
		}
	}
	return n
}

func countRedFives(tiles []tile.Tile) int {
	n := 0
	for _, t := range tiles {
		if t.IsRedFive() {
			n++
		}
	}
	return n
}

// allTiles flattens a full decomposition plus any called melds into a flat
// tile list, for tanyao/dora/suit-profile style checks.
func allTiles(melds []tile.Meld, pair tile.Meld) []tile.Tile {
	var out []tile.Tile
	for _, m := range melds {
		out = append(out, m.Tiles()...)
	}
	out = append(out, pair.Tiles()...)
	return out
}

// DetectYaku evaluates every recognized yaku against a standard (4 melds +
// pair) decomposition, given the full meld list (concealed finds plus any
// called melds merged in) and the context of the win.
func DetectYaku(melds []tile.Meld, pair tile.Meld, ctx WinContext) []YakuHan {
	var out []YakuHan
	closed := isFullyConcealed(melds)
	tiles := allTiles(melds, pair)

	if isPinfu(melds, pair, ctx) {
		out = append(out, YakuHan{"pinfu", 1})
	}
	tanyao := true
	for _, t := range tiles {
		if t.IsTerminalOrHonor() {
			tanyao = false
			break
		}
	}
	if tanyao {
		out = append(out, YakuHan{"tanyao", 1})
	}
	for _, m := range melds {
		if !m.IsSet() && !m.IsKong() {
			continue
		}
		t := m.First()
		switch {
		case t.Suit() == tile.Dragon:
			out = append(out, YakuHan{"yakuhai-dragon", 1})
		case t.Suit() == tile.Wind && t.SameFace(ctx.RoundWind):
			out = append(out, YakuHan{"yakuhai-round-wind", 1})
			if t.SameFace(ctx.SeatWind) {
				out = append(out, YakuHan{"yakuhai-seat-wind", 1})
			}
		case t.Suit() == tile.Wind && t.SameFace(ctx.SeatWind):
			out = append(out, YakuHan{"yakuhai-seat-wind", 1})
		}
	}
	if ctx.DoubleRiichi {
		out = append(out, YakuHan{"double-riichi", 2})
	} else if ctx.Riichi {
		out = append(out, YakuHan{"riichi", 1})
	}
	if ctx.Ippatsu {
		out = append(out, YakuHan{"ippatsu", 1})
	}
	if ctx.Tsumo && closed {
		out = append(out, YakuHan{"menzen-tsumo", 1})
	}
	if found, concealedRun := isIttsu(melds); found {
		han := 1
		if concealedRun {
			han = 2
		}
		out = append(out, YakuHan{"ittsu", han})
	}
	if isSanshokuDoujun(melds) {
		han := 1
		if closed {
			han = 2
		}
		out = append(out, YakuHan{"sanshoku-doujun", han})
	}
	if isToitoi(melds) {
		out = append(out, YakuHan{"toitoi", 2})
	}
	if honitsu, chinitsu := isHonitsuOrChinitsu(melds, pair); honitsu {
		han := 2
		if closed {
			han = 3
		}
		out = append(out, YakuHan{"honitsu", han})
	} else if chinitsu {
		han := 5
		if closed {
			han = 6
		}
		out = append(out, YakuHan{"chinitsu", han})
	}
	if ctx.Haitei {
		out = append(out, YakuHan{"haitei", 1})
	}
	if ctx.Houtei {
		out = append(out, YakuHan{"houtei", 1})
	}
	if ctx.Rinshan {
		out = append(out, YakuHan{"rinshan", 1})
	}
	if ctx.Chankan {
		out = append(out, YakuHan{"chankan", 1})
	}
	if n := countDora(tiles, ctx.DoraIndicators); n > 0 {
		out = append(out, YakuHan{"dora", n})
	}
	if ctx.Riichi || ctx.DoubleRiichi {
		if n := countDora(tiles, ctx.UraDoraIndicators); n > 0 {
			out = append(out, YakuHan{"ura-dora", n})
		}
	}
	if n := countRedFives(tiles); n > 0 {
		out = append(out, YakuHan{"aka-dora", n})
	}
	return out
}
