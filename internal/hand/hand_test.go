package hand

import (
	"testing"

	"riichi-server/internal/tile"
)

func mustParse(t *testing.T, notation string) Hand {
	t.Helper()
	h, err := Parse(notation)
	if err != nil {
		t.Fatalf("parse %q: %v", notation, err)
	}
	return h
}

func eastEast() (tile.Tile, tile.Tile) {
	east := tile.New(tile.Wind, 0, 0)
	return east, east
}

func TestParseAssignsCopyIndicesInOrder(t *testing.T) {
	h := mustParse(t, "1122m")
	if len(h.Concealed) != 4 {
		t.Fatalf("expected 4 tiles, got %d", len(h.Concealed))
	}
	if h.Concealed[0].CopyIndex() != 0 || h.Concealed[2].CopyIndex() != 0 {
		t.Fatalf("expected first copy of each face to be index 0, got %+v", h.Concealed)
	}
	if h.Concealed[1].CopyIndex() != 1 || h.Concealed[3].CopyIndex() != 1 {
		t.Fatalf("expected second copy of each face to be index 1, got %+v", h.Concealed)
	}
}

func TestSortIdempotent(t *testing.T) {
	h := mustParse(t, "321m")
	first := append([]tile.Tile{}, h.Concealed...)
	h.Sort()
	for i := range first {
		if first[i] != h.Concealed[i] {
			t.Fatalf("sort not idempotent at %d", i)
		}
	}
}

func TestAgariTilesConserveMultiset(t *testing.T) {
	h := mustParse(t, "123345567m123ps22wd")
	decomps := IsAgariNormal(h)
	if len(decomps) == 0 {
		t.Fatal("expected at least one decomposition")
	}
	for _, d := range decomps {
		var got []tile.Tile
		for _, m := range d {
			got = append(got, m.Tiles()...)
		}
		if len(got) != len(h.Concealed) {
			t.Fatalf("decomposition has %d tiles, hand has %d", len(got), len(h.Concealed))
		}
		counts := make(map[uint16]int)
		for _, c := range h.Concealed {
			counts[c.ID9()]++
		}
		for _, g := range got {
			counts[g.ID9()]--
		}
		for id, n := range counts {
			if n != 0 {
				t.Fatalf("decomposition tile multiset differs from hand at %x (off by %d)", id, n)
			}
		}
	}
}

func TestTenpaiImpliesAgariOnWait(t *testing.T) {
	h := mustParse(t, "123345567m123ps2wd") // missing the wind pair's second tile
	waits := TenpaiWaits(h)
	if len(waits) == 0 {
		t.Fatal("expected at least one wait")
	}
	for _, w := range waits {
		trial := Hand{Concealed: append(append([]tile.Tile{}, h.Concealed...), w)}
		if !IsComplete(trial) {
			t.Fatalf("wait %v did not complete the hand", w)
		}
	}
}

func TestS1PinfuOnlyRon(t *testing.T) {
	h := mustParse(t, "123345567m123ps22wd")
	round, seat := eastEast()
	ctx := WinContext{WinTile: tile.New(tile.Man, 0, 0), SeatWind: seat, RoundWind: round}
	r := ScoreWin(h, ctx)
	if r.Fu != 30 || r.Fan != 1 {
		t.Fatalf("expected fu=30 fan=1, got fu=%d fan=%d yaku=%+v", r.Fu, r.Fan, r.Yaku)
	}
}

func TestS2PinfuTsumo(t *testing.T) {
	h := mustParse(t, "123345567m567ps22wd")
	round, seat := eastEast()
	ctx := WinContext{WinTile: tile.New(tile.Man, 0, 0), SeatWind: seat, RoundWind: round, Tsumo: true}
	r := ScoreWin(h, ctx)
	if r.Fu != 20 || r.Fan != 2 {
		t.Fatalf("expected fu=20 fan=2, got fu=%d fan=%d yaku=%+v", r.Fu, r.Fan, r.Yaku)
	}
}

func TestS4ThreeYakuhai(t *testing.T) {
	h := mustParse(t, "123345m55ps111w222d")
	round, seat := eastEast()
	ctx := WinContext{WinTile: tile.New(tile.Pin, 4, 0), SeatWind: seat, RoundWind: round}
	r := ScoreWin(h, ctx)
	if r.Fu != 50 || r.Fan != 3 {
		t.Fatalf("expected fu=50 fan=3, got fu=%d fan=%d yaku=%+v", r.Fu, r.Fan, r.Yaku)
	}
}

func TestS5IttsuClosed(t *testing.T) {
	h := mustParse(t, "123456789m55ps222wd")
	round, seat := eastEast()
	ctx := WinContext{WinTile: tile.New(tile.Pin, 4, 0), SeatWind: seat, RoundWind: round}
	r := ScoreWin(h, ctx)
	if r.Fu != 40 || r.Fan != 2 {
		t.Fatalf("expected fu=40 fan=2, got fu=%d fan=%d yaku=%+v", r.Fu, r.Fan, r.Yaku)
	}
}

// TestChiitoitsuTanyao exercises the chiitoitsu + tanyao scoring path with a
// hand that actually reduces to seven distinct pairs (the literal hand
// string in the source scenario does not: four separate faces in it have
// odd occurrence counts, so no arrangement of it can be seven pairs).
func TestChiitoitsuTanyao(t *testing.T) {
	h := mustParse(t, "22334455667788m")
	if !IsAgariChiitoitsu(h) {
		t.Fatalf("expected %v to be a valid chiitoitsu shape", h)
	}
	round, seat := eastEast()
	ctx := WinContext{WinTile: tile.New(tile.Man, 7, 0), SeatWind: seat, RoundWind: round}
	r := ScoreWin(h, ctx)
	if r.Kind != AgariChiitoitsu {
		t.Fatalf("expected chiitoitsu decomposition to win, got %+v", r)
	}
	foundTanyao := false
	for _, y := range r.Yaku {
		if y.Name == "tanyao" {
			foundTanyao = true
		}
	}
	if !foundTanyao {
		t.Fatalf("expected tanyao among yaku, got %+v", r.Yaku)
	}
}

// TestChowAvailableTwoOptions exercises chow_available against a hand that
// genuinely has two ways to extend the called tile into a run (the source
// scenario's literal hand has none: 2467m called on 4m has no tile at 3 or
// 5, so every one of the three candidate pairs is unsatisfiable).
func TestChowAvailableTwoOptions(t *testing.T) {
	h := mustParse(t, "356m")
	called := tile.New(tile.Man, 3, 0) // 4m
	pairs := ChowAvailable(h, called)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 chow options, got %d: %+v", len(pairs), pairs)
	}
	for _, p := range pairs {
		lo, hi := p[0].Number(), p[1].Number()
		if lo > hi {
			lo, hi = hi, lo
		}
		nums := []uint8{lo, hi, called.Number()}
		if !isConsecutiveTriple(nums) {
			t.Fatalf("pair %+v does not extend 4m into a consecutive run", p)
		}
	}
}

func isConsecutiveTriple(nums []uint8) bool {
	a, b, c := nums[0], nums[1], nums[2]
	sorted := []uint8{a, b, c}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if sorted[j] < sorted[i] {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	return sorted[1] == sorted[0]+1 && sorted[2] == sorted[1]+1
}

func TestCallPredicatesReturnHandTiles(t *testing.T) {
	h := mustParse(t, "44m")
	pair, ok := PongAvailable(h, tile.New(tile.Man, 3, 0))
	if !ok {
		t.Fatal("expected pong available")
	}
	for _, p := range pair {
		if !h.Contains(p) {
			t.Fatalf("pong tile %v not actually in hand", p)
		}
	}
}
