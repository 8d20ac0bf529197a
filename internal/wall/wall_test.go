package wall

import (
	"errors"
	"testing"
)

func TestDrawExactly122ThenEmpty(t *testing.T) {
	w := New(false)
	for i := 0; i < liveCapacity; i++ {
		if _, err := w.Draw(); err != nil {
			t.Fatalf("draw %d: unexpected error %v", i+1, err)
		}
	}
	if w.Size() != 0 {
		t.Fatalf("expected 0 remaining, got %d", w.Size())
	}
	if _, err := w.Draw(); !errors.Is(err, Empty) {
		t.Fatalf("expected Empty on 123rd draw, got %v", err)
	}
}

func TestDoraIndicatorBounds(t *testing.T) {
	w := New(false)
	if got := w.GetDoraIndicators(); len(got) != 1 {
		t.Fatalf("expected 1 dora indicator face-up from the start, got %d", len(got))
	}
	for i := 0; i < doraSlots-1; i++ {
		if _, err := w.RevealDoraIndicator(); err != nil {
			t.Fatalf("reveal %d: %v", i, err)
		}
	}
	if _, err := w.RevealDoraIndicator(); err == nil {
		t.Fatalf("expected error revealing a 6th dora indicator")
	}
}

func TestKanTileBounds(t *testing.T) {
	w := New(false)
	for i := 0; i < kanSlots; i++ {
		if _, err := w.DrawKanTile(); err != nil {
			t.Fatalf("kan draw %d: %v", i, err)
		}
	}
	if _, err := w.DrawKanTile(); err == nil {
		t.Fatalf("expected error on 5th kan draw")
	}
}

func TestReshuffleProducesFullDeck(t *testing.T) {
	w := New(true)
	seen := make(map[uint16]int)
	for i := 0; i < liveCapacity; i++ {
		tl, _ := w.Draw()
		seen[tl.ID9()]++
	}
	for i := 0; i < kanSlots; i++ {
		tl, _ := w.DrawKanTile()
		seen[tl.ID9()]++
	}
	for i := 1; i < doraSlots; i++ {
		tl, _ := w.RevealDoraIndicator()
		seen[tl.ID9()]++
	}
	seen[w.doraIndicators[0].ID9()]++
	for i := 0; i < uraDoraSlots; i++ {
		tl, _ := w.RevealUraDoraIndicator()
		seen[tl.ID9()]++
	}
	if len(seen) != 136 {
		t.Fatalf("expected 136 distinct physical copies accounted for, got %d", len(seen))
	}
}
