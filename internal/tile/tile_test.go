package tile

import "testing"

func TestID7StripsIndexAndFlags(t *testing.T) {
	a := New(Man, 4, 0)
	b := New(Man, 4, 2).WithRedFive()
	if a.ID7() != b.ID7() {
		t.Fatalf("expected same id7, got %x vs %x", a.ID7(), b.ID7())
	}
	if a.ID9() == b.ID9() {
		t.Fatalf("expected different id9 for distinct copies")
	}
}

func TestWire9RoundTrip(t *testing.T) {
	cases := []Tile{
		New(Man, 0, 0), New(Man, 8, 3), New(Pin, 4, 1),
		New(Sou, 8, 2), New(Wind, 3, 0), New(Dragon, 2, 1),
	}
	for _, tl := range cases {
		got := FromWire9(tl.Wire9())
		if got.ID9() != tl.ID9() {
			t.Fatalf("wire9 round trip mismatch: %v -> %x -> %v", tl, tl.Wire9(), got)
		}
	}
}

func TestFace34RoundTrip(t *testing.T) {
	for face := 0; face < 34; face++ {
		tl := FromFace34(face)
		if tl.Face34() != face {
			t.Fatalf("face34 round trip mismatch: %d -> %v -> %d", face, tl, tl.Face34())
		}
	}
}

func TestSucc(t *testing.T) {
	if New(Man, 8, 0).Succ().ID7() != New(Man, 0, 0).ID7() {
		t.Fatalf("9m should wrap to 1m")
	}
	if New(Wind, 3, 0).Succ().ID7() != New(Wind, 0, 0).ID7() {
		t.Fatalf("north wind should wrap to east")
	}
	if New(Dragon, 2, 0).Succ().ID7() != New(Dragon, 0, 0).ID7() {
		t.Fatalf("red dragon should wrap to white")
	}
}

func TestMeldPackUnpack(t *testing.T) {
	tiles := []Tile{New(Man, 2, 0), New(Man, 3, 1), New(Man, 4, 2)}
	m := NewMeld(Sequence, tiles, true)
	if !m.IsSequence() || !m.IsOpen() || m.Size() != 3 {
		t.Fatalf("unexpected meld shape: %+v", m)
	}
	got := m.Tiles()
	for i, want := range tiles {
		if got[i].ID9() != want.ID9() {
			t.Fatalf("meld tile %d mismatch: got %v want %v", i, got[i], want)
		}
	}
}

func TestKongFourthSlot(t *testing.T) {
	tiles := []Tile{New(Dragon, 1, 0), New(Dragon, 1, 1), New(Dragon, 1, 2), New(Dragon, 1, 3)}
	m := NewMeld(Kong, tiles, false)
	if m.Fourth().ID7() != New(Dragon, 1, 0).ID7() {
		t.Fatalf("expected fourth slot populated on kong")
	}
	set := NewMeld(Set, tiles[:3], false)
	if set.Fourth() != Invalid {
		t.Fatalf("non-kong meld should report Invalid fourth tile")
	}
}
