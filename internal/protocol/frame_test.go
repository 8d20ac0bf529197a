package protocol

import (
	"bytes"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	headers := []Header{MyID, JoinAsPlayer, DiscardTile, CallRon, YourID, NewRound, ThisManyPoints}
	payloads := []uint16{0, 1, 0x3f3f, 0xffff, 8000, 0x8088}
	for _, h := range headers {
		for _, p := range payloads {
			f := New(h, p)
			got := Decode(Encode(f))
			if got.Header != f.Header || got.Payload != f.Payload {
				t.Fatalf("round trip mismatch for %c/%x: got %+v", h, p, got)
			}
		}
	}
}

func TestReadWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	want := New(CallTsumo, 0x1234)
	if err := WriteFrame(&buf, want); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.Len() != Size {
		t.Fatalf("expected %d bytes on wire, got %d", Size, buf.Len())
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestQueueFIFOAndDeadline(t *testing.T) {
	q := NewQueue(4)
	q.Push(Envelope{Sender: 1, Frame: New(DiscardTile, 5)})
	q.Push(Envelope{Sender: 2, Frame: New(DiscardTile, 6)})

	e1, ok := q.PopFront(50 * time.Millisecond)
	if !ok || e1.Sender != 1 {
		t.Fatalf("expected first-pushed envelope first, got %+v ok=%v", e1, ok)
	}
	e2, ok := q.PopFront(50 * time.Millisecond)
	if !ok || e2.Sender != 2 {
		t.Fatalf("expected second envelope, got %+v ok=%v", e2, ok)
	}

	_, ok = q.PopFront(20 * time.Millisecond)
	if ok {
		t.Fatalf("expected timeout on empty queue")
	}
}

func TestQueueFlush(t *testing.T) {
	q := NewQueue(4)
	q.Push(Envelope{Sender: 1})
	q.Push(Envelope{Sender: 2})
	q.Flush()
	if q.Len() != 0 {
		t.Fatalf("expected flush to empty queue, len=%d", q.Len())
	}
}
