package diagnostics

import (
	"bytes"
	"testing"
)

func TestRenderEmptyRingIsAllFree(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, Snapshot{Capacity: 100}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "ring[cap=100]: free=100\n"
	if got := buf.String(); got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestRenderFourDistinctSpans(t *testing.T) {
	var buf bytes.Buffer
	s := Snapshot{
		Capacity:  100,
		Tail:      10,
		LocalTail: 20,
		Head:      30,
		LocalHead: 50,
	}
	if err := Render(&buf, s); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "ring[cap=100]: free=10 consumed=10 used=10 reserved=20 free=50\n"
	if got := buf.String(); got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestRenderFullyPublishedAndConsumed(t *testing.T) {
	var buf bytes.Buffer
	s := Snapshot{
		Capacity:  64,
		Tail:      64,
		LocalTail: 64,
		Head:      64,
		LocalHead: 64,
	}
	if err := Render(&buf, s); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "ring[cap=64]: free=64\n"
	if got := buf.String(); got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}
