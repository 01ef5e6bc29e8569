package core

import (
	"fmt"
	"testing"
)

func TestHistoryTrimsToRetainWindow(t *testing.T) {
	h := newHistoryWindow(10, 5)
	for i := 0; i < 11; i++ {
		h.Append(fmt.Sprintf("line %d", i))
	}
	entries := h.Entries()
	if len(entries) != 5 {
		t.Fatalf("len = %d, want 5", len(entries))
	}
	if entries[0] != "line 6" || entries[len(entries)-1] != "line 10" {
		t.Fatalf("entries = %v", entries)
	}
}

func TestHistorySkipsEmptyFragments(t *testing.T) {
	h := newHistoryWindow(10, 5)
	h.Append("")
	h.Append("one")
	h.Append("")
	if got := len(h.Entries()); got != 1 {
		t.Fatalf("len = %d, want 1", got)
	}
}

func TestHistoryTail(t *testing.T) {
	h := newHistoryWindow(10, 5)
	for _, entry := range []string{"a", "b", "c"} {
		h.Append(entry)
	}
	tail := h.Tail(2)
	if len(tail) != 2 || tail[0] != "b" || tail[1] != "c" {
		t.Fatalf("tail = %v", tail)
	}
	if got := h.Tail(10); len(got) != 3 {
		t.Fatalf("oversized tail len = %d, want 3", len(got))
	}
	h.Clear()
	if got := h.Tail(2); len(got) != 0 {
		t.Fatalf("tail after clear = %v", got)
	}
}
