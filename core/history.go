package core

// historyWindow is the rolling window of decoded output fragments
// inspected by the failure heuristic and attached to analysis
// requests. It is distinct from the terminal buffer: a clear-screen
// empties the buffer but not this window.
type historyWindow struct {
	entries []string
	max     int
	retain  int
}

func newHistoryWindow(max, retain int) *historyWindow {
	if max <= 0 {
		max = 100
	}
	if retain <= 0 || retain > max {
		retain = max / 2
	}
	return &historyWindow{max: max, retain: retain}
}

// Append adds one decoded fragment. On overflow the window is trimmed
// to its retained tail.
func (h *historyWindow) Append(fragment string) {
	if h == nil || fragment == "" {
		return
	}
	h.entries = append(h.entries, fragment)
	if len(h.entries) > h.max {
		h.entries = append([]string(nil), h.entries[len(h.entries)-h.retain:]...)
	}
}

// Tail returns up to k of the most recent fragments, oldest first.
func (h *historyWindow) Tail(k int) []string {
	if h == nil || k <= 0 {
		return nil
	}
	if k > len(h.entries) {
		k = len(h.entries)
	}
	return append([]string(nil), h.entries[len(h.entries)-k:]...)
}

// Entries returns a copy of the window, oldest first.
func (h *historyWindow) Entries() []string {
	if h == nil {
		return nil
	}
	return append([]string(nil), h.entries...)
}

// Clear empties the window. Called when a command is executed or
// submitted so stale output cannot trigger analysis for it.
func (h *historyWindow) Clear() {
	h.entries = h.entries[:0]
}
