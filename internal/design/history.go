package design

// History is the linear undo/redo record: a single current state plus a
// bounded past stack and a future stack. The current state is never present
// in either stack. Undo moves one entry past -> future, redo the reverse,
// and any fresh mutation clears future entirely (no branching).
type History struct {
	current  State
	past     []State // oldest first, most recent last
	future   []State // next redo first
	maxDepth int
}

// DefaultHistoryDepth bounds past-stack memory for long sessions when the
// caller passes a non-positive depth.
const DefaultHistoryDepth = 100

// NewHistory creates a history rooted at the initial state.
func NewHistory(initial State, maxDepth int) *History {
	if maxDepth <= 0 {
		maxDepth = DefaultHistoryDepth
	}
	return &History{
		current:  initial,
		maxDepth: maxDepth,
	}
}

// Current returns the current state snapshot.
func (h *History) Current() State {
	return h.current
}

// Record commits a new current state: the previous current is pushed onto
// past (evicting the oldest entry beyond maxDepth) and future is cleared.
func (h *History) Record(state State) {
	h.past = append(h.past, h.current)
	if len(h.past) > h.maxDepth {
		h.past = h.past[len(h.past)-h.maxDepth:]
	}
	h.current = state
	h.future = h.future[:0]
}

// Undo steps back one entry. On an empty past stack it reports ok=false and
// changes nothing — an idempotent no-op, not an error.
func (h *History) Undo() (State, bool) {
	if len(h.past) == 0 {
		return h.current, false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append([]State{h.current}, h.future...)
	h.current = prev
	return h.current, true
}

// Redo steps forward one entry, symmetric to Undo.
func (h *History) Redo() (State, bool) {
	if len(h.future) == 0 {
		return h.current, false
	}
	next := h.future[0]
	h.future = h.future[1:]
	h.past = append(h.past, h.current)
	h.current = next
	return h.current, true
}

// CanUndo reports whether an undo step is available.
func (h *History) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether a redo step is available.
func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Depth returns the number of recorded past entries.
func (h *History) Depth() int { return len(h.past) }

// Reset clears both stacks and replaces the current state. Used only at
// session start.
func (h *History) Reset(initial State) {
	h.current = initial
	h.past = nil
	h.future = nil
}
