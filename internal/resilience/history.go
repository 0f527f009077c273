package resilience

import (
	"time"

	"dev.supermcp.debate/internal/models"
)

// callHistory is a bounded ring buffer of the most recent calls to one
// provider. Callers must hold the owning providerState lock.
type callHistory struct {
	calls []models.ModelCall
	next  int
	full  bool
}

func newCallHistory(size int) *callHistory {
	if size <= 0 {
		size = 1000
	}
	return &callHistory{calls: make([]models.ModelCall, size)}
}

func (h *callHistory) append(call models.ModelCall) {
	h.calls[h.next] = call
	h.next = (h.next + 1) % len(h.calls)
	if h.next == 0 {
		h.full = true
	}
}

// snapshot returns all recorded calls in chronological order.
func (h *callHistory) snapshot() []models.ModelCall {
	if !h.full {
		out := make([]models.ModelCall, h.next)
		copy(out, h.calls[:h.next])
		return out
	}
	out := make([]models.ModelCall, 0, len(h.calls))
	out = append(out, h.calls[h.next:]...)
	out = append(out, h.calls[:h.next]...)
	return out
}

// recent returns up to limit of the newest calls within the trailing window.
func (h *callHistory) recent(window time.Duration, limit int) []models.ModelCall {
	all := h.snapshot()
	cutoff := time.Now().Add(-window)

	inWindow := all[:0:0]
	for _, c := range all {
		if !c.Timestamp.Before(cutoff) {
			inWindow = append(inWindow, c)
		}
	}
	if limit > 0 && len(inWindow) > limit {
		inWindow = inWindow[len(inWindow)-limit:]
	}
	return inWindow
}

func (h *callHistory) len() int {
	if h.full {
		return len(h.calls)
	}
	return h.next
}
