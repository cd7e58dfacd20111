package reconcile

import (
	"sort"

	"alternator-reqgen/internal/models"
)

// History maps operation -> serialized body -> raw reference response.
type History struct {
	entries map[string]map[string]string
}

func NewHistory() *History {
	return &History{entries: make(map[string]map[string]string)}
}

// HistoryFrom wraps an existing mapping. Nil inner maps are allowed.
func HistoryFrom(entries map[string]map[string]string) *History {
	h := NewHistory()
	for op, bodies := range entries {
		for body, resp := range bodies {
			h.Put(op, body, resp)
		}
	}
	return h
}

func (h *History) Lookup(operation, body string) (string, bool) {
	resp, ok := h.entries[operation][body]
	return resp, ok
}

// Put records resp for (operation, body), replacing any earlier response.
func (h *History) Put(operation, body, resp string) {
	bodies, ok := h.entries[operation]
	if !ok {
		bodies = make(map[string]string)
		h.entries[operation] = bodies
	}
	bodies[body] = resp
}

// Merge folds reference replies into the history and returns how many
// records were applied. Later records win.
func (h *History) Merge(replies []models.ResolvedCase) int {
	for _, r := range replies {
		h.Put(r.Request, r.Body, r.Reference)
	}
	return len(replies)
}

// MergeHistory folds other into h, other winning on conflicts.
func (h *History) MergeHistory(other *History) int {
	n := 0
	for op, bodies := range other.entries {
		for body, resp := range bodies {
			h.Put(op, body, resp)
			n++
		}
	}
	return n
}

// Operations returns the recorded operations in name order.
func (h *History) Operations() []string {
	ops := make([]string, 0, len(h.entries))
	for op := range h.entries {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Bodies returns the recorded bodies of operation in sorted order.
func (h *History) Bodies(operation string) []string {
	bodies := make([]string, 0, len(h.entries[operation]))
	for b := range h.entries[operation] {
		bodies = append(bodies, b)
	}
	sort.Strings(bodies)
	return bodies
}

// Len is the total number of recorded responses.
func (h *History) Len() int {
	n := 0
	for _, bodies := range h.entries {
		n += len(bodies)
	}
	return n
}

// Map returns a copy of the underlying mapping.
func (h *History) Map() map[string]map[string]string {
	out := make(map[string]map[string]string, len(h.entries))
	for op, bodies := range h.entries {
		cp := make(map[string]string, len(bodies))
		for b, r := range bodies {
			cp[b] = r
		}
		out[op] = cp
	}
	return out
}
