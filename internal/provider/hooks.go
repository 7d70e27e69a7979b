package provider

import (
	"maps"
	"slices"
	"sync"
)

// Hooks is a set of change callbacks keyed by Token. Providers embed one per
// event kind. The zero value is ready to use.
type Hooks struct {
	mu   sync.Mutex
	next Token
	fns  map[Token]func()
}

// Add registers fn and returns its token.
func (h *Hooks) Add(fn func()) Token {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fns == nil {
		h.fns = make(map[Token]func())
	}
	h.next++
	h.fns[h.next] = fn
	return h.next
}

// Remove unregisters the callback for t. Unknown tokens are ignored.
func (h *Hooks) Remove(t Token) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.fns, t)
}

// Len returns the number of registered callbacks.
func (h *Hooks) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.fns)
}

// Fire invokes every registered callback on the calling goroutine, in
// registration order. The lock is not held while callbacks run, so they may
// add or remove hooks.
func (h *Hooks) Fire() {
	h.mu.Lock()
	tokens := slices.Sorted(maps.Keys(h.fns))
	fns := make([]func(), 0, len(tokens))
	for _, t := range tokens {
		fns = append(fns, h.fns[t])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
