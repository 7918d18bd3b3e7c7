package queue

// Direction selects which way Advance moves through the available sequence.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Navigator maintains the current queue position over a Store's available
// sequence. All position state lives in the Store so the two stay coherent
// under one lock, but only the Navigator mutates it.
type Navigator struct {
	s *Store
}

// NewNavigator creates a navigator over the given store.
func NewNavigator(s *Store) *Navigator {
	return &Navigator{s: s}
}

// Current returns the id the user is looking at. ok is false once the
// queue is exhausted.
func (n *Navigator) Current() (int, bool) {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	if !n.s.hasCurrent {
		return 0, false
	}
	return n.s.current, true
}

// Advance moves current to the adjacent id in the available sequence.
// At either boundary it is a no-op; the boolean result tells callers
// whether the position moved, so navigation controls can be disabled.
func (n *Navigator) Advance(dir Direction) bool {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if !n.s.hasCurrent {
		return false
	}
	idx := n.s.indexOfLocked(n.s.current)
	if idx < 0 {
		return false
	}
	switch dir {
	case Forward:
		if idx+1 >= len(n.s.available) {
			return false
		}
		n.s.current = n.s.available[idx+1]
	case Backward:
		if idx == 0 {
			return false
		}
		n.s.current = n.s.available[idx-1]
	default:
		return false
	}
	return true
}

// JumpTo sets current directly to an available id (explicit navigation,
// e.g. picking a prospect from a list).
func (n *Navigator) JumpTo(id int) bool {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if n.s.indexOfLocked(id) < 0 {
		return false
	}
	n.s.current = id
	n.s.hasCurrent = true
	return true
}

// OnRemoved recomputes current after an id left the available sequence
// (sent or deleted). If the removed id was current, the new current is the
// id that slid into its slot; when that slot no longer exists, the last
// remaining id; when the sequence is empty, none. The slide-into-slot
// tie-break decides which prospect the user sees right after a send.
func (n *Navigator) OnRemoved(id int) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if !n.s.hasCurrent || n.s.current != id {
		return
	}
	avail := n.s.available
	if len(avail) == 0 {
		n.s.hasCurrent = false
		return
	}
	slot := n.s.slotOfLocked(id)
	if slot >= len(avail) {
		slot = len(avail) - 1
	}
	n.s.current = avail[slot]
}

// Progress reports the 1-based position of current within the available
// sequence and the sequence length, for the page counter.
func (n *Navigator) Progress() (pos, total int) {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	total = len(n.s.available)
	if !n.s.hasCurrent {
		return 0, total
	}
	if idx := n.s.indexOfLocked(n.s.current); idx >= 0 {
		pos = idx + 1
	}
	return pos, total
}
