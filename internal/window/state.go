package window

import "time"

// now is swapped in tests.
var now = time.Now

// State is the mutable UI state kept for one window.
type State struct {
	Selected bool
	pinnedAt time.Time
}

// Pin records the current time as the pin timestamp, replacing any earlier one.
func (s *State) Pin() {
	s.pinnedAt = now()
}

// Unpin clears the pin timestamp. It is a no-op on an unpinned state.
func (s *State) Unpin() {
	s.pinnedAt = time.Time{}
}

// PinnedAt returns the pin timestamp and whether the window is pinned.
func (s *State) PinnedAt() (time.Time, bool) {
	return s.pinnedAt, !s.pinnedAt.IsZero()
}

func (s *State) SetSelected(selected bool) {
	s.Selected = selected
}

func (s *State) Pinned() bool {
	return !s.pinnedAt.IsZero()
}

// Store maps window identity to UI state. It is not safe for concurrent use:
// exactly one consumer goroutine owns it.
type Store struct {
	states map[Handle]*State
}

func NewStore() *Store {
	return &Store{states: make(map[Handle]*State)}
}

// GetOrCreate returns the state for w, inserting a default one on first use.
// Windows with equal identity share the same *State.
func (s *Store) GetOrCreate(w Window) *State {
	if st, ok := s.states[w.Key()]; ok {
		return st
	}
	st := &State{}
	s.states[w.Key()] = st
	return st
}

// Lookup returns the state for h without inserting one.
func (s *Store) Lookup(h Handle) (*State, bool) {
	st, ok := s.states[h]
	return st, ok
}

// Purge drops every entry whose window is not in live. Surviving entries keep
// their state untouched.
func (s *Store) Purge(live []Window) {
	keep := Handles(live)
	for h := range s.states {
		if _, ok := keep[h]; !ok {
			delete(s.states, h)
		}
	}
}

func (s *Store) Len() int {
	return len(s.states)
}

// Keys returns the handles currently tracked, in no particular order.
func (s *Store) Keys() []Handle {
	out := make([]Handle, 0, len(s.states))
	for h := range s.states {
		out = append(out, h)
	}
	return out
}
