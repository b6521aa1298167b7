package nav

import (
	"errors"
	"fmt"
	"sync"

	"github.com/CodexForgeBR/testmate/internal/logging"
)

var (
	ErrNotGuided   = errors.New("levels are only available in guided mode")
	ErrInvalidMode = errors.New("invalid mode")
)

// Navigator owns the navigation state and keeps its Location in step.
type Navigator struct {
	mu    sync.Mutex
	state State
	sel   *Selection
	loc   *Location
}

// New starts a Navigator from the current fragment of loc. An unknown
// fragment yields the landing state without rewriting the fragment.
func New(loc *Location) *Navigator {
	n := &Navigator{sel: NewSelection(), loc: loc}
	n.state = n.decode(loc.Fragment())
	loc.Subscribe(func(s Snapshot) { n.HashChanged(s.Fragment) })
	return n
}

// State returns the current state.
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Selection returns the production sub-state.
func (n *Navigator) Selection() *Selection {
	return n.sel
}

// Location returns the address bar this navigator mirrors.
func (n *Navigator) Location() *Location {
	return n.loc
}

// SelectMode enters m at level none. Entering production resets the
// repository selection.
func (n *Navigator) SelectMode(m Mode) error {
	if m != ModeGuided && m != ModeProduction {
		return fmt.Errorf("%w: %q", ErrInvalidMode, m)
	}
	if m == ModeProduction {
		n.sel.Reset()
	}
	n.commit(State{Mode: m})
	return nil
}

// SelectLevel enters l. Only valid in guided mode.
func (n *Navigator) SelectLevel(l Level) error {
	if l != Level0 && l != Level1 {
		return fmt.Errorf("unknown level: %q", l)
	}
	n.mu.Lock()
	cur := n.state
	n.mu.Unlock()
	if cur.Mode != ModeGuided {
		return ErrNotGuided
	}
	n.commit(State{Mode: ModeGuided, Level: l})
	return nil
}

// Back leaves the current level, or the current mode when no level is set.
// It reports false at the landing state.
func (n *Navigator) Back() bool {
	n.mu.Lock()
	cur := n.state
	n.mu.Unlock()

	switch {
	case cur.Level != LevelNone:
		n.commit(State{Mode: cur.Mode})
	case cur.Mode != ModeNone:
		n.commit(Landing)
	default:
		return false
	}
	return true
}

// HashChanged applies an external fragment change. It never writes the
// fragment, and a fragment equal to the current state changes nothing.
func (n *Navigator) HashChanged(fragment string) {
	next := n.decode(fragment)
	n.mu.Lock()
	defer n.mu.Unlock()
	if next == n.state {
		return
	}
	logging.Debug(fmt.Sprintf("navigation: %q -> %q (external)", Encode(n.state), Encode(next)))
	n.state = next
}

// Logout returns to the landing state and clears the fragment and history.
func (n *Navigator) Logout() {
	n.sel.Reset()
	n.mu.Lock()
	n.state = Landing
	n.mu.Unlock()
	n.loc.Clear()
}

// commit sets the state and then writes the fragment. The lock is released
// before the write because the Location echoes it back through HashChanged.
func (n *Navigator) commit(next State) {
	next = next.normalized()
	n.mu.Lock()
	prev := n.state
	n.state = next
	n.mu.Unlock()
	if prev != next {
		logging.Debug(fmt.Sprintf("navigation: %q -> %q", Encode(prev), Encode(next)))
	}
	n.loc.Push(Encode(next))
}

func (n *Navigator) decode(fragment string) State {
	s, err := Decode(fragment)
	if err != nil {
		logging.Debug(fmt.Sprintf("navigation: %v, showing landing", err))
		return Landing
	}
	return s
}
