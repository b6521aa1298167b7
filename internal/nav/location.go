package nav

import (
	"slices"
	"sync"
)

// MaxHistory bounds each of the back and forward stacks. The oldest entries
// are dropped first.
const MaxHistory = 50

// Snapshot is the observable content of a Location.
type Snapshot struct {
	Fragment string
	Back     []string
	Forward  []string
}

// Location is an address bar: the current fragment plus back/forward
// history. Listeners hear every change, including the application's own
// writes, the way a hashchange event fires for both.
type Location struct {
	mu        sync.Mutex
	fragment  string
	back      []string
	forward   []string
	writes    int
	listeners []func(Snapshot)
}

// NewLocation starts at fragment with empty history.
func NewLocation(fragment string) *Location {
	return &Location{fragment: fragment}
}

// RestoreLocation rebuilds a Location from persisted state.
func RestoreLocation(s Snapshot) *Location {
	return &Location{
		fragment: s.Fragment,
		back:     capHistory(slices.Clone(s.Back)),
		forward:  capHistory(slices.Clone(s.Forward)),
	}
}

// Subscribe registers fn for every subsequent change.
func (l *Location) Subscribe(fn func(Snapshot)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Fragment returns the current fragment.
func (l *Location) Fragment() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fragment
}

// Writes counts application writes made through Push.
func (l *Location) Writes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writes
}

// Snapshot returns a copy of the current state.
func (l *Location) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Location) snapshotLocked() Snapshot {
	return Snapshot{
		Fragment: l.fragment,
		Back:     append([]string(nil), l.back...),
		Forward:  append([]string(nil), l.forward...),
	}
}

// Push is an application write. Writing the current fragment is a no-op and
// reports false.
func (l *Location) Push(fragment string) bool {
	l.mu.Lock()
	if fragment == l.fragment {
		l.mu.Unlock()
		return false
	}
	l.writes++
	l.moveLocked(fragment)
	l.notifyUnlock()
	return true
}

// Visit is an external jump to fragment, like typing into the address bar.
func (l *Location) Visit(fragment string) bool {
	l.mu.Lock()
	if fragment == l.fragment {
		l.mu.Unlock()
		return false
	}
	l.moveLocked(fragment)
	l.notifyUnlock()
	return true
}

// Back moves one entry back in history. It reports false at the oldest entry.
func (l *Location) Back() bool {
	l.mu.Lock()
	if len(l.back) == 0 {
		l.mu.Unlock()
		return false
	}
	l.forward = capHistory(append(l.forward, l.fragment))
	l.fragment = l.back[len(l.back)-1]
	l.back = l.back[:len(l.back)-1]
	l.notifyUnlock()
	return true
}

// Forward undoes one Back. It reports false at the newest entry.
func (l *Location) Forward() bool {
	l.mu.Lock()
	if len(l.forward) == 0 {
		l.mu.Unlock()
		return false
	}
	l.back = capHistory(append(l.back, l.fragment))
	l.fragment = l.forward[len(l.forward)-1]
	l.forward = l.forward[:len(l.forward)-1]
	l.notifyUnlock()
	return true
}

// Clear empties the fragment and drops all history.
func (l *Location) Clear() {
	l.mu.Lock()
	if l.fragment != "" {
		l.writes++
	}
	l.fragment = ""
	l.back = nil
	l.forward = nil
	l.notifyUnlock()
}

func (l *Location) moveLocked(fragment string) {
	l.back = capHistory(append(l.back, l.fragment))
	l.forward = nil
	l.fragment = fragment
}

// notifyUnlock releases l.mu and then calls listeners, so a listener may
// call back into the Location.
func (l *Location) notifyUnlock() {
	snap := l.snapshotLocked()
	listeners := slices.Clone(l.listeners)
	l.mu.Unlock()
	for _, fn := range listeners {
		fn(snap)
	}
}

func capHistory(h []string) []string {
	if n := len(h) - MaxHistory; n > 0 {
		return slices.Delete(h, 0, n)
	}
	return h
}
