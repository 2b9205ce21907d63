package chat

import "sync"

// TurnLocks serializes turns per project. A second turn arriving while one is
// in flight is rejected outright instead of queued, so a client never waits
// behind an unbounded model call it did not start.
type TurnLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewTurnLocks() *TurnLocks {
	return &TurnLocks{held: make(map[string]struct{})}
}

// Acquire reports whether the project's turn slot was free and is now held.
func (l *TurnLocks) Acquire(projectID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[projectID]; ok {
		return false
	}
	l.held[projectID] = struct{}{}
	return true
}

func (l *TurnLocks) Release(projectID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, projectID)
}
