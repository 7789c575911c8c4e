package core

// Signal is a one-slot notification:
// - Notify never blocks
// - a Notify without a waiter is kept until someone reads C
// - a second Notify before the first one is observed is a no-op
type Signal struct {
	ch chan struct{}
}

func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

func (s *Signal) Notify() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// C returns channel for select statement, wakes at most one waiter
func (s *Signal) C() <-chan struct{} {
	return s.ch
}

// Pending reports whether a notification is waiting to be observed
func (s *Signal) Pending() bool {
	return len(s.ch) > 0
}
