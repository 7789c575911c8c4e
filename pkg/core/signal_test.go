package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignalKeepsOnePermit(t *testing.T) {
	s := NewSignal()
	require.False(t, s.Pending())

	s.Notify()
	s.Notify() // no-op, slot already taken
	require.True(t, s.Pending())

	select {
	case <-s.C():
	default:
		t.Fatal("notification lost")
	}

	select {
	case <-s.C():
		t.Fatal("second notification must not be queued")
	default:
	}
}

func TestSignalWakesWaiter(t *testing.T) {
	s := NewSignal()
	done := make(chan struct{})

	go func() {
		<-s.C()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	s.Notify()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter not woken")
	}
}
