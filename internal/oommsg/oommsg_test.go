package oommsg

import "testing"

func TestNotifyDeliversToListener(t *testing.T) {
	ch := NewCh()
	ready := make(chan struct{})
	done := make(chan Oommsg_t, 1)
	go func() {
		close(ready)
		done <- <-ch
	}()

	<-ready // listener is parked on ch; Notify must not drop this send
	Notify(ch, 4096)

	msg := <-done
	if msg.Need != 4096 {
		t.Errorf("Need = %d, want 4096", msg.Need)
	}
}

func TestNotifyWithoutListenerDoesNotBlock(t *testing.T) {
	ch := NewCh()
	// No reader at all; Notify must return immediately rather than block
	// forever on an unbuffered channel.
	Notify(ch, 128)
}
