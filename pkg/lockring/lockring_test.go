package lockring

import (
	"sync"
	"testing"
)

func TestLockSerializesPerKey(t *testing.T) {
	ring := New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ring.Lock("acct-1")
			counter++
			ring.Unlock("acct-1")
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Fatalf("expected 100 increments, got %d", counter)
	}
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	ring := New()

	ring.Lock("a")
	defer ring.Unlock("a")

	done := make(chan struct{})
	go func() {
		ring.Lock("b")
		ring.Unlock("b")
		close(done)
	}()
	<-done
}

func TestLockAllOverlappingSetsNoDeadlock(t *testing.T) {
	ring := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := ring.LockAll([]string{"x", "y"})
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := ring.LockAll([]string{"y", "x"})
			unlock()
		}()
	}
	wg.Wait()
}

func TestLockAllDeduplicatesKeys(t *testing.T) {
	ring := New()

	// A duplicate key must be locked once, otherwise this self-deadlocks.
	unlock := ring.LockAll([]string{"k", "k", "k"})
	unlock()

	ring.Lock("k")
	ring.Unlock("k")
}
