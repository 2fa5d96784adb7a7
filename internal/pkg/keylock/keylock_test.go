// Package keylock_test provides tests for per-key mutual exclusion.
package keylock_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/omnidesk/autoreply-service/internal/pkg/keylock"
)

// TestLock_SerializesSameKey tests that concurrent holders of one key never
// overlap: a shared counter incremented under the lock ends up exact.
func TestLock_SerializesSameKey(t *testing.T) {
	locks := keylock.New()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("conv-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

// TestLock_IndependentKeysDoNotBlock tests that holding one key leaves other
// keys acquirable.
func TestLock_IndependentKeysDoNotBlock(t *testing.T) {
	locks := keylock.New()

	unlockA := locks.Lock("conv-a")
	defer unlockA()

	acquired := make(chan struct{})
	go func() {
		unlockB := locks.Lock("conv-b")
		defer unlockB()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock on an independent key blocked")
	}
}

// TestLock_ReclaimsReleasedKeys tests that entries are dropped once the last
// holder releases, so the map does not grow with conversation churn.
func TestLock_ReclaimsReleasedKeys(t *testing.T) {
	locks := keylock.New()

	unlock1 := locks.Lock("conv-1")
	unlock2 := locks.Lock("conv-2")
	assert.Equal(t, 2, locks.Len())

	unlock1()
	assert.Equal(t, 1, locks.Len())

	unlock2()
	assert.Equal(t, 0, locks.Len())
}

// TestLock_UnlockIsIdempotent tests that calling the release function twice
// does not panic or corrupt the entry count.
func TestLock_UnlockIsIdempotent(t *testing.T) {
	locks := keylock.New()

	unlock := locks.Lock("conv-1")
	unlock()
	unlock()

	assert.Equal(t, 0, locks.Len())

	// The key is freshly acquirable afterwards.
	again := locks.Lock("conv-1")
	again()
}
