package command

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_KeyedLocks_SameKeyIsExclusive(t *testing.T) {
	// arrange
	locks := newKeyedLocks()
	unlock, err := locks.lock(context.Background(), "a")
	require.NoError(t, err)

	acquired := make(chan struct{})

	// act
	go func() {
		secondUnlock, err := locks.lock(context.Background(), "a")
		if err == nil {
			close(acquired)
			secondUnlock()
		}
	}()

	// assert
	select {
	case <-acquired:
		t.Fatal("second lock on the same key was acquired while the first was held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock was not acquired after release")
	}
}

func Test_KeyedLocks_DifferentKeysDoNotBlock(t *testing.T) {
	// arrange
	locks := newKeyedLocks()
	unlockA, err := locks.lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// act
	unlockB, err := locks.lock(ctx, "b")

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, locks.size())
	unlockB()
	assert.Equal(t, 1, locks.size())
}

func Test_KeyedLocks_WaitingIsCanceledByContext(t *testing.T) {
	// arrange
	locks := newKeyedLocks()
	unlock, err := locks.lock(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// act
	_, err = locks.lock(ctx, "a")

	// assert
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	unlock()
	assert.Equal(t, 0, locks.size())
}

func Test_KeyedLocks_AreRemovedWhenUnused(t *testing.T) {
	// arrange
	locks := newKeyedLocks()
	var wg sync.WaitGroup

	// act
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locks.lock(context.Background(), "hot")
			if err != nil {
				return
			}
			unlock()
			unlock() // releasing twice is harmless
		}()
	}
	wg.Wait()

	// assert
	assert.Equal(t, 0, locks.size())
}
