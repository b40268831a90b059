package voice

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionLocks(t *testing.T) {
	t.Run("serializes holders of the same id", func(t *testing.T) {
		var locks submissionLocks
		var mu sync.Mutex
		active, maxActive := 0, 0

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := locks.lock(7)
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				active--
				mu.Unlock()
				unlock()
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, maxActive)
	})

	t.Run("entries are dropped when the last holder unlocks", func(t *testing.T) {
		var locks submissionLocks

		unlockA := locks.lock(1)
		unlockB := locks.lock(2)
		locks.mu.Lock()
		assert.Len(t, locks.m, 2)
		locks.mu.Unlock()

		unlockA()
		locks.mu.Lock()
		assert.Len(t, locks.m, 1)
		locks.mu.Unlock()

		unlockB()
		locks.mu.Lock()
		assert.Empty(t, locks.m)
		locks.mu.Unlock()
	})
}
