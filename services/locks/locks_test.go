package locks

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObtainReturnsSameMutexPerRoom(t *testing.T) {
	r := NewRegistry()

	assert.Same(t, r.Obtain("room1"), r.Obtain("room1"))
	assert.NotSame(t, r.Obtain("room1"), r.Obtain("room2"))
}

func TestForgetDropsMutex(t *testing.T) {
	r := NewRegistry()

	before := r.Obtain("room1")
	r.Forget("room1")
	assert.NotSame(t, before, r.Obtain("room1"))
}

func TestObtainIsSafeConcurrently(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	locks := make([]*sync.Mutex, 32)
	for i := range locks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			locks[i] = r.Obtain("room1")
		}(i)
	}
	wg.Wait()

	for _, l := range locks[1:] {
		assert.Same(t, locks[0], l)
	}
}
