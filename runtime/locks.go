package runtime

import (
	"sync"

	"github.com/vaultswap/vaultswap"
)

// lockTable grants read and write access to accounts. A transaction
// acquires all its accounts at once, so two transactions can never hold
// a part of each other's accounts and wait for the rest.
type lockTable struct {
	mu      sync.Mutex
	cond    *sync.Cond
	readers map[vaultswap.Address]int
	writers map[vaultswap.Address]bool
}

func newLockTable() *lockTable {
	t := &lockTable{
		readers: make(map[vaultswap.Address]int),
		writers: make(map[vaultswap.Address]bool),
	}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// acquire blocks until write access to all writes and read access to all
// reads can be granted. An address must not be present in both lists.
func (t *lockTable) acquire(writes, reads []vaultswap.Address) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for !t.available(writes, reads) {
		t.cond.Wait()
	}
	for _, a := range writes {
		t.writers[a] = true
	}
	for _, a := range reads {
		t.readers[a]++
	}
}

func (t *lockTable) available(writes, reads []vaultswap.Address) bool {
	for _, a := range writes {
		if t.writers[a] || t.readers[a] > 0 {
			return false
		}
	}
	for _, a := range reads {
		if t.writers[a] {
			return false
		}
	}
	return true
}

// release returns access granted by acquire.
func (t *lockTable) release(writes, reads []vaultswap.Address) {
	t.mu.Lock()
	for _, a := range writes {
		delete(t.writers, a)
	}
	for _, a := range reads {
		if t.readers[a] <= 1 {
			delete(t.readers, a)
		} else {
			t.readers[a]--
		}
	}
	t.mu.Unlock()
	t.cond.Broadcast()
}
