package admissions

import "sync"

// lockTable serializes transitions per admission ID. Transitions on different
// admissions proceed fully in parallel; the version-stamped repository update
// still protects against concurrent writers in other processes.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{
		locks: make(map[string]*sync.Mutex),
	}
}

// acquire returns the mutex guarding the given admission ID, creating it on
// first use
func (lt *lockTable) acquire(id string) *sync.Mutex {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	lock, ok := lt.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		lt.locks[id] = lock
	}
	return lock
}
