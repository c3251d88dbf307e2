package app

import "sync"

// cellLocks serialises writes per (worker, day, project) triple. A second
// write to a triple waits until the first has committed or rolled back;
// writes to different triples do not block each other.
type cellLocks struct {
	mu    sync.Mutex
	locks map[string]*cellLock
}

type cellLock struct {
	mu      sync.Mutex
	waiters int
}

func newCellLocks() *cellLocks {
	return &cellLocks{locks: make(map[string]*cellLock)}
}

// lock blocks until the triple is free and returns its release func.
func (c *cellLocks) lock(workerID, day, projectID string) func() {
	key := workerID + "|" + day + "|" + projectID

	c.mu.Lock()
	l, ok := c.locks[key]
	if !ok {
		l = &cellLock{}
		c.locks[key] = l
	}
	l.waiters++
	c.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		c.mu.Lock()
		l.waiters--
		if l.waiters == 0 {
			delete(c.locks, key)
		}
		c.mu.Unlock()
	}
}
