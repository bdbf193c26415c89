package portal

import "sync"

// stageLocks hands out one RWMutex per stage so writes to a stage exclude
// reads of the same stage while different stages proceed independently.
type stageLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func newStageLocks() *stageLocks {
	return &stageLocks{locks: make(map[string]*sync.RWMutex)}
}

func (l *stageLocks) get(stageID string) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[stageID]
	if !ok {
		m = &sync.RWMutex{}
		l.locks[stageID] = m
	}
	return m
}

func (l *stageLocks) forget(stageID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, stageID)
}
