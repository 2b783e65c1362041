package ingester

import (
	"sync"
	"sync/atomic"
)

// ProjectLocks hands out one non-blocking lock per project name.
type ProjectLocks struct {
	mu    sync.Mutex
	locks map[string]*projectLock
}

type projectLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// NewProjectLocks creates an empty lock table.
func NewProjectLocks() *ProjectLocks {
	return &ProjectLocks{locks: make(map[string]*projectLock)}
}

func (p *ProjectLocks) lock(project string) *projectLock {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[project]
	if !ok {
		l = &projectLock{}
		p.locks[project] = l
	}
	return l
}

// TryAcquire attempts to take the project's lock without blocking.
// On success the returned release func must be called exactly once.
func (p *ProjectLocks) TryAcquire(project string) (release func(), ok bool) {
	l := p.lock(project)
	if !l.state.CompareAndSwap(0, 1) {
		return nil, false
	}
	var once sync.Once
	return func() { once.Do(func() { l.state.Store(0) }) }, true
}

// Held reports whether the project's lock is currently taken.
func (p *ProjectLocks) Held(project string) bool {
	return p.lock(project).state.Load() == 1
}
