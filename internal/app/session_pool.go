package app

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/example/rollcall/internal/ports/primary"
)

// SessionPool keeps one selected AttendanceServiceImpl per worker.
// Concurrent first requests for a worker share a single load.
type SessionPool struct {
	newService func() *AttendanceServiceImpl

	mu       sync.Mutex
	sessions map[string]*AttendanceServiceImpl
	loads    singleflight.Group
}

// NewSessionPool creates a pool that builds services with newService.
func NewSessionPool(newService func() *AttendanceServiceImpl) *SessionPool {
	return &SessionPool{
		newService: newService,
		sessions:   make(map[string]*AttendanceServiceImpl),
	}
}

var _ primary.SessionProvider = (*SessionPool)(nil)

// Session returns the worker's service, selecting the worker on first use.
func (p *SessionPool) Session(ctx context.Context, workerID string) (primary.AttendanceService, error) {
	p.mu.Lock()
	svc, ok := p.sessions[workerID]
	p.mu.Unlock()
	if ok {
		return svc, nil
	}

	v, err, _ := p.loads.Do(workerID, func() (interface{}, error) {
		p.mu.Lock()
		if existing, ok := p.sessions[workerID]; ok {
			p.mu.Unlock()
			return existing, nil
		}
		p.mu.Unlock()

		// The load is shared by every waiter, so one caller going away must not fail the rest.
		fresh := p.newService()
		if _, err := fresh.SelectWorker(context.WithoutCancel(ctx), workerID); err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.sessions[workerID] = fresh
		p.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*AttendanceServiceImpl), nil
}

// Refresh reloads the worker's scope, creating the session if needed.
func (p *SessionPool) Refresh(ctx context.Context, workerID string) (*primary.WorkerScope, error) {
	p.mu.Lock()
	svc, ok := p.sessions[workerID]
	p.mu.Unlock()
	if !ok {
		s, err := p.Session(ctx, workerID)
		if err != nil {
			return nil, err
		}
		svc = s.(*AttendanceServiceImpl)
	}
	return svc.SelectWorker(ctx, workerID)
}

// Len returns the number of loaded sessions.
func (p *SessionPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}
