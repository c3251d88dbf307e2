package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/example/rollcall/internal/ports/secondary"
)

func newTestSessionPool(t *testing.T) (*SessionPool, *attendanceFixture) {
	t.Helper()
	f := newTestAttendanceService(t)
	projects := newMockProjectRepository()
	pool := NewSessionPool(func() *AttendanceServiceImpl {
		return NewAttendanceService(f.workers, projects, f.assignments, f.store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})
	return pool, f
}

func TestSessionPool_ReusesSession(t *testing.T) {
	pool, _ := newTestSessionPool(t)
	ctx := context.Background()

	first, err := pool.Session(ctx, "W1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := pool.Session(ctx, "W1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first != second {
		t.Error("expected the same session for the same worker")
	}

	other, err := pool.Session(ctx, "W2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if other == first {
		t.Error("expected a separate session per worker")
	}
	if pool.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", pool.Len())
	}
}

func TestSessionPool_UnknownWorkerNotCached(t *testing.T) {
	pool, _ := newTestSessionPool(t)

	_, err := pool.Session(context.Background(), "W404")
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if pool.Len() != 0 {
		t.Errorf("expected no cached session, got %d", pool.Len())
	}
}

func TestSessionPool_ConcurrentFirstUse(t *testing.T) {
	pool, _ := newTestSessionPool(t)

	var wg sync.WaitGroup
	sessions := make([]interface{}, 10)
	for i := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := pool.Session(context.Background(), "W1")
			if err != nil {
				t.Errorf("session %d: %v", i, err)
				return
			}
			sessions[i] = s
		}()
	}
	wg.Wait()

	for i := 1; i < len(sessions); i++ {
		if sessions[i] != sessions[0] {
			t.Fatal("expected every caller to share one session")
		}
	}
}

func TestSessionPool_RefreshSeesNewRows(t *testing.T) {
	pool, f := newTestSessionPool(t)
	ctx := context.Background()

	if _, err := pool.Session(ctx, "W1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	f.store.seed(&secondary.AttendanceRecord{ID: "ATT-900", WorkerID: "W1", ProjectID: "P1", Date: "2025-01-10", Status: "present"})

	scope, err := pool.Refresh(ctx, "W1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if scope.Records != 1 {
		t.Errorf("expected 1 record after refresh, got %d", scope.Records)
	}
}

// blockingWorkerRepository holds GetByID until released or the caller's context ends.
type blockingWorkerRepository struct {
	secondary.WorkerRepository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingWorkerRepository) GetByID(ctx context.Context, id string) (*secondary.WorkerRecord, error) {
	b.once.Do(func() { close(b.entered) })
	select {
	case <-b.release:
		return b.WorkerRepository.GetByID(ctx, id)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestSessionPool_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	f := newTestAttendanceService(t)
	workers := &blockingWorkerRepository{
		WorkerRepository: f.workers,
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	pool := NewSessionPool(func() *AttendanceServiceImpl {
		return NewAttendanceService(workers, newMockProjectRepository(), f.assignments, f.store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := pool.Session(firstCtx, "W1")
		firstErr <- err
	}()
	<-workers.entered

	secondErr := make(chan error, 1)
	go func() {
		_, err := pool.Session(context.Background(), "W1")
		secondErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	close(workers.release)

	if err := <-secondErr; err != nil {
		t.Fatalf("expected the waiting caller to get a session, got %v", err)
	}
	<-firstErr
	if pool.Len() != 1 {
		t.Errorf("expected the shared load to be cached, got %d sessions", pool.Len())
	}
}
