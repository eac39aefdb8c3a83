package jobs

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dharmasatrya/flightscan/internal/models"
)

type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*atomic.Pointer[models.SearchJob]

	retention time.Duration
	now       func() time.Time
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

// NewMemoryStore evicts finished jobs retention after they finish. A
// retention of zero keeps them for the life of the process.
func NewMemoryStore(retention time.Duration) *MemoryStore {
	s := &MemoryStore{
		jobs:      make(map[string]*atomic.Pointer[models.SearchJob]),
		retention: retention,
		now:       time.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	if retention > 0 {
		go s.janitor(min(retention, time.Minute))
	} else {
		close(s.done)
	}
	return s
}

func (s *MemoryStore) Create(ctx context.Context, job *models.SearchJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return ErrJobExists
	}
	p := new(atomic.Pointer[models.SearchJob])
	p.Store(job.Clone())
	s.jobs[job.ID] = p
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.SearchJob, error) {
	p, ok := s.lookup(id)
	if !ok {
		return nil, ErrJobNotFound
	}
	return p.Load().Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*models.SearchJob)) error {
	p, ok := s.lookup(id)
	if !ok {
		return ErrJobNotFound
	}
	for {
		cur := p.Load()
		next := cur.Clone()
		fn(next)
		if p.CompareAndSwap(cur, next) {
			return nil
		}
	}
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.jobs, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Sweep drops finished jobs older than the retention period and returns how
// many were removed.
func (s *MemoryStore) Sweep() int {
	if s.retention <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, p := range s.jobs {
		job := p.Load()
		if job.Status.Terminal() && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) lookup(id string) (*atomic.Pointer[models.SearchJob], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.jobs[id]
	return p, ok
}

func (s *MemoryStore) janitor(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}
