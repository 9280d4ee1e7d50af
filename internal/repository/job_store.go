package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/timmy/clueso/internal/domain"
)

// JobStore owns every job record and enforces the
// processing → completed | failed state machine.
type JobStore interface {
	Create(ctx context.Context, video domain.Video) (domain.Job, error)
	Get(ctx context.Context, id string) (domain.Job, error)
	Complete(ctx context.Context, id string, result domain.GenerationResult) (domain.Job, error)
	Fail(ctx context.Context, id string, reason string) (domain.Job, error)
	List(ctx context.Context) []domain.Job
	Stats(ctx context.Context) domain.JobStats
}

// MemoryJobStore keeps jobs in a map for the life of the process.
// Mutations build a whole new record and swap it in under the write lock,
// so a reader sees either the processing record or the terminal one.
type MemoryJobStore struct {
	mu    sync.RWMutex
	jobs  map[string]*domain.Job
	order []string
	now   func() time.Time
	newID func(time.Time) string
}

// NewMemoryJobStore creates an empty store.
// Returns:
//   - *MemoryJobStore: store using the wall clock and uuid-suffixed ids.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{
		jobs:  make(map[string]*domain.Job),
		now:   time.Now,
		newID: NewJobID,
	}
}

// NewJobID formats a job id as job_<unix millis>_<8 hex chars>.
func NewJobID(t time.Time) string {
	return fmt.Sprintf("job_%d_%s", t.UnixMilli(), uuid.NewString()[:8])
}

// Create inserts a processing job for video.
// Parameters:
//   - ctx: context for cancellation.
//   - video: locator of the stored upload.
//
// Returns:
//   - domain.Job: snapshot of the new record.
//   - error: non-nil only if ctx is done.
func (s *MemoryJobStore) Create(ctx context.Context, video domain.Video) (domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return domain.Job{}, err
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID(now)
	for _, taken := s.jobs[id]; taken; _, taken = s.jobs[id] {
		id = s.newID(now)
	}
	job := &domain.Job{
		ID:        id,
		Status:    domain.JobStatusProcessing,
		Video:     video,
		AIMode:    domain.AIModeSimulated,
		CreatedAt: now,
	}
	s.jobs[id] = job
	s.order = append(s.order, id)
	return job.Clone(), nil
}

// Get returns a snapshot of the job or domain.ErrNotFound.
func (s *MemoryJobStore) Get(ctx context.Context, id string) (domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return domain.Job{}, fmt.Errorf("get %s: %w", id, domain.ErrNotFound)
	}
	return job.Clone(), nil
}

// Complete moves a processing job to completed with the generated result.
// Parameters:
//   - ctx: unused; completion is never abandoned half way.
//   - id: job id.
//   - result: steps, transcript and template produced by the generator.
//
// Returns:
//   - domain.Job: the completed record.
//   - error: wraps domain.ErrInvalidTransition if the job is terminal or absent
//     (the latter also wraps domain.ErrNotFound).
func (s *MemoryJobStore) Complete(ctx context.Context, id string, result domain.GenerationResult) (domain.Job, error) {
	return s.transition(id, func(next *domain.Job, now time.Time) {
		next.Status = domain.JobStatusCompleted
		next.Steps = append([]domain.Step(nil), result.Steps...)
		next.Transcript = result.Transcript
		next.EnhancedScript = result.EnhancedScript
		next.Template = result.Template
		if result.AIMode != "" {
			next.AIMode = result.AIMode
		}
	})
}

// Fail moves a processing job to failed, recording reason.
func (s *MemoryJobStore) Fail(ctx context.Context, id string, reason string) (domain.Job, error) {
	return s.transition(id, func(next *domain.Job, now time.Time) {
		next.Status = domain.JobStatusFailed
		next.Error = reason
	})
}

func (s *MemoryJobStore) transition(id string, apply func(next *domain.Job, now time.Time)) (domain.Job, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.jobs[id]
	if !ok {
		return domain.Job{}, fmt.Errorf("transition %s: %w: %w", id, domain.ErrInvalidTransition, domain.ErrNotFound)
	}
	if cur.Status.IsTerminal() {
		return domain.Job{}, fmt.Errorf("transition %s from %s: %w", id, cur.Status, domain.ErrInvalidTransition)
	}

	next := cur.Clone()
	apply(&next, now)
	next.CompletedAt = &now
	next.ProcessingTime = now.Sub(cur.CreatedAt)
	s.jobs[id] = &next
	return next.Clone(), nil
}

// List returns snapshots of all jobs in creation order.
func (s *MemoryJobStore) List(ctx context.Context) []domain.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Job, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.jobs[id].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Stats counts jobs per status.
func (s *MemoryJobStore) Stats(ctx context.Context) domain.JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.JobStats{Total: len(s.jobs)}
	for _, job := range s.jobs {
		switch job.Status {
		case domain.JobStatusProcessing:
			stats.Processing++
		case domain.JobStatusCompleted:
			stats.Completed++
		case domain.JobStatusFailed:
			stats.Failed++
		}
	}
	return stats
}
