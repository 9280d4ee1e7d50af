package service

import (
	"context"
	"os"
	"time"

	"github.com/timmy/clueso/internal/domain"
	"github.com/timmy/clueso/internal/logger"
	"github.com/timmy/clueso/internal/repository"
	"github.com/timmy/clueso/internal/storage"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// ArchiveCounter reports how many jobs the archive holds.
type ArchiveCounter interface {
	Count(ctx context.Context, status domain.JobStatus) (int64, error)
}

// StatusService serves read-only job snapshots.
type StatusService struct {
	store     repository.JobStore
	storage   storage.ObjectStorage
	archive   ArchiveCounter
	publicURL string
	mode      string
	started   time.Time
}

// NewStatusService creates a status service. archive may be nil.
func NewStatusService(store repository.JobStore, objectStorage storage.ObjectStorage, archive ArchiveCounter, publicURL, generatorMode string) *StatusService {
	return &StatusService{
		store:     store,
		storage:   objectStorage,
		archive:   archive,
		publicURL: publicURL,
		mode:      generatorMode,
		started:   time.Now(),
	}
}

// Query returns the job's snapshot or domain.ErrNotFound. The direct video
// URL is set whatever the status.
func (s *StatusService) Query(ctx context.Context, id string) (domain.JobSnapshot, error) {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.JobSnapshot{}, err
	}
	return job.Snapshot(s.publicURL), nil
}

// List summarizes every job in creation order.
func (s *StatusService) List(ctx context.Context) []domain.JobSummary {
	jobs := s.store.List(ctx)
	out := make([]domain.JobSummary, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Summary(s.publicURL))
	}
	return out
}

// Health reports liveness and job counts.
func (s *StatusService) Health(ctx context.Context) domain.HealthReport {
	stats := s.store.Stats(ctx)
	report := domain.HealthReport{
		Status:        "healthy",
		Timestamp:     time.Now().UTC(),
		Version:       Version,
		Server:        "Clueso Backend",
		GeneratorMode: s.mode,
		Uptime:        time.Since(s.started).Round(time.Second).String(),
		Endpoints:     domain.Endpoints,
		Stats: domain.HealthStats{
			TotalJobs:     stats.Total,
			ActiveJobs:    stats.Processing,
			CompletedJobs: stats.Completed,
			FailedJobs:    stats.Failed,
			UploadsDir:    s.uploadsDir(),
		},
	}
	if s.archive != nil {
		n, err := s.archive.Count(ctx, "")
		if err != nil {
			logger.CtxWarn(ctx, "Failed to count archived jobs: %v", err)
		} else {
			report.Stats.ArchivedJobs = &n
		}
	}
	return report
}

func (s *StatusService) uploadsDir() string {
	local, ok := s.storage.(*storage.LocalStorage)
	if !ok {
		return "Remote"
	}
	if info, err := os.Stat(local.Root()); err == nil && info.IsDir() {
		return "Exists"
	}
	return "Missing"
}

// GeneratorMode returns the configured generator variant.
func (s *StatusService) GeneratorMode() string { return s.mode }
