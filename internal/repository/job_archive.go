package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/timmy/clueso/internal/domain"
)

// JobArchive records terminal jobs for later auditing. It is never read on
// startup; the in-memory store stays the source of truth.
type JobArchive struct {
	db *gorm.DB
}

// NewJobArchive creates a new JobArchive.
// Parameters:
//   - db: GORM database handle with job_records migrated.
//
// Returns:
//   - *JobArchive: archive bound to db.
func NewJobArchive(db *gorm.DB) *JobArchive {
	return &JobArchive{db: db}
}

// Save upserts the archived copy of a terminal job.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - job: terminal job to archive.
//
// Returns:
//   - error: non-nil if the job is still processing or the write fails.
func (a *JobArchive) Save(ctx context.Context, job domain.Job) error {
	if !job.Status.IsTerminal() {
		return errors.New("only terminal jobs are archived")
	}
	return a.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).
		Create(domain.NewJobRecord(job)).Error
}

// Count returns the number of archived jobs with the given status; an
// empty status counts all.
func (a *JobArchive) Count(ctx context.Context, status domain.JobStatus) (int64, error) {
	var n int64
	q := a.db.WithContext(ctx).Model(&domain.JobRecord{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&n).Error
	return n, err
}

// Close releases the underlying connection pool.
func (a *JobArchive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
