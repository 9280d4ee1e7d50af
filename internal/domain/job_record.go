package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StepList stores a job's steps as JSON in the archive.
type StepList []StepSnapshot

// Value implements the driver.Valuer interface for database serialization.
func (l StepList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (l *StepList) Scan(value interface{}) error {
	if value == nil {
		*l = StepList{}
		return nil
	}
	raw, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StepList")
		}
		raw = []byte(str)
	}
	return json.Unmarshal(raw, l)
}

// JobRecord is the archived form of a terminal job.
// The archive is write-only at runtime; the in-memory store is never
// rebuilt from it.
type JobRecord struct {
	ID               string     `gorm:"type:text;primaryKey" json:"id"`
	Status           JobStatus  `gorm:"type:text;index:idx_job_records_status" json:"status"`
	VideoKey         string     `gorm:"type:text" json:"video_key"`
	OriginalName     string     `gorm:"type:text" json:"original_name"`
	FileSize         int64      `json:"file_size"`
	TemplateID       string     `gorm:"type:text" json:"template_id"`
	TemplateTitle    string     `gorm:"type:text" json:"template_title"`
	AIMode           string     `gorm:"type:text" json:"ai_mode"`
	Steps            StepList   `gorm:"type:text" json:"steps"`
	Transcript       string     `gorm:"type:text" json:"transcript"`
	ErrorLog         string     `json:"error_log,omitempty"`
	ProcessingTimeMs int64      `json:"processing_time_ms"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// TableName returns the database table name for JobRecord.
func (JobRecord) TableName() string {
	return "job_records"
}

// NewJobRecord flattens a terminal job for archiving.
func NewJobRecord(j Job) *JobRecord {
	snap := j.Snapshot("")
	return &JobRecord{
		ID:               j.ID,
		Status:           j.Status,
		VideoKey:         j.Video.Key,
		OriginalName:     j.Video.OriginalName,
		FileSize:         j.Video.Size,
		TemplateID:       j.Template.ID,
		TemplateTitle:    j.Template.Title,
		AIMode:           j.AIMode,
		Steps:            StepList(snap.Steps),
		Transcript:       j.Transcript,
		ErrorLog:         j.Error,
		ProcessingTimeMs: j.ProcessingTime.Milliseconds(),
		CreatedAt:        j.CreatedAt,
		CompletedAt:      snap.CompletedAt,
	}
}
