package domain

import "time"

// JobStatus represents the lifecycle state of a tutorial job.
// A job starts in JobStatusProcessing and moves exactly once to
// JobStatusCompleted or JobStatusFailed.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether the status can no longer change.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// AI modes reported on a job.
const (
	AIModeSimulated         = "simulated"
	AIModeSimulatedEnhanced = "simulated_enhanced"
	AIModeOpenAI            = "openai"
)

// Video locates an uploaded recording in object storage.
type Video struct {
	Key          string // storage key, also the served filename
	URL          string // server-relative URL, e.g. /uploads/<key>
	OriginalName string
	Size         int64
	ContentType  string
}

// TemplateInfo describes the tutorial template a generator settled on.
type TemplateInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// GenerationResult is everything a generator produces for one video.
type GenerationResult struct {
	Steps          []Step
	Transcript     string
	EnhancedScript string
	Template       TemplateInfo
	AIMode         string
}

// Job is one uploaded video and its tutorial generation state.
// Steps, Transcript and Template are empty while the job is processing.
type Job struct {
	ID             string
	Status         JobStatus
	Video          Video
	Steps          []Step
	Transcript     string
	EnhancedScript string
	Template       TemplateInfo
	AIMode         string
	Error          string
	CreatedAt      time.Time
	CompletedAt    *time.Time
	ProcessingTime time.Duration
}

// Clone returns a deep copy so callers never share the store's slices.
func (j Job) Clone() Job {
	out := j
	if j.Steps != nil {
		out.Steps = make([]Step, len(j.Steps))
		copy(out.Steps, j.Steps)
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// JobStats counts jobs by status.
type JobStats struct {
	Total      int
	Processing int
	Completed  int
	Failed     int
}
