package domain

import (
	"fmt"
	"strings"
	"time"
)

// StepSnapshot is the wire form of a Step.
type StepSnapshot struct {
	ID            int    `json:"id"`
	StepNumber    int    `json:"stepNumber"`
	Timestamp     string `json:"timestamp"`
	Text          string `json:"text"`
	Screenshot    string `json:"screenshot"`
	Thumbnail     string `json:"thumbnail"`
	Color         string `json:"color,omitempty"`
	Type          string `json:"type"`
	Duration      string `json:"duration"`
	EstimatedTime string `json:"estimatedTime,omitempty"`
}

// JobSnapshot is an immutable read of a job returned to pollers.
// It is either fully pending or fully populated, never in between.
type JobSnapshot struct {
	ID                  string         `json:"id"`
	Status              JobStatus      `json:"status"`
	VideoURL            string         `json:"videoUrl"`
	DirectVideoURL      string         `json:"directVideoUrl"`
	VideoFilename       string         `json:"videoFilename"`
	OriginalName        string         `json:"originalName"`
	FileSize            string         `json:"fileSize"`
	Steps               []StepSnapshot `json:"steps"`
	Transcript          string         `json:"transcript"`
	EnhancedScript      string         `json:"enhancedScript"`
	TemplateID          string         `json:"templateId,omitempty"`
	TemplateTitle       string         `json:"templateTitle,omitempty"`
	TemplateCategory    string         `json:"templateCategory,omitempty"`
	TemplateDescription string         `json:"templateDescription,omitempty"`
	TotalSteps          int            `json:"totalSteps"`
	CreatedAt           time.Time      `json:"createdAt"`
	CompletedAt         *time.Time     `json:"completedAt,omitempty"`
	ProcessingTime      int64          `json:"processingTime,omitempty"` // milliseconds
	AIMode              string         `json:"aiMode"`
	Error               string         `json:"error,omitempty"`
}

// JobSummary is one row of the debugging job listing.
type JobSummary struct {
	ID         string    `json:"id"`
	Status     JobStatus `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	VideoName  string    `json:"videoName"`
	StepsCount int       `json:"stepsCount"`
	VideoURL   string    `json:"videoUrl"`
}

// Snapshot renders the job for clients. publicURL prefixes the video URL so
// a player can start buffering before generation finishes.
func (j Job) Snapshot(publicURL string) JobSnapshot {
	snap := JobSnapshot{
		ID:                  j.ID,
		Status:              j.Status,
		VideoURL:            j.Video.URL,
		DirectVideoURL:      DirectURL(publicURL, j.Video.URL),
		VideoFilename:       j.Video.Key,
		OriginalName:        j.Video.OriginalName,
		FileSize:            FormatMegabytes(j.Video.Size),
		Steps:               make([]StepSnapshot, 0, len(j.Steps)),
		Transcript:          j.Transcript,
		EnhancedScript:      j.EnhancedScript,
		TemplateID:          j.Template.ID,
		TemplateTitle:       j.Template.Title,
		TemplateCategory:    j.Template.Category,
		TemplateDescription: j.Template.Description,
		TotalSteps:          len(j.Steps),
		CreatedAt:           j.CreatedAt,
		AIMode:              j.AIMode,
		Error:               j.Error,
	}
	for _, s := range j.Steps {
		snap.Steps = append(snap.Steps, StepSnapshot{
			ID:            s.Number,
			StepNumber:    s.Number,
			Timestamp:     s.Timestamp,
			Text:          s.Text,
			Screenshot:    s.Screenshot,
			Thumbnail:     s.Thumbnail,
			Color:         s.Color,
			Type:          s.Type,
			Duration:      s.Duration.String(),
			EstimatedTime: s.Timestamp,
		})
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		snap.CompletedAt = &t
		snap.ProcessingTime = j.ProcessingTime.Milliseconds()
	}
	return snap
}

// Summary renders the job as a listing row.
func (j Job) Summary(publicURL string) JobSummary {
	return JobSummary{
		ID:         j.ID,
		Status:     j.Status,
		CreatedAt:  j.CreatedAt,
		VideoName:  j.Video.OriginalName,
		StepsCount: len(j.Steps),
		VideoURL:   DirectURL(publicURL, j.Video.URL),
	}
}

// DirectURL joins a public base URL and a server-relative path.
func DirectURL(publicURL, path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(publicURL, "/") + path
}

// FormatMegabytes renders a byte count the way the upload response does, e.g. "12.34 MB".
func FormatMegabytes(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
}
