package domain

import "time"

// FileInfo describes an accepted upload.
type FileInfo struct {
	Name string `json:"name"`
	Size string `json:"size"`
	Type string `json:"type"`
}

// UploadResponse is returned by a successful upload.
type UploadResponse struct {
	Success  bool     `json:"success"`
	JobID    string   `json:"jobId"`
	Message  string   `json:"message"`
	VideoURL string   `json:"videoUrl"`
	FileInfo FileInfo `json:"fileInfo"`
}

// JobList is the debugging job enumeration.
type JobList struct {
	Total int          `json:"total"`
	Jobs  []JobSummary `json:"jobs"`
}

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error              string            `json:"error"`
	Details            string            `json:"details,omitempty"`
	Tip                string            `json:"tip,omitempty"`
	AvailableEndpoints map[string]string `json:"availableEndpoints,omitempty"`
}

// GeneratorReport describes the configured generator without calling it.
type GeneratorReport struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Model     string    `json:"model"`
	Features  []string  `json:"features"`
	Server    string    `json:"server"`
	Timestamp time.Time `json:"timestamp"`
}
