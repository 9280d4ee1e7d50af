package domain

import "time"

// Endpoints lists the public routes, reported by /health and unknown routes.
var Endpoints = map[string]string{
	"upload":    "POST /api/upload",
	"jobStatus": "GET /api/job/:id",
	"testAI":    "GET /api/test-openai",
	"jobsList":  "GET /api/jobs",
	"health":    "GET /api/health",
	"videos":    "GET /uploads/:filename",
}

// HealthReport is the liveness payload.
type HealthReport struct {
	Status        string            `json:"status"`
	Timestamp     time.Time         `json:"timestamp"`
	Version       string            `json:"version"`
	Server        string            `json:"server"`
	GeneratorMode string            `json:"generatorMode"`
	Uptime        string            `json:"uptime"`
	Endpoints     map[string]string `json:"endpoints"`
	Stats         HealthStats       `json:"stats"`
}

// HealthStats counts jobs by status.
type HealthStats struct {
	TotalJobs     int    `json:"totalJobs"`
	ActiveJobs    int    `json:"activeJobs"`
	CompletedJobs int    `json:"completedJobs"`
	FailedJobs    int    `json:"failedJobs"`
	UploadsDir    string `json:"uploadsDir"`
	ArchivedJobs  *int64 `json:"archivedJobs,omitempty"`
}
