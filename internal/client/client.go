// Package client talks to the tutorial API and polls job status.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/timmy/clueso/internal/domain"
)

// Client calls the tutorial API over HTTP.
type Client struct {
	http *resty.Client
}

// New creates a client for the server at baseURL, e.g. http://localhost:5000.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")+"/api").
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Body       domain.ErrorResponse
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("HTTP %d", e.StatusCode)
	if e.Body.Error != "" {
		msg += ": " + e.Body.Error
	}
	if e.Body.Details != "" {
		msg += " (" + e.Body.Details + ")"
	}
	return msg
}

// Unwrap maps 404 to domain.ErrNotFound.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return nil
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		if body, ok := resp.Error().(*domain.ErrorResponse); ok && body != nil {
			apiErr.Body = *body
		}
		return apiErr
	}
	return nil
}

// Upload sends the video file at path.
func (c *Client) Upload(ctx context.Context, path string) (domain.UploadResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.UploadResponse{}, err
	}
	defer f.Close()

	var out domain.UploadResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartField("video", filepath.Base(path), contentTypeFor(path), f).
		SetResult(&out).
		SetError(&domain.ErrorResponse{}).
		Post("/upload")
	if err := check(resp, err); err != nil {
		return domain.UploadResponse{}, fmt.Errorf("upload %s: %w", filepath.Base(path), err)
	}
	return out, nil
}

// Job fetches one job snapshot. Unknown ids wrap domain.ErrNotFound.
func (c *Client) Job(ctx context.Context, id string) (domain.JobSnapshot, error) {
	var out domain.JobSnapshot
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&out).
		SetError(&domain.ErrorResponse{}).
		Get("/job/{id}")
	if err := check(resp, err); err != nil {
		return domain.JobSnapshot{}, fmt.Errorf("get job %s: %w", id, err)
	}
	return out, nil
}

// Jobs lists every job on the server.
func (c *Client) Jobs(ctx context.Context) (domain.JobList, error) {
	var out domain.JobList
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&domain.ErrorResponse{}).
		Get("/jobs")
	if err := check(resp, err); err != nil {
		return domain.JobList{}, fmt.Errorf("list jobs: %w", err)
	}
	return out, nil
}

// Health fetches the server's health report.
func (c *Client) Health(ctx context.Context) (domain.HealthReport, error) {
	var out domain.HealthReport
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&domain.ErrorResponse{}).
		Get("/health")
	if err := check(resp, err); err != nil {
		return domain.HealthReport{}, fmt.Errorf("health: %w", err)
	}
	return out, nil
}

// IsNotFound reports whether err is an unknown-job error.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	case ".wmv":
		return "video/x-ms-wmv"
	case ".flv":
		return "video/x-flv"
	default:
		return "application/octet-stream"
	}
}
