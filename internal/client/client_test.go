package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/clueso/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClientJobAndNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/job/job_1":
			writeJSON(w, http.StatusOK, domain.JobSnapshot{ID: "job_1", Status: domain.JobStatusCompleted, TotalSteps: 8})
		default:
			writeJSON(w, http.StatusNotFound, domain.ErrorResponse{Error: "Job not found"})
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second)

	snap, err := c.Job(context.Background(), "job_1")
	require.NoError(t, err)
	assert.Equal(t, 8, snap.TotalSteps)

	_, err = c.Job(context.Background(), "job_2")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Job not found", apiErr.Body.Error)
}

func TestClientUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload", r.URL.Path)
		file, header, err := r.FormFile("video")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		body, _ := io.ReadAll(file)
		assert.Equal(t, "demo.mp4", header.Filename)
		assert.Equal(t, "video/mp4", header.Header.Get("Content-Type"))
		assert.Equal(t, "frames", string(body))
		writeJSON(w, http.StatusOK, domain.UploadResponse{Success: true, JobID: "job_9", VideoURL: "/uploads/1-demo.mp4"})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "demo.mp4")
	require.NoError(t, os.WriteFile(path, []byte("frames"), 0o644))

	resp, err := New(srv.URL, time.Second).Upload(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "job_9", resp.JobID)
}

func TestClientUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: "Upload failed", Details: "Only video files are allowed!", Tip: domain.UploadTip})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := New(srv.URL, time.Second).Upload(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Only video files are allowed!")
}

// scriptedFetcher replays responses per job id, repeating the last one.
type scriptedFetcher struct {
	mu      sync.Mutex
	scripts map[string][]fetchResult
	calls   map[string]int
}

type fetchResult struct {
	snap domain.JobSnapshot
	err  error
}

func (f *scriptedFetcher) Job(ctx context.Context, id string) (domain.JobSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	script := f.scripts[id]
	i := f.calls[id]
	f.calls[id]++
	if len(script) == 0 {
		return domain.JobSnapshot{}, domain.ErrNotFound
	}
	if i >= len(script) {
		i = len(script) - 1
	}
	return script[i].snap, script[i].err
}

func (f *scriptedFetcher) count(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func processing(id string) fetchResult {
	return fetchResult{snap: domain.JobSnapshot{ID: id, Status: domain.JobStatusProcessing}}
}

func TestPollUntilCompleted(t *testing.T) {
	f := &scriptedFetcher{scripts: map[string][]fetchResult{
		"job_1": {
			processing("job_1"),
			{err: errors.New("connection refused")},
			{snap: domain.JobSnapshot{ID: "job_1", Status: domain.JobStatusCompleted, TotalSteps: 8}},
		},
	}}

	var updates int
	snap, err := NewPoller(f, 5*time.Millisecond).Poll(context.Background(), "job_1", func(domain.JobSnapshot) { updates++ })
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, snap.Status)
	assert.Equal(t, 2, updates)
	assert.Equal(t, 3, f.count("job_1"))
}

func TestPollStopsOnFailed(t *testing.T) {
	f := &scriptedFetcher{scripts: map[string][]fetchResult{
		"job_1": {{snap: domain.JobSnapshot{ID: "job_1", Status: domain.JobStatusFailed, Error: "boom"}}},
	}}

	snap, err := NewPoller(f, time.Millisecond).Poll(context.Background(), "job_1", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, snap.Status)
	assert.Equal(t, 1, f.count("job_1"))
}

func TestPollNotFound(t *testing.T) {
	_, err := NewPoller(&scriptedFetcher{}, time.Millisecond).Poll(context.Background(), "job_x", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPollCancelled(t *testing.T) {
	f := &scriptedFetcher{scripts: map[string][]fetchResult{"job_1": {processing("job_1")}}}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewPoller(f, 5*time.Millisecond).Poll(ctx, "job_1", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWatcherKeepsOnePollPerView(t *testing.T) {
	f := &scriptedFetcher{scripts: map[string][]fetchResult{
		"job_a": {processing("job_a")},
		"job_b": {processing("job_b")},
	}}
	w := NewWatcher(NewPoller(f, 2*time.Millisecond))

	var aDone atomic.Bool
	w.Show(context.Background(), "job_a", nil, func(domain.JobSnapshot, error) { aDone.Store(true) })
	require.Eventually(t, func() bool { return f.count("job_a") >= 2 }, time.Second, time.Millisecond)

	w.Show(context.Background(), "job_b", nil, nil)
	stopped := f.count("job_a")
	require.Eventually(t, func() bool { return f.count("job_b") >= 2 }, time.Second, time.Millisecond)
	assert.Equal(t, stopped, f.count("job_a"), "previous view kept polling")
	assert.False(t, aDone.Load())

	w.Close()
	closed := f.count("job_b")
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, closed, f.count("job_b"))
}

func TestWatcherReportsTerminal(t *testing.T) {
	f := &scriptedFetcher{scripts: map[string][]fetchResult{
		"job_1": {processing("job_1"), {snap: domain.JobSnapshot{ID: "job_1", Status: domain.JobStatusCompleted}}},
	}}
	w := NewWatcher(NewPoller(f, time.Millisecond))
	defer w.Close()

	got := make(chan domain.JobSnapshot, 1)
	w.Show(context.Background(), "job_1", nil, func(s domain.JobSnapshot, err error) {
		assert.NoError(t, err)
		got <- s
	})

	select {
	case s := <-got:
		assert.Equal(t, domain.JobStatusCompleted, s.Status)
	case <-time.After(time.Second):
		t.Fatal("watcher never reported completion")
	}
}
