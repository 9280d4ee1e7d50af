package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/clueso/internal/config"
	"github.com/timmy/clueso/internal/domain"
	"github.com/timmy/clueso/internal/generator"
	"github.com/timmy/clueso/internal/repository"
	"github.com/timmy/clueso/internal/service"
	"github.com/timmy/clueso/internal/storage"
)

type testServer struct {
	router http.Handler
}

func newTestServer(t *testing.T, maxBytes int64) *testServer {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:      5000,
			Mode:      "test",
			PublicURL: "http://localhost:5000",
			CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000", "http://localhost:3001"}},
		},
		Upload: config.UploadConfig{MaxBytes: maxBytes, FieldName: "video"},
	}

	objects, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store := repository.NewMemoryJobStore()
	gen := generator.NewSimulator(generator.SimulatorConfig{Seed: 11})
	orch := service.NewOrchestrator(store, gen, nil, service.OrchestratorConfig{Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	orch.Start(ctx)
	t.Cleanup(func() {
		cancel()
		orch.Stop()
	})

	router := SetupRouter(cfg, Deps{
		Ingest:       service.NewIngestService(objects, service.IngestConfig{MaxBytes: maxBytes}),
		Orchestrator: orch,
		Status:       service.NewStatusService(store, objects, nil, cfg.Server.PublicURL, gen.Mode()),
		Generator:    gen,
		Storage:      objects,
	})
	return &testServer{router: router}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func uploadRequest(t *testing.T, field, filename, contentType string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestUploadPollAndServe(t *testing.T) {
	s := newTestServer(t, 200<<20)

	w := s.do(uploadRequest(t, "video", "demo.mp4", "video/mp4", []byte("0123456789")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	up := decode[domain.UploadResponse](t, w)
	assert.True(t, up.Success)
	assert.Regexp(t, `^job_\d+_[0-9a-f]{8}$`, up.JobID)
	assert.Regexp(t, `^/uploads/\d+-demo\.mp4$`, up.VideoURL)
	assert.Equal(t, "demo.mp4", up.FileInfo.Name)
	assert.Equal(t, "0.00 MB", up.FileInfo.Size)

	var snap domain.JobSnapshot
	require.Eventually(t, func() bool {
		w := s.get("/api/job/" + up.JobID)
		if w.Code != http.StatusOK {
			return false
		}
		snap = decode[domain.JobSnapshot](t, w)
		return snap.Status == domain.JobStatusCompleted
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, 8, snap.TotalSteps)
	assert.NotEmpty(t, snap.Transcript)
	assert.Equal(t, "00:05", snap.Steps[0].Timestamp)
	assert.Equal(t, "00:54", snap.Steps[7].Timestamp)
	assert.Equal(t, "7s", snap.Steps[0].Duration)
	assert.Equal(t, "http://localhost:5000"+up.VideoURL, snap.DirectVideoURL)
	assert.NotEmpty(t, snap.TemplateTitle)

	req := httptest.NewRequest(http.MethodGet, up.VideoURL, nil)
	req.Header.Set("Range", "bytes=0-3")
	w = s.do(req)
	assert.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "0123", w.Body.String())
	assert.Equal(t, "video/mp4", w.Header().Get("Content-Type"))
	assert.Equal(t, "bytes", w.Header().Get("Accept-Ranges"))
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))

	list := decode[domain.JobList](t, s.get("/api/jobs"))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, 8, list.Jobs[0].StepsCount)
	assert.Equal(t, "demo.mp4", list.Jobs[0].VideoName)
}

func TestUploadRejections(t *testing.T) {
	s := newTestServer(t, 16)

	tests := []struct {
		name   string
		req    *http.Request
		status int
		error  string
	}{
		{"not a video", uploadRequest(t, "video", "notes.txt", "text/plain", []byte("hi")), http.StatusBadRequest, "Upload failed"},
		{"too large", uploadRequest(t, "video", "big.mp4", "video/mp4", bytes.Repeat([]byte("x"), 17)), http.StatusRequestEntityTooLarge, "Upload failed"},
		{"wrong field", uploadRequest(t, "file", "demo.mp4", "video/mp4", []byte("x")), http.StatusBadRequest, "No file uploaded"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(tc.req)
			assert.Equal(t, tc.status, w.Code)
			body := decode[domain.ErrorResponse](t, w)
			assert.Equal(t, tc.error, body.Error)
			assert.Equal(t, domain.UploadTip, body.Tip)
		})
	}

	assert.Zero(t, decode[domain.JobList](t, s.get("/api/jobs")).Total)
}

func TestUnknownJobAndRoute(t *testing.T) {
	s := newTestServer(t, 1<<20)

	w := s.get("/api/job/job_missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Job not found", decode[domain.ErrorResponse](t, w).Error)

	w = s.get("/api/nothing-here")
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode[domain.ErrorResponse](t, w)
	assert.Equal(t, "Endpoint not found", body.Error)
	assert.Equal(t, "POST /api/upload", body.AvailableEndpoints["upload"])

	assert.Equal(t, http.StatusNotFound, s.get("/uploads/missing.mp4").Code)
}

func TestHealthAndGeneratorReport(t *testing.T) {
	s := newTestServer(t, 1<<20)

	health := decode[domain.HealthReport](t, s.get("/api/health"))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, service.Version, health.Version)
	assert.Equal(t, "Exists", health.Stats.UploadsDir)
	assert.Equal(t, "GET /api/job/:id", health.Endpoints["jobStatus"])

	report := decode[domain.GeneratorReport](t, s.get("/api/test-openai"))
	assert.Equal(t, "simulated", report.Status)
	assert.Equal(t, "clueso-simulated-ai", report.Model)
	assert.Equal(t, "Backend running on port 5000", report.Server)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, 1<<20)

	req := httptest.NewRequest(http.MethodOptions, "/api/upload", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := s.do(req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = s.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDEchoed(t *testing.T) {
	s := newTestServer(t, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := s.do(req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	assert.NotEmpty(t, s.get("/api/health").Header().Get("X-Request-ID"))
}
