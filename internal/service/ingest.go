package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/timmy/clueso/internal/domain"
	"github.com/timmy/clueso/internal/logger"
	"github.com/timmy/clueso/internal/storage"
)

// Upload is one incoming video file.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// IngestConfig holds upload limits.
type IngestConfig struct {
	MaxBytes     int64
	AllowedTypes []string // extension/MIME fragments, e.g. "mp4"
}

// IngestService validates uploads and stores them.
type IngestService struct {
	storage  storage.ObjectStorage
	maxBytes int64
	allowed  *regexp.Regexp
	mimes    map[string]bool
	now      func() time.Time
}

// videoMIMETypes lists the registered types per container extension.
// video/<ext> is always accepted as well.
var videoMIMETypes = map[string][]string{
	"mp4":  {"video/mp4"},
	"mov":  {"video/quicktime"},
	"avi":  {"video/x-msvideo", "video/msvideo", "video/avi"},
	"wmv":  {"video/x-ms-wmv"},
	"flv":  {"video/x-flv"},
	"webm": {"video/webm"},
	"mkv":  {"video/x-matroska"},
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// NewIngestService creates a new ingest service
func NewIngestService(objectStorage storage.ObjectStorage, cfg IngestConfig) *IngestService {
	types := cfg.AllowedTypes
	if len(types) == 0 {
		types = []string{"mp4", "mov", "avi", "wmv", "flv", "webm", "mkv"}
	}
	quoted := make([]string, len(types))
	mimes := make(map[string]bool)
	for i, t := range types {
		t = strings.ToLower(strings.TrimPrefix(t, "."))
		quoted[i] = regexp.QuoteMeta(t)
		mimes["video/"+t] = true
		for _, m := range videoMIMETypes[t] {
			mimes[m] = true
		}
	}
	return &IngestService{
		storage:  objectStorage,
		maxBytes: cfg.MaxBytes,
		allowed:  regexp.MustCompile(`^\.(` + strings.Join(quoted, "|") + `)$`),
		mimes:    mimes,
		now:      time.Now,
	}
}

// MaxBytes returns the upload ceiling.
func (s *IngestService) MaxBytes() int64 { return s.maxBytes }

// Validate checks the file extension, MIME type and size. The MIME type
// must be a video type registered for any allowed extension.
func (s *IngestService) Validate(up Upload) error {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if !s.allowed.MatchString(ext) || !s.mimes[mediaType(up.ContentType)] {
		return domain.NewValidationError("Upload failed", "Only video files are allowed!")
	}
	if s.maxBytes > 0 && up.Size > s.maxBytes {
		verr := domain.NewValidationError("Upload failed", fmt.Sprintf("File too large (max %s)", domain.FormatMegabytes(s.maxBytes)))
		verr.Status = http.StatusRequestEntityTooLarge
		return verr
	}
	return nil
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mt
}

// Ingest validates and stores an upload, returning its locator.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - up: the uploaded file.
//
// Returns:
//   - domain.Video: storage key, served URL and file metadata.
//   - error: *domain.ValidationError for rejected files, otherwise a storage error.
func (s *IngestService) Ingest(ctx context.Context, up Upload) (domain.Video, error) {
	if err := s.Validate(up); err != nil {
		return domain.Video{}, err
	}

	key, err := s.uniqueKey(ctx, up.Filename)
	if err != nil {
		return domain.Video{}, err
	}

	body := up.Body
	if s.maxBytes > 0 {
		body = io.LimitReader(body, s.maxBytes)
	}
	if err := s.storage.Upload(ctx, key, body, up.Size, up.ContentType); err != nil {
		return domain.Video{}, fmt.Errorf("failed to store upload: %w", err)
	}

	video := domain.Video{
		Key:          key,
		URL:          "/uploads/" + key,
		OriginalName: up.Filename,
		Size:         up.Size,
		ContentType:  up.ContentType,
	}
	logger.With(logger.Fields{"key": key, logger.FieldSize: up.Size}).
		Info(ctx, "Stored upload %s (%s)", up.Filename, domain.FormatMegabytes(up.Size))
	return video, nil
}

// uniqueKey names the object <unix millis>-<base><ext>, adding a short
// uuid suffix if that name is already taken.
func (s *IngestService) uniqueKey(ctx context.Context, filename string) (string, error) {
	filename = filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(filename))
	base := unsafeName.ReplaceAllString(strings.TrimSuffix(filename, filepath.Ext(filename)), "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "video"
	}

	key := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), base, ext)
	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to check upload name: %w", err)
	}
	if exists {
		key = fmt.Sprintf("%d-%s-%s%s", s.now().UnixMilli(), base, uuid.NewString()[:8], ext)
	}
	return key, nil
}
