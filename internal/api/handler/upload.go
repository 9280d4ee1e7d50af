package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/timmy/clueso/internal/domain"
	"github.com/timmy/clueso/internal/logger"
	"github.com/timmy/clueso/internal/service"
)

// multipartSlack covers boundaries and headers around the file part.
const multipartSlack = 1 << 20

// UploadHandler handles video uploads.
type UploadHandler struct {
	ingest    *service.IngestService
	orch      *service.Orchestrator
	fieldName string
}

// NewUploadHandler creates a new upload handler.
// Parameters:
//   - ingest: validates and stores files.
//   - orch: registers and schedules the job.
//   - fieldName: multipart field holding the video.
//
// Returns:
//   - *UploadHandler: initialized handler.
func NewUploadHandler(ingest *service.IngestService, orch *service.Orchestrator, fieldName string) *UploadHandler {
	if fieldName == "" {
		fieldName = "video"
	}
	return &UploadHandler{ingest: ingest, orch: orch, fieldName: fieldName}
}

// Upload handles POST /api/upload.
// It responds as soon as the job is registered; generation runs later.
func (h *UploadHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()
	if max := h.ingest.MaxBytes(); max > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max+multipartSlack)
	}

	fh, err := c.FormFile(h.fieldName)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeValidation(c, &domain.ValidationError{
				Status:  http.StatusRequestEntityTooLarge,
				Message: "Upload failed",
				Details: "File too large (max " + domain.FormatMegabytes(h.ingest.MaxBytes()) + ")",
				Tip:     domain.UploadTip,
			})
			return
		}
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "No file uploaded", Tip: domain.UploadTip})
		return
	}

	f, err := fh.Open()
	if err != nil {
		uploadFailed(c, err)
		return
	}
	defer f.Close()

	video, err := h.ingest.Ingest(ctx, service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			logger.CtxWarn(ctx, "Rejected upload %q: %s", fh.Filename, verr.Details)
			writeValidation(c, verr)
			return
		}
		uploadFailed(c, err)
		return
	}

	job, err := h.orch.Submit(ctx, video)
	if err != nil {
		uploadFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.UploadResponse{
		Success:  true,
		JobID:    job.ID,
		Message:  "Video uploaded successfully",
		VideoURL: video.URL,
		FileInfo: domain.FileInfo{
			Name: video.OriginalName,
			Size: domain.FormatMegabytes(video.Size),
			Type: video.ContentType,
		},
	})
}

func writeValidation(c *gin.Context, verr *domain.ValidationError) {
	c.JSON(verr.Status, domain.ErrorResponse{
		Error:   verr.Message,
		Details: verr.Details,
		Tip:     verr.Tip,
	})
}

func uploadFailed(c *gin.Context, err error) {
	logger.CtxError(c.Request.Context(), "Upload error: %v", err)
	c.JSON(http.StatusInternalServerError, domain.ErrorResponse{
		Error:   "Upload failed",
		Details: err.Error(),
		Tip:     domain.UploadTip,
	})
}
