package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timmy/clueso/internal/domain"
	"github.com/timmy/clueso/internal/service"
)

// JobHandler serves job status.
type JobHandler struct {
	status *service.StatusService
}

// NewJobHandler creates a new job handler.
func NewJobHandler(status *service.StatusService) *JobHandler {
	return &JobHandler{status: status}
}

// GetJob handles GET /api/job/:id.
func (h *JobHandler) GetJob(c *gin.Context) {
	snap, err := h.status.Query(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, domain.ErrorResponse{Error: "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: "Failed to load job", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ListJobs handles GET /api/jobs.
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs := h.status.List(c.Request.Context())
	c.JSON(http.StatusOK, domain.JobList{Total: len(jobs), Jobs: jobs})
}
