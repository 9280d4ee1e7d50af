package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/timmy/clueso/internal/config"
	"github.com/timmy/clueso/internal/domain"
	"github.com/timmy/clueso/internal/generator"
	"github.com/timmy/clueso/internal/service"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	status *service.StatusService
	gen    generator.Generator
	port   int
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(status *service.StatusService, gen generator.Generator, port int) *HealthHandler {
	return &HealthHandler{status: status, gen: gen, port: port}
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.status.Health(c.Request.Context()))
}

// TestAI handles GET /api/test-openai. It reports the generator mode and
// never calls the model.
func (h *HealthHandler) TestAI(c *gin.Context) {
	report := domain.GeneratorReport{
		Server: "Backend running on port " + strconv.Itoa(h.port),
		Features: []string{
			"Video processing pipeline",
			"Step-by-step tutorial generation",
			"Multiple output formats",
		},
	}
	switch g := h.gen.(type) {
	case *generator.OpenAIGenerator:
		report.Status = config.GeneratorModeOpenAI
		report.Message = "Using OpenAI chat completions for tutorial generation"
		report.Model = g.Model()
	default:
		report.Status = config.GeneratorModeSimulated
		report.Message = "Using enhanced simulated AI (no API credits needed)"
		report.Model = "clueso-simulated-ai"
		report.Features = append(report.Features, "Ready for real OpenAI API integration")
	}
	report.Timestamp = time.Now().UTC()
	c.JSON(http.StatusOK, report)
}
