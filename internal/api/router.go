package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timmy/clueso/internal/api/handler"
	"github.com/timmy/clueso/internal/api/middleware"
	"github.com/timmy/clueso/internal/config"
	"github.com/timmy/clueso/internal/domain"
	"github.com/timmy/clueso/internal/generator"
	"github.com/timmy/clueso/internal/logger"
	"github.com/timmy/clueso/internal/service"
	"github.com/timmy/clueso/internal/storage"
)

// Deps are the services the router dispatches to.
type Deps struct {
	Ingest       *service.IngestService
	Orchestrator *service.Orchestrator
	Status       *service.StatusService
	Generator    generator.Generator
	Storage      storage.ObjectStorage
	Logger       *logger.Logger
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	log := deps.Logger
	if log == nil {
		log = logger.GetDefault()
	}

	r := gin.New()
	r.MaxMultipartMemory = 32 << 20

	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Server.CORS))

	uploadHandler := handler.NewUploadHandler(deps.Ingest, deps.Orchestrator, cfg.Upload.FieldName)
	jobHandler := handler.NewJobHandler(deps.Status)
	healthHandler := handler.NewHealthHandler(deps.Status, deps.Generator, cfg.Server.Port)
	mediaHandler := handler.NewMediaHandler(deps.Storage)

	api := r.Group("/api")
	{
		api.POST("/upload", uploadHandler.Upload)
		api.GET("/job/:id", jobHandler.GetJob)
		api.GET("/jobs", jobHandler.ListJobs)
		api.GET("/health", healthHandler.Health)
		api.GET("/test-openai", healthHandler.TestAI)
	}

	r.GET("/uploads/:file", mediaHandler.Serve)
	r.HEAD("/uploads/:file", mediaHandler.Serve)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, domain.ErrorResponse{
			Error:              "Endpoint not found",
			AvailableEndpoints: domain.Endpoints,
		})
	})

	return r
}
