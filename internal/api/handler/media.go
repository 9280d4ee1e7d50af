package handler

import (
	"errors"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/timmy/clueso/internal/domain"
	"github.com/timmy/clueso/internal/logger"
	"github.com/timmy/clueso/internal/storage"
)

var videoContentTypes = map[string]string{
	".mp4": "video/mp4",
	".mov": "video/quicktime",
	".avi": "video/x-msvideo",
}

// MediaHandler serves uploaded videos.
type MediaHandler struct {
	storage storage.ObjectStorage
}

// NewMediaHandler creates a new media handler.
func NewMediaHandler(objectStorage storage.ObjectStorage) *MediaHandler {
	return &MediaHandler{storage: objectStorage}
}

// ContentType maps a filename to the type videos are served with.
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := videoContentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Serve handles GET /uploads/:file with byte-range support. Remote backends
// redirect to the object's public URL.
func (h *MediaHandler) Serve(c *gin.Context) {
	key := c.Param("file")
	ctx := c.Request.Context()

	opener, ok := h.storage.(storage.FileOpener)
	if !ok {
		exists, err := h.storage.Exists(ctx, key)
		if err != nil {
			logger.CtxError(ctx, "Failed to look up video %s: %v", key, err)
			c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: "Failed to load video"})
			return
		}
		if !exists {
			c.JSON(http.StatusNotFound, domain.ErrorResponse{Error: "Video not found"})
			return
		}
		c.Redirect(http.StatusFound, h.storage.GetURL(key))
		return
	}

	f, err := opener.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, domain.ErrorResponse{Error: "Video not found"})
			return
		}
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "Invalid video name"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, domain.ErrorResponse{Error: "Video not found"})
		return
	}

	header := c.Writer.Header()
	header.Set("Content-Type", ContentType(key))
	header.Set("Accept-Ranges", "bytes")
	header.Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(c.Writer, c.Request, key, info.ModTime(), f)
}
