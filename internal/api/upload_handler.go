package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-blog-api/internal/config"
	"github.com/portfolio-blog-api/internal/service"
	"github.com/rs/zerolog"
)

// multipart overhead allowed on top of the file size limit
const formOverhead = 64 << 10

// UploadHandler handles image uploads
type UploadHandler struct {
	services *service.Services
	maxSize  int64
	log      zerolog.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		services: services,
		maxSize:  cfg.Upload.MaxSize,
		log:      log.With().Str("handler", "upload").Logger(),
	}
}

// Upload handles POST /api/upload
// Accepts multipart/form-data with an "image" (or "file") field
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.maxSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize+formOverhead)
	}

	fileHeader, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		fileHeader, err = c.FormFile("file")
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		badRequest(c, "image file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to open uploaded file")
		badRequest(c, "failed to read uploaded file")
		return
	}
	defer file.Close()

	result, err := h.services.Upload.Upload(c.Request.Context(), actorFrom(c), file, fileHeader.Filename, fileHeader.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Delete handles DELETE /api/upload with {"key": "uploads/..."}
func (h *UploadHandler) Delete(c *gin.Context) {
	var req struct {
		Key string `json:"key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Key = c.Query("key")
	}
	if req.Key == "" {
		badRequest(c, "key is required")
		return
	}

	if err := h.services.Upload.Delete(c.Request.Context(), actorFrom(c), req.Key); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}
