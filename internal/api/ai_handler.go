package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/service"
	"github.com/rs/zerolog"
)

// AIHandler handles generation job endpoints
type AIHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(services *service.Services, log zerolog.Logger) *AIHandler {
	return &AIHandler{
		services: services,
		log:      log.With().Str("handler", "ai").Logger(),
	}
}

// GenerateBlog handles POST /api/ai/generate-blog
// Returns 202 with the job ID; the result is polled from GET /api/ai/job/:id
func (h *AIHandler) GenerateBlog(c *gin.Context) {
	var req models.BlogGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	accepted, err := h.services.Generation.SubmitBlog(c.Request.Context(), actorFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, accepted)
}

// GenerateImage handles POST /api/ai/generate-image
func (h *AIHandler) GenerateImage(c *gin.Context) {
	var req models.ImageGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	accepted, err := h.services.Generation.SubmitImage(c.Request.Context(), actorFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, accepted)
}

// GetJob handles GET /api/ai/job/:id
func (h *AIHandler) GetJob(c *gin.Context) {
	job, err := h.services.Generation.GetJob(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
