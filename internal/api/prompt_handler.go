package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/service"
	"github.com/rs/zerolog"
)

// PromptHandler handles system prompt administration
type PromptHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewPromptHandler creates a new PromptHandler
func NewPromptHandler(services *service.Services, log zerolog.Logger) *PromptHandler {
	return &PromptHandler{
		services: services,
		log:      log.With().Str("handler", "prompt").Logger(),
	}
}

// List handles GET /api/admin/prompts
func (h *PromptHandler) List(c *gin.Context) {
	prompts, err := h.services.Prompt.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompts": prompts})
}

// Get handles GET /api/admin/prompts/:key
func (h *PromptHandler) Get(c *gin.Context) {
	prompt, err := h.services.Prompt.Get(c.Request.Context(), actorFrom(c), models.PromptKey(c.Param("key")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prompt)
}

// Update handles PUT /api/admin/prompts/:key
func (h *PromptHandler) Update(c *gin.Context) {
	var input models.PromptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	prompt, err := h.services.Prompt.Update(c.Request.Context(), actorFrom(c), models.PromptKey(c.Param("key")), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.log.Info().Str("key", c.Param("key")).Str("by", actorFrom(c).ID).Msg("System prompt updated")
	c.JSON(http.StatusOK, prompt)
}
