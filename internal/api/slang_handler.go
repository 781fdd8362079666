package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/service"
	"github.com/rs/zerolog"
)

// SlangHandler handles the slang dictionary
type SlangHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewSlangHandler creates a new SlangHandler
func NewSlangHandler(services *service.Services, log zerolog.Logger) *SlangHandler {
	return &SlangHandler{
		services: services,
		log:      log.With().Str("handler", "slang").Logger(),
	}
}

func slangFilter(c *gin.Context) models.SlangFilter {
	page, limit := pageParams(c)
	filter := models.SlangFilter{
		Status:   models.SlangStatus(c.Query("status")),
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Page:     page,
		Limit:    limit,
	}
	if v, err := strconv.ParseBool(c.Query("featured")); err == nil {
		filter.Featured = &v
	}
	return filter
}

// ListPublic handles GET /api/slang
func (h *SlangHandler) ListPublic(c *gin.Context) {
	result, err := h.services.Slang.ListPublic(c.Request.Context(), slangFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Submit handles POST /api/slang. Guests may submit.
func (h *SlangHandler) Submit(c *gin.Context) {
	var input models.SlangInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	term, err := h.services.Slang.Submit(c.Request.Context(), actorFrom(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, term)
}

// List handles GET /api/admin/slang?status
func (h *SlangHandler) List(c *gin.Context) {
	result, err := h.services.Slang.List(c.Request.Context(), actorFrom(c), slangFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Create handles POST /api/admin/slang
func (h *SlangHandler) Create(c *gin.Context) {
	var input models.SlangInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	term, err := h.services.Slang.Create(c.Request.Context(), actorFrom(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, term)
}

// Get handles GET /api/admin/slang/:id
func (h *SlangHandler) Get(c *gin.Context) {
	term, err := h.services.Slang.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, term)
}

// Update handles PUT /api/admin/slang/:id
func (h *SlangHandler) Update(c *gin.Context) {
	var input models.SlangUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	term, err := h.services.Slang.Update(c.Request.Context(), actorFrom(c), c.Param("id"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, term)
}

// Act handles PATCH /api/admin/slang/:id with {"action": "approve|reject|feature|unfeature"}
func (h *SlangHandler) Act(c *gin.Context) {
	var req models.SlangActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	term, err := h.services.Slang.Act(c.Request.Context(), actorFrom(c), c.Param("id"), req.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, term)
}

// Delete handles DELETE /api/admin/slang/:id
func (h *SlangHandler) Delete(c *gin.Context) {
	if err := h.services.Slang.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Term deleted"})
}
