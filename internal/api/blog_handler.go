package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/service"
	"github.com/rs/zerolog"
)

// BlogHandler handles blog authoring and public reads
type BlogHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(services *service.Services, log zerolog.Logger) *BlogHandler {
	return &BlogHandler{
		services: services,
		log:      log.With().Str("handler", "blog").Logger(),
	}
}

// ListPublished handles GET /api/blog?page&limit&category&q
func (h *BlogHandler) ListPublished(c *gin.Context) {
	page, limit := pageParams(c)
	result, err := h.services.Blog.ListPublished(c.Request.Context(), models.BlogFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetPublished handles GET /api/blog/:slug
func (h *BlogHandler) GetPublished(c *gin.Context) {
	detail, err := h.services.Blog.GetPublished(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Create handles POST /api/blogs
func (h *BlogHandler) Create(c *gin.Context) {
	var input models.BlogInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	blog, err := h.services.Blog.Create(c.Request.Context(), actorFrom(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, blog)
}

// Get handles GET /api/blogs/:id for the editor
func (h *BlogHandler) Get(c *gin.Context) {
	blog, err := h.services.Blog.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, blog)
}

// Update handles PUT /api/blogs/:id
func (h *BlogHandler) Update(c *gin.Context) {
	var input models.BlogInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	blog, err := h.services.Blog.Update(c.Request.Context(), actorFrom(c), c.Param("id"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, blog)
}

// Delete handles DELETE /api/blogs/:id
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.services.Blog.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Blog deleted"})
}

// Approve handles POST /api/blogs/:id/approve
func (h *BlogHandler) Approve(c *gin.Context) {
	blog, err := h.services.Blog.Approve(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, blog)
}

// Publish handles POST /api/blogs/:id/publish
func (h *BlogHandler) Publish(c *gin.Context) {
	blog, err := h.services.Blog.Publish(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, blog)
}

// AutoSave handles POST /api/blogs/autosave
func (h *BlogHandler) AutoSave(c *gin.Context) {
	var input models.AutoSaveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.services.Blog.AutoSave(c.Request.Context(), actorFrom(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// ListMine handles GET /api/blogs/mine
func (h *BlogHandler) ListMine(c *gin.Context) {
	page, limit := pageParams(c)
	result, err := h.services.Blog.ListMine(c.Request.Context(), actorFrom(c), models.BlogFilter{
		Status: models.BlogStatus(c.Query("status")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListAll handles GET /api/admin/blogs?status
func (h *BlogHandler) ListAll(c *gin.Context) {
	page, limit := pageParams(c)
	result, err := h.services.Blog.ListAll(c.Request.Context(), actorFrom(c), models.BlogFilter{
		Status:   models.BlogStatus(c.Query("status")),
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Reindex handles POST /api/admin/search/reindex
func (h *BlogHandler) Reindex(c *gin.Context) {
	n, err := h.services.Blog.Reindex(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.log.Info().Int("indexed", n).Msg("Search index rebuilt")
	c.JSON(http.StatusOK, gin.H{"indexed": n})
}
