package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-blog-api/internal/search"
	"github.com/portfolio-blog-api/internal/service"
)

// statusFor maps a service error to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidFields), errors.Is(err, service.ErrNotApproved):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrDuplicateBlog),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrCategoryExists),
		errors.Is(err, service.ErrTermExists):
		return http.StatusConflict
	case errors.Is(err, search.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the {"error": ...} body for err. Unknown errors never
// leak their message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)

	var fe *service.FieldsError
	if errors.As(err, &fe) {
		c.JSON(status, gin.H{"error": service.ErrInvalidFields.Error(), "fields": fe.Fields})
		return
	}
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": service.ErrInternal.Error()})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// badRequest responds to a body that could not be decoded
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
