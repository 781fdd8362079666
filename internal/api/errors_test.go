package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/portfolio-blog-api/internal/search"
	"github.com/portfolio-blog-api/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&service.FieldsError{}, http.StatusBadRequest},
		{service.ErrNotApproved, http.StatusBadRequest},
		{service.ErrUnauthenticated, http.StatusUnauthorized},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrNotAuthorized, http.StatusForbidden},
		{fmt.Errorf("load: %w", service.ErrNotFound), http.StatusNotFound},
		{service.ErrConflict, http.StatusConflict},
		{service.ErrDuplicateBlog, http.StatusConflict},
		{service.ErrEmailTaken, http.StatusConflict},
		{service.ErrCategoryExists, http.StatusConflict},
		{service.ErrTermExists, http.StatusConflict},
		{search.ErrUnavailable, http.StatusServiceUnavailable},
		{service.ErrInternal, http.StatusInternalServerError},
		{errors.New("pq: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "statusFor(%v)", tt.err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc.def":  "abc.def",
		"bearer  abc.def": "abc.def",
		"Basic abc":       "",
		"Bearer ":         "",
		"":                "",
	}
	for header, want := range tests {
		assert.Equal(t, want, bearerToken(header), "bearerToken(%q)", header)
	}
}
