package service

import (
	"errors"

	"github.com/portfolio-blog-api/internal/models"
)

// Sentinel errors returned by services. Messages are safe to show to clients.
var (
	ErrInvalidFields      = errors.New("Invalid Fields")
	ErrNotAuthorized      = errors.New("Not Authorized")
	ErrUnauthenticated    = errors.New("Authentication required")
	ErrNotFound           = errors.New("Not Found")
	ErrNotApproved        = errors.New("Blog must be approved before publishing")
	ErrDuplicateBlog      = errors.New("A blog with this title already exists")
	ErrEmailTaken         = errors.New("Email already in use")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrConflict           = errors.New("The resource was modified by someone else")
	ErrCategoryExists     = errors.New("Category already exists")
	ErrTermExists         = errors.New("Term already exists")
	ErrInternal           = errors.New("something went wrong")
)

// FieldsError carries per-field validation failures. It matches ErrInvalidFields.
type FieldsError struct {
	Fields []models.ValidationError
}

func (e *FieldsError) Error() string {
	return ErrInvalidFields.Error()
}

func (e *FieldsError) Unwrap() error {
	return ErrInvalidFields
}

func invalidFields(fields []models.ValidationError) error {
	return &FieldsError{Fields: fields}
}

func invalidField(field, message string) error {
	return invalidFields([]models.ValidationError{{Field: field, Message: message}})
}
