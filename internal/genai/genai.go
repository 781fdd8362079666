// Package genai talks to the hosted text and image generation APIs.
package genai

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoProvider is returned when no provider is configured
var ErrNoProvider = errors.New("no generation provider configured")

// ErrEmptyResponse is returned when a provider answers without usable output
var ErrEmptyResponse = errors.New("provider returned an empty response")

// TextGenerator produces text from a system instruction and a user prompt
type TextGenerator interface {
	Name() string
	GenerateText(ctx context.Context, system, prompt string) (string, error)
}

// ImageGenerator produces a single image from a prompt
type ImageGenerator interface {
	Name() string
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
}

// Image is raw image bytes returned by a provider
type Image struct {
	Data     []byte
	MimeType string
}

// Extension returns the file extension matching the image MIME type
func (i *Image) Extension() string {
	switch i.MimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

// APIError is a non-2xx answer from a provider
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
}
