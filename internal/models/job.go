package models

import (
	"encoding/json"
	"time"
)

// JobStatus represents the status of a generation job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// IsTerminal reports whether no further transitions are possible
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSuccess || s == JobStatusFailed
}

// JobType represents the type of job
type JobType string

const (
	JobTypeBlog  JobType = "BLOG"
	JobTypeImage JobType = "IMAGE"
)

// GenerationJob represents an AI generation request processed in the background
type GenerationJob struct {
	ID          string          `json:"id" db:"id"`
	Type        JobType         `json:"type" db:"type"`
	Status      JobStatus       `json:"status" db:"status"`
	Params      json.RawMessage `json:"params,omitempty" db:"params"`
	Result      json.RawMessage `json:"result,omitempty" db:"result"`
	Error       string          `json:"error,omitempty" db:"error"`
	RequestedBy string          `json:"requested_by" db:"requested_by"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
}

// GenerationMode selects the length of a generated blog
type GenerationMode string

const (
	ModeSimplified GenerationMode = "simplified"
	ModeDetailed   GenerationMode = "detailed"
)

// MinBlocks returns the minimum content block count a generated blog must have
func (m GenerationMode) MinBlocks() int {
	if m == ModeDetailed {
		return 6
	}
	return 3
}

// BlogGenerationRequest is the body of POST /api/ai/generate-blog
type BlogGenerationRequest struct {
	Topic    string         `json:"topic" validate:"required,max=300"`
	Keywords string         `json:"keywords" validate:"max=500"`
	Tone     string         `json:"tone" validate:"max=50"`
	Mode     GenerationMode `json:"mode" validate:"omitempty,oneof=simplified detailed"`
}

// ImageGenerationRequest is the body of POST /api/ai/generate-image
type ImageGenerationRequest struct {
	Prompt string `json:"prompt" validate:"required,max=1000"`
}

// JobAccepted is returned when a job is queued
type JobAccepted struct {
	JobID  string    `json:"jobId"`
	Status JobStatus `json:"status"`
}

// ImageResult is the result payload of a successful IMAGE job
type ImageResult struct {
	ImageURL string `json:"imageUrl"`
	Key      string `json:"key"`
}
