package models

// ExportRequest represents an admin backup export
type ExportRequest struct {
	Resource string `json:"resource" form:"resource" validate:"required,oneof=users blogs slang"`
	Format   string `json:"format" form:"format" validate:"omitempty,oneof=json ndjson csv"`
}

// ValidationError represents a single field validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}
