package models

import (
	"time"
)

// SlangStatus represents the moderation state of a slang term
type SlangStatus string

const (
	SlangStatusPending  SlangStatus = "pending"
	SlangStatusApproved SlangStatus = "approved"
	SlangStatusRejected SlangStatus = "rejected"
)

// SlangAction is a moderation action on a slang term
type SlangAction string

const (
	SlangActionApprove   SlangAction = "approve"
	SlangActionReject    SlangAction = "reject"
	SlangActionFeature   SlangAction = "feature"
	SlangActionUnfeature SlangAction = "unfeature"
)

// SlangTerm is a dictionary entry. Term is stored lowercased.
type SlangTerm struct {
	ID          string      `json:"id" db:"id"`
	Term        string      `json:"term" db:"term"`
	Meaning     string      `json:"meaning" db:"meaning"`
	Example     string      `json:"example" db:"example"`
	Category    string      `json:"category" db:"category"`
	Status      SlangStatus `json:"status" db:"status"`
	IsFeatured  bool        `json:"isFeatured" db:"is_featured"`
	SubmittedBy string      `json:"submittedBy,omitempty" db:"submitted_by"`
	ApprovedBy  string      `json:"approvedBy,omitempty" db:"approved_by"`
	ApprovedAt  *time.Time  `json:"approvedAt,omitempty" db:"approved_at"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// SlangInput is used for public submissions and admin creation
type SlangInput struct {
	Term        string `json:"term" validate:"required,max=100"`
	Meaning     string `json:"meaning" validate:"required,max=1000"`
	Example     string `json:"example" validate:"max=1000"`
	Category    string `json:"category" validate:"max=50"`
	SubmittedBy string `json:"submittedBy" validate:"max=100"`
}

// SlangUpdate is a sparse admin edit
type SlangUpdate struct {
	Term     *string `json:"term,omitempty" validate:"omitempty,min=1,max=100"`
	Meaning  *string `json:"meaning,omitempty" validate:"omitempty,min=1,max=1000"`
	Example  *string `json:"example,omitempty" validate:"omitempty,max=1000"`
	Category *string `json:"category,omitempty" validate:"omitempty,max=50"`
}

// SlangActionRequest is the body of PATCH /api/admin/slang/:id
type SlangActionRequest struct {
	Action SlangAction `json:"action" validate:"required,oneof=approve reject feature unfeature"`
}

// SlangFilter selects slang terms for listings
type SlangFilter struct {
	Status   SlangStatus
	Query    string
	Category string
	Featured *bool
	Page     int
	Limit    int
}

// Offset returns the row offset for the filter's page
func (f SlangFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// SlangPage is a paginated slang listing
type SlangPage struct {
	Terms []*SlangTerm `json:"terms"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}
