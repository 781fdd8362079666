package models

import (
	"time"
)

// Category groups blogs. Name is stored lowercased.
type Category struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CategoryInput is the body of category create and edit requests
type CategoryInput struct {
	Name string `json:"name" validate:"required,max=50"`
}
