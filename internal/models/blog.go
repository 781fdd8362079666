package models

import (
	"encoding/json"
	"time"
)

// BlogStatus represents the publishing state of a blog
type BlogStatus string

const (
	BlogStatusDraft     BlogStatus = "draft"
	BlogStatusPublished BlogStatus = "published"
	BlogStatusArchived  BlogStatus = "archived"
)

// ValidBlogStatuses defines allowed blog statuses
var ValidBlogStatuses = map[BlogStatus]bool{
	BlogStatusDraft:     true,
	BlogStatusPublished: true,
	BlogStatusArchived:  true,
}

// DefaultDraftTitle is used when an auto-save arrives without a title
const DefaultDraftTitle = "Untitled Draft"

// Blog represents a blog post.
// Status published implies Approved.
type Blog struct {
	ID          string          `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Slug        string          `json:"slug" db:"slug"`
	Description string          `json:"description" db:"description"`
	Content     json.RawMessage `json:"content" db:"content"`
	Banner      string          `json:"banner" db:"banner"`
	Tags        string          `json:"tags" db:"tags"`
	Status      BlogStatus      `json:"status" db:"status"`
	Approved    bool            `json:"approved" db:"approved"`
	Views       int64           `json:"views" db:"views"`
	AuthorID    string          `json:"author_id" db:"author_id"`
	AuthorName  string          `json:"author_name,omitempty" db:"-"`
	Categories  []Category      `json:"categories" db:"-"`
	Version     int             `json:"version" db:"version"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
	PublishedAt *time.Time      `json:"published_at,omitempty" db:"published_at"`
}

// IsPublic reports whether the blog is visible on the public listing
func (b *Blog) IsPublic() bool {
	return b.Status == BlogStatusPublished && b.Approved
}

// BlogInput is the body of create and update requests
type BlogInput struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=500"`
	Content     json.RawMessage `json:"content"`
	Banner      string          `json:"banner" validate:"omitempty,url"`
	Tags        string          `json:"tags" validate:"max=500"`
	Status      BlogStatus      `json:"status" validate:"omitempty,oneof=draft published archived"`
	Categories  []string        `json:"categories" validate:"max=20,dive,required,max=50"`
	Version     *int            `json:"version,omitempty"`
}

// AutoSaveInput is a sparse patch. A nil field was not provided; a non-nil
// empty value clears the stored one. Content set to JSON null clears content.
type AutoSaveInput struct {
	ID          string          `json:"id,omitempty"`
	Title       *string         `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=500"`
	Content     json.RawMessage `json:"content,omitempty"`
	Banner      *string         `json:"banner,omitempty" validate:"omitempty,max=2048"`
	Tags        *string         `json:"tags,omitempty" validate:"omitempty,max=500"`
	Categories  *[]string       `json:"categories,omitempty"`
	Version     *int            `json:"version,omitempty"`
}

// AutoSaveResult is returned to the editor after each auto-save
type AutoSaveResult struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Version   int       `json:"version"`
	Created   bool      `json:"created"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BlogFilter selects blogs for listings
type BlogFilter struct {
	Status   BlogStatus
	AuthorID string
	Category string
	Query    string
	Public   bool
	Page     int
	Limit    int
}

// Offset returns the row offset for the filter's page
func (f BlogFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// BlogPage is a paginated blog listing
type BlogPage struct {
	Blogs      []*Blog `json:"blogs"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"total_pages"`
}

// BlogDetail is the public view of a single blog
type BlogDetail struct {
	*Blog
	HTML        string `json:"html"`
	Excerpt     string `json:"excerpt"`
	ReadingTime int    `json:"reading_time"`
}
