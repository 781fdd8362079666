package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/portfolio-blog-api/internal/database"
	"github.com/portfolio-blog-api/internal/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) error
	// Delete removes the user in one transaction together with their blogs,
	// or, when transferTo is set, after reassigning the blogs to transferTo
	// as drafts. It returns the IDs of the blogs it touched.
	Delete(ctx context.Context, id, transferTo string) ([]string, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.User) error) error
}

// BlogUpdate is a sparse set of column writes. Nil fields are left untouched.
// Content of JSON null clears the stored document.
type BlogUpdate struct {
	Title         *string
	Slug          *string
	Description   *string
	Content       json.RawMessage
	Banner        *string
	Tags          *string
	Status        *models.BlogStatus
	Approved      *bool
	AuthorID      *string
	MarkPublished bool
}

// BlogRepository defines the interface for blog data operations
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog) error
	GetByID(ctx context.Context, id string) (*models.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*models.Blog, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Blog, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// Update applies upd and bumps the version. With expectedVersion set the
	// write only applies when the stored version matches.
	Update(ctx context.Context, id string, upd BlogUpdate, expectedVersion *int) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.BlogFilter) ([]*models.Blog, int, error)
	IncrementViews(ctx context.Context, id string) error
	SetCategories(ctx context.Context, blogID string, categoryIDs []string) error
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Blog) error) error
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
	// FindOrCreate returns the stored category for each name, inserting the missing ones
	FindOrCreate(ctx context.Context, categories []models.Category) ([]models.Category, error)
}

// SlangRepository defines the interface for slang term data operations
type SlangRepository interface {
	Create(ctx context.Context, term *models.SlangTerm) error
	GetByID(ctx context.Context, id string) (*models.SlangTerm, error)
	TermExists(ctx context.Context, term string) (bool, error)
	List(ctx context.Context, filter models.SlangFilter) ([]*models.SlangTerm, int, error)
	Update(ctx context.Context, term *models.SlangTerm) error
	SetStatus(ctx context.Context, id string, status models.SlangStatus, approvedBy string, approvedAt *time.Time) error
	SetFeatured(ctx context.Context, id string, featured bool) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.SlangTerm) error) error
}

// JobRepository defines the interface for generation job data operations
type JobRepository interface {
	Create(ctx context.Context, job *models.GenerationJob) error
	GetByID(ctx context.Context, id string) (*models.GenerationJob, error)
	GetPending(ctx context.Context, limit int) ([]*models.GenerationJob, error)
	// Claim marks an unclaimed pending job as started; false means another worker has it
	Claim(ctx context.Context, id string) (bool, error)
	// Complete moves a pending job to a terminal status; false means it was already terminal
	Complete(ctx context.Context, id string, status models.JobStatus, result json.RawMessage, errMsg string) (bool, error)
	FailStale(ctx context.Context, createdBefore time.Time, errMsg string) (int, error)
	CountByStatus(ctx context.Context) (map[models.JobStatus]int, error)
}

// PromptRepository defines the interface for system prompt storage
type PromptRepository interface {
	Get(ctx context.Context, key models.PromptKey) (*models.SystemPrompt, error)
	List(ctx context.Context) ([]*models.SystemPrompt, error)
	Upsert(ctx context.Context, prompt *models.SystemPrompt) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	User     UserRepository
	Blog     BlogRepository
	Category CategoryRepository
	Slang    SlangRepository
	Job      JobRepository
	Prompt   PromptRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepo(db),
		Blog:     NewBlogRepo(db),
		Category: NewCategoryRepo(db),
		Slang:    NewSlangRepo(db),
		Job:      NewJobRepo(db),
		Prompt:   NewPromptRepo(db),
	}
}
