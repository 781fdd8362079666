package service

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/portfolio-blog-api/internal/auth"
	"github.com/portfolio-blog-api/internal/config"
	"github.com/portfolio-blog-api/internal/genai"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/policy"
	"github.com/portfolio-blog-api/internal/repository"
	"github.com/portfolio-blog-api/internal/search"
	"github.com/portfolio-blog-api/internal/validation"
	"github.com/rs/zerolog"
)

// AuthService defines the interface for registration and sessions
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, tokenID string) error
	// Authenticate verifies a bearer token and returns the actor and token ID
	Authenticate(ctx context.Context, token string) (policy.Actor, string, error)
	Me(ctx context.Context, actor policy.Actor) (*models.User, error)
	Bootstrap(ctx context.Context) error
}

// UserService defines the interface for user administration
type UserService interface {
	List(ctx context.Context, actor policy.Actor) ([]*models.User, error)
	Delete(ctx context.Context, actor policy.Actor, id string, transferBlogs bool) error
	UpdateRole(ctx context.Context, actor policy.Actor, id string, role models.Role) (*models.User, error)
}

// BlogService defines the interface for blog authoring and publishing
type BlogService interface {
	Create(ctx context.Context, actor policy.Actor, input *models.BlogInput) (*models.Blog, error)
	Update(ctx context.Context, actor policy.Actor, id string, input *models.BlogInput) (*models.Blog, error)
	Delete(ctx context.Context, actor policy.Actor, id string) error
	Approve(ctx context.Context, actor policy.Actor, id string) (*models.Blog, error)
	Publish(ctx context.Context, actor policy.Actor, id string) (*models.Blog, error)
	AutoSave(ctx context.Context, actor policy.Actor, input *models.AutoSaveInput) (*models.AutoSaveResult, error)
	Get(ctx context.Context, actor policy.Actor, id string) (*models.Blog, error)
	ListPublished(ctx context.Context, filter models.BlogFilter) (*models.BlogPage, error)
	GetPublished(ctx context.Context, slug string) (*models.BlogDetail, error)
	ListMine(ctx context.Context, actor policy.Actor, filter models.BlogFilter) (*models.BlogPage, error)
	ListAll(ctx context.Context, actor policy.Actor, filter models.BlogFilter) (*models.BlogPage, error)
	Reindex(ctx context.Context, actor policy.Actor) (int, error)
}

// CategoryService defines the interface for category management
type CategoryService interface {
	List(ctx context.Context) ([]*models.Category, error)
	Create(ctx context.Context, actor policy.Actor, input *models.CategoryInput) (*models.Category, error)
	Update(ctx context.Context, actor policy.Actor, id string, input *models.CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, actor policy.Actor, id string) error
}

// SlangService defines the interface for the slang dictionary
type SlangService interface {
	ListPublic(ctx context.Context, filter models.SlangFilter) (*models.SlangPage, error)
	Submit(ctx context.Context, actor policy.Actor, input *models.SlangInput) (*models.SlangTerm, error)
	List(ctx context.Context, actor policy.Actor, filter models.SlangFilter) (*models.SlangPage, error)
	Create(ctx context.Context, actor policy.Actor, input *models.SlangInput) (*models.SlangTerm, error)
	Get(ctx context.Context, actor policy.Actor, id string) (*models.SlangTerm, error)
	Update(ctx context.Context, actor policy.Actor, id string, input *models.SlangUpdate) (*models.SlangTerm, error)
	Delete(ctx context.Context, actor policy.Actor, id string) error
	Act(ctx context.Context, actor policy.Actor, id string, action models.SlangAction) (*models.SlangTerm, error)
}

// UploadService defines the interface for image uploads
type UploadService interface {
	Upload(ctx context.Context, actor policy.Actor, file io.Reader, filename string, size int64) (*UploadResult, error)
	Delete(ctx context.Context, actor policy.Actor, key string) error
}

// PromptService defines the interface for system prompt management
type PromptService interface {
	List(ctx context.Context, actor policy.Actor) ([]*models.SystemPrompt, error)
	Get(ctx context.Context, actor policy.Actor, key models.PromptKey) (*models.SystemPrompt, error)
	Update(ctx context.Context, actor policy.Actor, key models.PromptKey, input *models.PromptInput) (*models.SystemPrompt, error)
}

// GenerationService defines the interface for AI generation jobs
type GenerationService interface {
	SubmitBlog(ctx context.Context, actor policy.Actor, req *models.BlogGenerationRequest) (*models.JobAccepted, error)
	SubmitImage(ctx context.Context, actor policy.Actor, req *models.ImageGenerationRequest) (*models.JobAccepted, error)
	GetJob(ctx context.Context, actor policy.Actor, id string) (*models.GenerationJob, error)
	StartProcessor(ctx context.Context)
	StopProcessor()
}

// ExportService defines the interface for admin backups
type ExportService interface {
	StreamResource(ctx context.Context, actor policy.Actor, w http.ResponseWriter, resource, format string) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// SessionStore tracks issued token IDs so sessions can be revoked
type SessionStore interface {
	Save(ctx context.Context, tokenID, userID string, expiresAt time.Time) error
	Exists(ctx context.Context, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string) error
	RevokeUser(ctx context.Context, userID string) error
}

// ObjectStorage stores uploaded and generated images
type ObjectStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// SearchIndex is the full-text index of published blogs
type SearchIndex interface {
	Search(q search.Query) (*search.Result, error)
	Upsert(rec search.BlogRecord)
	Remove(id string)
	Reindex(recs []search.BlogRecord) error
}

// Notifier tells administrators about blogs awaiting review
type Notifier interface {
	BlogSubmitted(blog *models.Blog, author *models.User)
}

// Deps holds everything the services need
type Deps struct {
	Repos    *repository.Repositories
	Config   *config.Config
	Log      zerolog.Logger
	Tokens   *auth.TokenManager
	Sessions SessionStore
	Storage  ObjectStorage
	Text     genai.TextGenerator
	Images   genai.ImageGenerator
	Search   SearchIndex
	Notifier Notifier
}

// Services holds all service interfaces
type Services struct {
	Auth       AuthService
	User       UserService
	Blog       BlogService
	Category   CategoryService
	Slang      SlangService
	Upload     UploadService
	Prompt     PromptService
	Generation GenerationService
	Export     ExportService
}

// NewServices creates all services
func NewServices(d Deps) *Services {
	v := validation.NewValidator()
	if d.Search == nil {
		d.Search = noSearch{}
	}
	if d.Notifier == nil {
		d.Notifier = noNotifier{}
	}

	blogSvc := newBlogService(d, v)
	genSvc := newGenerationService(d, v)

	return &Services{
		Auth:       newAuthService(d, v),
		User:       newUserService(d, blogSvc),
		Blog:       blogSvc,
		Category:   newCategoryService(d, v),
		Slang:      newSlangService(d, v),
		Upload:     newUploadService(d),
		Prompt:     newPromptService(d, v),
		Generation: genSvc,
		Export:     newExportService(d.Repos, d.Log),
	}
}

type noSearch struct{}

func (noSearch) Search(search.Query) (*search.Result, error) { return nil, search.ErrUnavailable }
func (noSearch) Upsert(search.BlogRecord)                    {}
func (noSearch) Remove(string)                               {}
func (noSearch) Reindex([]search.BlogRecord) error           { return search.ErrUnavailable }

type noNotifier struct{}

func (noNotifier) BlogSubmitted(*models.Blog, *models.User) {}
