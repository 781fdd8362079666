package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio-blog-api/internal/auth"
	"github.com/portfolio-blog-api/internal/config"
	"github.com/portfolio-blog-api/internal/genai"
	"github.com/portfolio-blog-api/internal/mocks"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/policy"
	"github.com/portfolio-blog-api/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	repos    *mocks.MockRepositories
	sessions *mocks.MockSessionStore
	storage  *mocks.MockObjectStorage
	search   *mocks.MockSearchIndex
	notifier *mocks.MockNotifier
	text     *mocks.MockTextGenerator
	images   *mocks.MockImageGenerator
	cfg      *config.Config
	svc      *service.Services
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret-please-ignore", TokenTTL: time.Hour, Issuer: "portfolio-blog-api"},
		Upload: config.UploadConfig{
			MaxSize:      1 << 20,
			AllowedTypes: []string{"image/png", "image/jpeg", "image/gif", "image/webp"},
		},
		AI: config.AIConfig{MaxFixups: 8},
		Jobs: config.JobsConfig{
			Workers:      2,
			PollInterval: 10 * time.Millisecond,
			BatchSize:    10,
			MaxLifetime:  2 * time.Second,
		},
		Bootstrap: config.BootstrapConfig{
			SuperAdminName:     "Root",
			SuperAdminEmail:    "Root@Example.com",
			SuperAdminPassword: "rootpass",
		},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, nil, nil)
}

func newTestEnvWithText(t *testing.T, text genai.TextGenerator) *testEnv {
	return newTestEnvWith(t, text, nil)
}

// newTestEnvWith builds services over mocks. A nil text generator uses
// env.text; configure may adjust testConfig before the services are built.
func newTestEnvWith(t *testing.T, text genai.TextGenerator, configure func(cfg *config.Config)) *testEnv {
	t.Helper()
	env := &testEnv{
		repos:    mocks.NewMockRepositories(),
		sessions: mocks.NewMockSessionStore(),
		storage:  mocks.NewMockObjectStorage(),
		search:   mocks.NewMockSearchIndex(),
		notifier: &mocks.MockNotifier{},
		text:     &mocks.MockTextGenerator{},
		images:   &mocks.MockImageGenerator{},
		cfg:      testConfig(),
	}
	if text == nil {
		text = env.text
	}
	if configure != nil {
		configure(env.cfg)
	}
	env.svc = service.NewServices(service.Deps{
		Repos:    env.repos.Repositories(),
		Config:   env.cfg,
		Log:      zerolog.Nop(),
		Tokens:   auth.NewTokenManager(env.cfg.Auth.JWTSecret, env.cfg.Auth.TokenTTL, env.cfg.Auth.Issuer),
		Sessions: env.sessions,
		Storage:  env.storage,
		Text:     text,
		Images:   env.images,
		Search:   env.search,
		Notifier: env.notifier,
	})
	return env
}

// addUser stores an account and returns it as an actor
func (e *testEnv) addUser(t *testing.T, name string, role models.Role) policy.Actor {
	t.Helper()
	user := &models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     name + "@example.com",
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, e.repos.User.Create(context.Background(), user))
	return policy.Actor{ID: user.ID, Name: user.Name, Email: user.Email, Role: role}
}

const sampleContent = `{"blocks":[{"type":"paragraph","data":{"text":"Hello there"}}]}`

func blogInput(title string) *models.BlogInput {
	return &models.BlogInput{
		Title:       title,
		Description: "A post",
		Content:     json.RawMessage(sampleContent),
		Tags:        "Go, testing",
	}
}

func TestAuth_RegisterLoginLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.svc.Auth.Register(ctx, &models.RegisterRequest{Name: "Ada", Email: " ADA@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.Password)

	_, err = env.svc.Auth.Register(ctx, &models.RegisterRequest{Name: "Ada 2", Email: "ada@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, service.ErrEmailTaken)

	_, err = env.svc.Auth.Login(ctx, &models.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = env.svc.Auth.Login(ctx, &models.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	resp, err := env.svc.Auth.Login(ctx, &models.LoginRequest{Email: "Ada@Example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	actor, tokenID, err := env.svc.Auth.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.ID)
	assert.Equal(t, models.RoleUser, actor.Role)

	me, err := env.svc.Auth.Me(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.Name)

	require.NoError(t, env.svc.Auth.Logout(ctx, tokenID))
	_, _, err = env.svc.Auth.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestAuth_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Auth.Register(context.Background(), &models.RegisterRequest{Name: "", Email: "not-an-email", Password: "123"})
	require.ErrorIs(t, err, service.ErrInvalidFields)

	var fe *service.FieldsError
	require.True(t, errors.As(err, &fe))
	fields := map[string]bool{}
	for _, f := range fe.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["name"], "name should be reported")
	assert.True(t, fields["email"], "email should be reported")
	assert.True(t, fields["password"], "password should be reported")
}

func TestAuth_AuthenticateRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.svc.Auth.Authenticate(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestAuth_Bootstrap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Auth.Bootstrap(ctx))
	require.NoError(t, env.svc.Auth.Bootstrap(ctx), "second run must be a no-op")

	admin, _ := env.repos.User.GetByEmail(ctx, "root@example.com")
	require.NotNil(t, admin)
	assert.Equal(t, models.RoleSuperAdmin, admin.Role)
	n, _ := env.repos.User.Count(ctx)
	assert.Equal(t, 1, n)
}

func TestUser_DeleteWithTransfer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.addUser(t, "admin", models.RoleAdmin)
	author := env.addUser(t, "author", models.RoleUser)

	blog, err := env.svc.Blog.Create(ctx, author, blogInput("Kept Post"))
	require.NoError(t, err)
	env.sessions.Save(ctx, "jti-author", author.ID, time.Now().Add(time.Hour))

	require.NoError(t, env.svc.User.Delete(ctx, admin, author.ID, true))

	stored, _ := env.repos.Blog.GetByID(ctx, blog.ID)
	require.NotNil(t, stored, "transferred blog must survive")
	assert.Equal(t, admin.ID, stored.AuthorID)
	assert.Equal(t, models.BlogStatusDraft, stored.Status)

	live, _ := env.sessions.Exists(ctx, "jti-author")
	assert.False(t, live, "sessions of the deleted user must be revoked")

	gone, _ := env.repos.User.GetByID(ctx, author.ID)
	assert.Nil(t, gone)
}

func TestUser_DeleteWithoutTransfer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.addUser(t, "admin", models.RoleAdmin)
	author := env.addUser(t, "author", models.RoleUser)

	blog, err := env.svc.Blog.Create(ctx, author, blogInput("Doomed Post"))
	require.NoError(t, err)

	require.NoError(t, env.svc.User.Delete(ctx, admin, author.ID, false))
	stored, _ := env.repos.Blog.GetByID(ctx, blog.ID)
	assert.Nil(t, stored)
}

func TestUser_DeleteRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	super := env.addUser(t, "super", models.RoleSuperAdmin)
	admin := env.addUser(t, "admin", models.RoleAdmin)
	user := env.addUser(t, "user", models.RoleUser)

	tests := []struct {
		name   string
		actor  policy.Actor
		target string
		want   error
	}{
		{"user cannot delete", user, admin.ID, service.ErrNotAuthorized},
		{"admin cannot delete super admin", admin, super.ID, service.ErrNotAuthorized},
		{"admin cannot delete self", admin, admin.ID, service.ErrNotAuthorized},
		{"unknown id", admin, uuid.NewString(), service.ErrNotFound},
		{"malformed id", admin, "nope", service.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.svc.User.Delete(ctx, tt.actor, tt.target, false)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUser_UpdateRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	super := env.addUser(t, "super", models.RoleSuperAdmin)
	admin := env.addUser(t, "admin", models.RoleAdmin)
	user := env.addUser(t, "user", models.RoleUser)

	_, err := env.svc.User.UpdateRole(ctx, admin, user.ID, models.RoleAdmin)
	assert.ErrorIs(t, err, service.ErrNotAuthorized, "only SUPER_ADMIN changes roles")

	_, err = env.svc.User.UpdateRole(ctx, super, super.ID, models.RoleUser)
	assert.ErrorIs(t, err, service.ErrNotAuthorized, "super admin cannot demote self")

	_, err = env.svc.User.UpdateRole(ctx, super, user.ID, "OWNER")
	assert.ErrorIs(t, err, service.ErrInvalidFields)

	env.sessions.Save(ctx, "jti-user", user.ID, time.Now().Add(time.Hour))
	updated, err := env.svc.User.UpdateRole(ctx, super, user.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	live, _ := env.sessions.Exists(ctx, "jti-user")
	assert.False(t, live, "role change ends existing sessions")
}

func TestBlog_CreateByRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "writer", models.RoleUser)
	admin := env.addUser(t, "admin", models.RoleAdmin)

	input := blogInput("User Post")
	input.Status = models.BlogStatusPublished
	blog, err := env.svc.Blog.Create(ctx, user, input)
	require.NoError(t, err)
	assert.Equal(t, models.BlogStatusDraft, blog.Status, "USER blogs start as drafts")
	assert.False(t, blog.Approved)
	assert.Equal(t, "user-post", blog.Slug)
	assert.Equal(t, "Go, testing", blog.Tags)
	assert.Equal(t, 1, env.notifier.Count(), "USER writes notify reviewers")

	input = blogInput("Admin Post")
	input.Status = models.BlogStatusPublished
	input.Categories = []string{"Go", " go ", "Testing"}
	blog, err = env.svc.Blog.Create(ctx, admin, input)
	require.NoError(t, err)
	assert.Equal(t, models.BlogStatusPublished, blog.Status)
	assert.True(t, blog.Approved)
	assert.NotNil(t, blog.PublishedAt)
	assert.Len(t, blog.Categories, 2)
	assert.True(t, env.search.Has(blog.ID), "published blogs are indexed")
	assert.Equal(t, 1, env.notifier.Count())
}

func TestBlog_CreateDuplicateTitle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.addUser(t, "admin", models.RoleAdmin)

	_, err := env.svc.Blog.Create(ctx, admin, blogInput("Same Title"))
	require.NoError(t, err)
	_, err = env.svc.Blog.Create(ctx, admin, blogInput("Same  Title!"))
	assert.ErrorIs(t, err, service.ErrDuplicateBlog)
}

func TestBlog_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	user := env.addUser(t, "writer", models.RoleUser)

	_, err := env.svc.Blog.Create(context.Background(), user, blogInput("   "))
	assert.ErrorIs(t, err, service.ErrInvalidFields)

	_, err = env.svc.Blog.Create(context.Background(), user, blogInput("!!!"))
	assert.ErrorIs(t, err, service.ErrInvalidFields)

	_, err = env.svc.Blog.Create(context.Background(), policy.Actor{}, blogInput("Anon"))
	assert.ErrorIs(t, err, service.ErrNotAuthorized)
}

func TestBlog_PublishRequiresApproval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "writer", models.RoleUser)
	admin := env.addUser(t, "admin", models.RoleAdmin)

	blog, err := env.svc.Blog.Create(ctx, user, blogInput("Needs Review"))
	require.NoError(t, err)

	_, err = env.svc.Blog.Publish(ctx, admin, blog.ID)
	assert.ErrorIs(t, err, service.ErrNotApproved)
	stored, _ := env.repos.Blog.GetByID(ctx, blog.ID)
	assert.Equal(t, models.BlogStatusDraft, stored.Status, "failed publish leaves status unchanged")

	_, err = env.svc.Blog.Approve(ctx, user, blog.ID)
	assert.ErrorIs(t, err, service.ErrNotAuthorized)

	approved, err := env.svc.Blog.Approve(ctx, admin, blog.ID)
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	writes := env.repos.Blog.UpdateCalls
	_, err = env.svc.Blog.Approve(ctx, admin, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, writes, env.repos.Blog.UpdateCalls, "approving twice writes nothing")

	published, err := env.svc.Blog.Publish(ctx, admin, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BlogStatusPublished, published.Status)
	assert.NotNil(t, published.PublishedAt)
	assert.True(t, env.search.Has(blog.ID))
}

func TestBlog_UpdateByUserResetsReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "writer", models.RoleUser)
	other := env.addUser(t, "other", models.RoleUser)
	admin := env.addUser(t, "admin", models.RoleAdmin)

	blog, err := env.svc.Blog.Create(ctx, user, blogInput("Original"))
	require.NoError(t, err)
	_, err = env.svc.Blog.Approve(ctx, admin, blog.ID)
	require.NoError(t, err)
	_, err = env.svc.Blog.Publish(ctx, admin, blog.ID)
	require.NoError(t, err)

	_, err = env.svc.Blog.Update(ctx, other, blog.ID, blogInput("Hijack"))
	assert.ErrorIs(t, err, service.ErrNotAuthorized)

	updated, err := env.svc.Blog.Update(ctx, user, blog.ID, blogInput("Renamed"))
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Slug, "slug follows a changed title")
	assert.Equal(t, models.BlogStatusDraft, updated.Status)
	assert.False(t, updated.Approved)
	assert.False(t, env.search.Has(blog.ID), "unpublished blogs leave the index")
}

func TestBlog_UpdateVersionConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.addUser(t, "admin", models.RoleAdmin)

	blog, err := env.svc.Blog.Create(ctx, admin, blogInput("Versioned"))
	require.NoError(t, err)

	stale := blog.Version + 5
	input := blogInput("Versioned")
	input.Version = &stale
	_, err = env.svc.Blog.Update(ctx, admin, blog.ID, input)
	assert.ErrorIs(t, err, service.ErrConflict)

	current := blog.Version
	input.Version = &current
	updated, err := env.svc.Blog.Update(ctx, admin, blog.ID, input)
	require.NoError(t, err)
	assert.Equal(t, blog.Version+1, updated.Version)
}

func TestBlog_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner", models.RoleUser)
	other := env.addUser(t, "other", models.RoleUser)
	admin := env.addUser(t, "admin", models.RoleAdmin)

	blog, err := env.svc.Blog.Create(ctx, owner, blogInput("Mine"))
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.Blog.Delete(ctx, other, blog.ID), service.ErrNotAuthorized)
	assert.ErrorIs(t, env.svc.Blog.Delete(ctx, admin, uuid.NewString()), service.ErrNotFound)
	require.NoError(t, env.svc.Blog.Delete(ctx, owner, blog.ID))

	second, err := env.svc.Blog.Create(ctx, owner, blogInput("Theirs"))
	require.NoError(t, err)
	require.NoError(t, env.svc.Blog.Delete(ctx, admin, second.ID))
}

func TestBlog_AutoSave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "writer", models.RoleUser)

	title := "Hello, World!"
	first, err := env.svc.Blog.AutoSave(ctx, user, &models.AutoSaveInput{Title: &title})
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "hello-world", first.Slug)

	second, err := env.svc.Blog.AutoSave(ctx, user, &models.AutoSaveInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "hello-world-2", second.Slug)

	untitled, err := env.svc.Blog.AutoSave(ctx, user, &models.AutoSaveInput{})
	require.NoError(t, err)
	stored, _ := env.repos.Blog.GetByID(ctx, untitled.ID)
	assert.Equal(t, models.DefaultDraftTitle, stored.Title)
	assert.Equal(t, "untitled-draft", stored.Slug)

	// only the provided fields change
	desc := "Just the description"
	patched, err := env.svc.Blog.AutoSave(ctx, user, &models.AutoSaveInput{ID: first.ID, Description: &desc})
	require.NoError(t, err)
	assert.False(t, patched.Created)
	assert.Equal(t, "hello-world", patched.Slug)
	assert.Equal(t, first.Version+1, patched.Version)
	stored, _ = env.repos.Blog.GetByID(ctx, first.ID)
	assert.Equal(t, "Hello, World!", stored.Title)
	assert.Equal(t, desc, stored.Description)

	// renaming to its own title keeps the slug
	same := "Hello, World!"
	kept, err := env.svc.Blog.AutoSave(ctx, user, &models.AutoSaveInput{ID: first.ID, Title: &same})
	require.NoError(t, err)
	assert.Equal(t, "hello-world", kept.Slug)

	// JSON null clears content
	withContent, err := env.svc.Blog.AutoSave(ctx, user, &models.AutoSaveInput{ID: first.ID, Content: json.RawMessage(sampleContent)})
	require.NoError(t, err)
	stored, _ = env.repos.Blog.GetByID(ctx, withContent.ID)
	assert.NotEmpty(t, stored.Content)
	_, err = env.svc.Blog.AutoSave(ctx, user, &models.AutoSaveInput{ID: first.ID, Content: json.RawMessage("null")})
	require.NoError(t, err)
	stored, _ = env.repos.Blog.GetByID(ctx, first.ID)
	assert.Empty(t, stored.Content)

	stale := 1
	_, err = env.svc.Blog.AutoSave(ctx, user, &models.AutoSaveInput{ID: first.ID, Description: &desc, Version: &stale})
	assert.ErrorIs(t, err, service.ErrConflict)

	other := env.addUser(t, "other", models.RoleUser)
	_, err = env.svc.Blog.AutoSave(ctx, other, &models.AutoSaveInput{ID: first.ID, Description: &desc})
	assert.ErrorIs(t, err, service.ErrNotAuthorized)
}

func TestBlog_AutoSaveKeepsSearchIndexFresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "writer", models.RoleUser)
	admin := env.addUser(t, "admin", models.RoleAdmin)

	blog, err := env.svc.Blog.Create(ctx, user, blogInput("Original Title"))
	require.NoError(t, err)
	_, err = env.svc.Blog.Approve(ctx, admin, blog.ID)
	require.NoError(t, err)
	_, err = env.svc.Blog.Publish(ctx, admin, blog.ID)
	require.NoError(t, err)
	require.True(t, env.search.Has(blog.ID))

	title := "Edited By Admin"
	_, err = env.svc.Blog.AutoSave(ctx, admin, &models.AutoSaveInput{ID: blog.ID, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Edited By Admin", env.search.Records[blog.ID].Title)

	// a USER edit sends the post back to draft and out of the index
	_, err = env.svc.Blog.AutoSave(ctx, user, &models.AutoSaveInput{ID: blog.ID, Title: &title})
	require.NoError(t, err)
	assert.False(t, env.search.Has(blog.ID))
}

func TestBlog_PublicListingAndDetail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.addUser(t, "admin", models.RoleAdmin)
	user := env.addUser(t, "writer", models.RoleUser)

	for _, title := range []string{"First Public", "Second Public"} {
		input := blogInput(title)
		input.Status = models.BlogStatusPublished
		input.Categories = []string{"golang"}
		_, err := env.svc.Blog.Create(ctx, admin, input)
		require.NoError(t, err)
	}
	_, err := env.svc.Blog.Create(ctx, user, blogInput("Hidden Draft"))
	require.NoError(t, err)

	page, err := env.svc.Blog.ListPublished(ctx, models.BlogFilter{Status: models.BlogStatusDraft})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total, "status filter cannot expose drafts")
	assert.Equal(t, 10, page.Limit)

	page, err = env.svc.Blog.ListPublished(ctx, models.BlogFilter{Category: "GOLANG", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Blogs, 1)
	assert.Equal(t, 2, page.TotalPages)

	page, err = env.svc.Blog.ListPublished(ctx, models.BlogFilter{Query: "second"})
	require.NoError(t, err)
	require.Len(t, page.Blogs, 1)
	assert.Equal(t, "Second Public", page.Blogs[0].Title)

	// the database answers when the index is down
	env.search.Unavailable = true
	page, err = env.svc.Blog.ListPublished(ctx, models.BlogFilter{Query: "second"})
	require.NoError(t, err)
	require.Len(t, page.Blogs, 1)

	detail, err := env.svc.Blog.GetPublished(ctx, "first-public")
	require.NoError(t, err)
	assert.Contains(t, detail.HTML, "<p>Hello there</p>")
	assert.Equal(t, int64(1), detail.Views)
	assert.GreaterOrEqual(t, detail.ReadingTime, 1)

	_, err = env.svc.Blog.GetPublished(ctx, "hidden-draft")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestBlog_ListMineAndAll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.addUser(t, "admin", models.RoleAdmin)
	user := env.addUser(t, "writer", models.RoleUser)

	_, err := env.svc.Blog.Create(ctx, user, blogInput("Mine One"))
	require.NoError(t, err)
	_, err = env.svc.Blog.Create(ctx, admin, blogInput("Admin One"))
	require.NoError(t, err)

	mine, err := env.svc.Blog.ListMine(ctx, user, models.BlogFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, mine.Total)

	_, err = env.svc.Blog.ListAll(ctx, user, models.BlogFilter{})
	assert.ErrorIs(t, err, service.ErrNotAuthorized)

	all, err := env.svc.Blog.ListAll(ctx, admin, models.BlogFilter{Status: models.BlogStatusDraft})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	_, err = env.svc.Blog.ListAll(ctx, admin, models.BlogFilter{Status: "deleted"})
	assert.ErrorIs(t, err, service.ErrInvalidFields)
}

func TestBlog_Reindex(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.addUser(t, "admin", models.RoleAdmin)

	input := blogInput("Indexed")
	input.Status = models.BlogStatusPublished
	blog, err := env.svc.Blog.Create(ctx, admin, input)
	require.NoError(t, err)
	env.search.Remove(blog.ID)

	n, err := env.svc.Blog.Reindex(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, env.search.Has(blog.ID))
}

func TestCategory_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.addUser(t, "admin", models.RoleAdmin)
	user := env.addUser(t, "writer", models.RoleUser)

	_, err := env.svc.Category.Create(ctx, user, &models.CategoryInput{Name: "Go"})
	assert.ErrorIs(t, err, service.ErrNotAuthorized)

	cat, err := env.svc.Category.Create(ctx, admin, &models.CategoryInput{Name: "  Web Dev "})
	require.NoError(t, err)
	assert.Equal(t, "web dev", cat.Name)
	assert.Equal(t, "web-dev", cat.Slug)

	_, err = env.svc.Category.Create(ctx, admin, &models.CategoryInput{Name: "WEB DEV"})
	assert.ErrorIs(t, err, service.ErrCategoryExists)

	renamed, err := env.svc.Category.Update(ctx, admin, cat.ID, &models.CategoryInput{Name: "Frontend"})
	require.NoError(t, err)
	assert.Equal(t, "frontend", renamed.Slug)

	list, err := env.svc.Category.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, env.svc.Category.Delete(ctx, admin, cat.ID))
	assert.ErrorIs(t, env.svc.Category.Delete(ctx, admin, cat.ID), service.ErrNotFound)
}

func TestPrompt_DefaultsAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.addUser(t, "admin", models.RoleAdmin)
	user := env.addUser(t, "writer", models.RoleUser)

	p, err := env.svc.Prompt.Get(ctx, admin, models.PromptImage)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPrompts[models.PromptImage], p.Text)

	_, err = env.svc.Prompt.Get(ctx, user, models.PromptImage)
	assert.ErrorIs(t, err, service.ErrNotAuthorized)

	_, err = env.svc.Prompt.Get(ctx, admin, "UNKNOWN")
	assert.ErrorIs(t, err, service.ErrNotFound)

	updated, err := env.svc.Prompt.Update(ctx, admin, models.PromptImage, &models.PromptInput{Text: "Draw a fox"})
	require.NoError(t, err)
	assert.Equal(t, "Draw a fox", updated.Text)

	list, err := env.svc.Prompt.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, list, len(models.ValidPromptKeys))
}
