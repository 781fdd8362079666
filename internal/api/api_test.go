package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/portfolio-blog-api/internal/api"
	"github.com/portfolio-blog-api/internal/auth"
	"github.com/portfolio-blog-api/internal/config"
	"github.com/portfolio-blog-api/internal/mocks"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/policy"
	"github.com/portfolio-blog-api/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "secret123"

type testServer struct {
	router   *gin.Engine
	repos    *mocks.MockRepositories
	storage  *mocks.MockObjectStorage
	export   *mocks.MockExportService
	jobs     *mocks.MockGenerationService
	services *service.Services
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "8080"},
		Auth:   config.AuthConfig{JWTSecret: "api-test-secret", TokenTTL: time.Hour, Issuer: "portfolio-blog-api"},
		Upload: config.UploadConfig{
			MaxSize:      256 << 10,
			AllowedTypes: []string{"image/png", "image/jpeg", "image/gif", "image/webp"},
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

// setupTestRouter wires real services over in-memory repositories. Export and
// generation are replaced by mocks so their tests don't depend on streaming
// or the background processor.
func setupTestRouter(t *testing.T, checks ...api.HealthCheck) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	repos := mocks.NewMockRepositories()
	store := mocks.NewMockObjectStorage()

	services := service.NewServices(service.Deps{
		Repos:    repos.Repositories(),
		Config:   cfg,
		Log:      zerolog.Nop(),
		Tokens:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer),
		Sessions: mocks.NewMockSessionStore(),
		Storage:  store,
		Text:     &mocks.MockTextGenerator{},
		Images:   &mocks.MockImageGenerator{},
		Search:   mocks.NewMockSearchIndex(),
		Notifier: &mocks.MockNotifier{},
	})

	ts := &testServer{
		repos:    repos,
		storage:  store,
		export:   mocks.NewMockExportService(),
		jobs:     mocks.NewMockGenerationService(),
		services: services,
	}
	services.Export = ts.export
	services.Generation = ts.jobs

	ts.router = api.NewRouter(services, cfg, zerolog.Nop(), checks...)
	return ts
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// addUser stores an account with role and logs it in
func (s *testServer) addUser(t *testing.T, name string, role models.Role) (string, policy.Actor) {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)

	user := &models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     strings.ToLower(name) + "@example.com",
		Password:  hash,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, s.repos.User.Create(context.Background(), user))

	w := s.do("POST", "/api/auth/login", "", models.LoginRequest{Email: user.Email, Password: testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token, policy.Actor{ID: user.ID, Name: user.Name, Email: user.Email, Role: role}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestRouter(t, api.HealthCheck{Name: "database", Check: func(ctx context.Context) error { return nil }})

	w := ts.do("GET", "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := decode(t, w)
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "portfolio-blog-api", response["service"])
	checks, _ := response["checks"].(map[string]interface{})
	assert.Equal(t, "ok", checks["database"])
}

func TestHealthEndpoint_DatabaseDown(t *testing.T) {
	ts := setupTestRouter(t, api.HealthCheck{Name: "database", Check: func(ctx context.Context) error {
		return errors.New("connection refused")
	}})

	w := ts.do("GET", "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", decode(t, w)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestRouter(t)
	ts.export.Counts["users"] = 12
	ts.export.Counts["blogs"] = 34
	ts.export.Counts["slang"] = 5

	w := ts.do("GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	db, _ := decode(t, w)["database"].(map[string]interface{})
	assert.Equal(t, float64(12), db["users"])
	assert.Equal(t, float64(34), db["blogs"])
	assert.Equal(t, float64(5), db["slang"])
}

func TestCORSHeaders(t *testing.T) {
	ts := setupTestRouter(t)

	req := httptest.NewRequest("OPTIONS", "/api/blogs", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestAuthFlow(t *testing.T) {
	ts := setupTestRouter(t)

	w := ts.do("POST", "/api/auth/register", "", models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")

	w = ts.do("POST", "/api/auth/register", "", models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already in use", decode(t, w)["error"])

	w = ts.do("POST", "/api/auth/login", "", models.LoginRequest{Email: "ada@example.com", Password: "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do("POST", "/api/auth/login", "", models.LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)

	w = ts.do("GET", "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada@example.com", decode(t, w)["email"])

	w = ts.do("POST", "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do("GET", "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	ts := setupTestRouter(t)

	w := ts.do("POST", "/api/auth/register", "", models.RegisterRequest{Name: "", Email: "not-an-email", Password: "123"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Invalid Fields", body["error"])
	fields, _ := body["fields"].([]interface{})
	assert.NotEmpty(t, fields)

	req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	ts := setupTestRouter(t)

	routes := []struct {
		method string
		path   string
	}{
		{"POST", "/api/blogs"},
		{"POST", "/api/blogs/autosave"},
		{"GET", "/api/blogs/mine"},
		{"DELETE", "/api/blogs/some-id"},
		{"POST", "/api/ai/generate-blog"},
		{"GET", "/api/ai/job/some-id"},
		{"POST", "/api/upload"},
		{"GET", "/api/admin/users"},
		{"GET", "/api/admin/export"},
		{"PATCH", "/api/admin/slang/some-id"},
	}

	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			w := ts.do(r.method, r.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = ts.do(r.method, r.path, "garbage.token.value", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAdminRoutesForbidUsers(t *testing.T) {
	ts := setupTestRouter(t)
	token, _ := ts.addUser(t, "Writer", models.RoleUser)

	for _, path := range []string{"/api/admin/users", "/api/admin/blogs", "/api/admin/slang", "/api/admin/prompts"} {
		w := ts.do("GET", path, token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		assert.Equal(t, "Not Authorized", decode(t, w)["error"])
	}
}

func TestBlogWorkflow(t *testing.T) {
	ts := setupTestRouter(t)
	userToken, _ := ts.addUser(t, "Writer", models.RoleUser)
	adminToken, _ := ts.addUser(t, "Editor", models.RoleAdmin)

	input := models.BlogInput{
		Title:       "Hello World",
		Description: "First post",
		Content:     json.RawMessage(`{"blocks":[{"type":"paragraph","data":{"text":"Hi"}}]}`),
		Tags:        "go",
	}
	w := ts.do("POST", "/api/blogs", userToken, input)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var blog models.Blog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blog))
	assert.Equal(t, "hello-world", blog.Slug)
	assert.Equal(t, models.BlogStatusDraft, blog.Status)
	assert.False(t, blog.Approved)

	w = ts.do("POST", "/api/blogs", userToken, input)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Not visible until approved and published
	w = ts.do("GET", "/api/blog/hello-world", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do("POST", "/api/blogs/"+blog.ID+"/approve", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do("POST", "/api/blogs/"+blog.ID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do("POST", "/api/blogs/"+blog.ID+"/publish", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do("GET", "/api/blog/hello-world", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w)["html"], "<p>Hi</p>")

	w = ts.do("GET", "/api/blog?page=1&limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = ts.do("GET", "/api/blogs/mine", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = ts.do("GET", "/api/admin/blogs?status=published", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = ts.do("DELETE", "/api/blogs/"+blog.ID, userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do("GET", "/api/blogs/"+blog.ID, userToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublishUnapprovedBlog(t *testing.T) {
	ts := setupTestRouter(t)
	userToken, _ := ts.addUser(t, "Writer", models.RoleUser)
	adminToken, _ := ts.addUser(t, "Editor", models.RoleAdmin)

	w := ts.do("POST", "/api/blogs", userToken, models.BlogInput{Title: "Pending Review"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, _ := decode(t, w)["id"].(string)

	w = ts.do("POST", "/api/blogs/"+id+"/publish", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrNotApproved.Error(), decode(t, w)["error"])
}

func TestAutoSave(t *testing.T) {
	ts := setupTestRouter(t)
	token, _ := ts.addUser(t, "Writer", models.RoleUser)

	title := "Draft In Progress"
	w := ts.do("POST", "/api/blogs/autosave", token, models.AutoSaveInput{Title: &title})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var saved models.AutoSaveResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.True(t, saved.Created)
	assert.Equal(t, "draft-in-progress", saved.Slug)

	desc := "more words"
	w = ts.do("POST", "/api/blogs/autosave", token, models.AutoSaveInput{ID: saved.ID, Description: &desc, Version: &saved.Version})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stale := saved.Version
	w = ts.do("POST", "/api/blogs/autosave", token, models.AutoSaveInput{ID: saved.ID, Description: &desc, Version: &stale})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCategories(t *testing.T) {
	ts := setupTestRouter(t)
	adminToken, _ := ts.addUser(t, "Editor", models.RoleAdmin)

	w := ts.do("POST", "/api/admin/categories", adminToken, models.CategoryInput{Name: "Golang"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, _ := decode(t, w)["id"].(string)

	w = ts.do("POST", "/api/admin/categories", adminToken, models.CategoryInput{Name: "GOLANG"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do("PUT", "/api/admin/categories/"+id, adminToken, models.CategoryInput{Name: "Go"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "go", decode(t, w)["name"])

	w = ts.do("GET", "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	categories, _ := decode(t, w)["categories"].([]interface{})
	assert.Len(t, categories, 1)

	w = ts.do("DELETE", "/api/admin/categories/"+id, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSlangModeration(t *testing.T) {
	ts := setupTestRouter(t)
	adminToken, _ := ts.addUser(t, "Editor", models.RoleAdmin)

	// Guests may submit
	w := ts.do("POST", "/api/slang", "", models.SlangInput{Term: "Vibez", Meaning: "good energy"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	term := decode(t, w)
	assert.Equal(t, "vibez", term["term"])
	assert.Equal(t, "pending", term["status"])
	id, _ := term["id"].(string)

	w = ts.do("GET", "/api/slang", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["total"])

	w = ts.do("PATCH", "/api/admin/slang/"+id, adminToken, models.SlangActionRequest{Action: models.SlangActionApprove})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "approved", decode(t, w)["status"])

	w = ts.do("PATCH", "/api/admin/slang/"+id, adminToken, models.SlangActionRequest{Action: models.SlangActionFeature})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do("GET", "/api/slang?featured=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = ts.do("PATCH", "/api/admin/slang/"+id, adminToken, map[string]string{"action": "explode"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do("DELETE", "/api/admin/slang/"+id, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do("GET", "/api/admin/slang/"+id, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerationEndpoints(t *testing.T) {
	ts := setupTestRouter(t)
	ownerToken, _ := ts.addUser(t, "Writer", models.RoleUser)
	otherToken, _ := ts.addUser(t, "Reader", models.RoleUser)
	adminToken, _ := ts.addUser(t, "Editor", models.RoleAdmin)

	w := ts.do("POST", "/api/ai/generate-blog", ownerToken, models.BlogGenerationRequest{Topic: "Go channels"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	jobID, _ := decode(t, w)["jobId"].(string)
	require.NotEmpty(t, jobID)

	w = ts.do("GET", "/api/ai/job/"+jobID, ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PENDING", decode(t, w)["status"])

	w = ts.do("GET", "/api/ai/job/"+jobID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do("GET", "/api/ai/job/"+jobID, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do("GET", "/api/ai/job/missing", ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do("POST", "/api/ai/generate-image", ownerToken, models.ImageGenerationRequest{Prompt: "a lighthouse"})
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func upload(ts *testServer, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func TestUploadEndpoint(t *testing.T) {
	ts := setupTestRouter(t)
	token, _ := ts.addUser(t, "Writer", models.RoleUser)

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	body, ct := multipartBody(t, "image", "banner.png", png)
	w := upload(ts, token, body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	result := decode(t, w)
	key, _ := result["key"].(string)
	assert.True(t, strings.HasPrefix(key, "uploads/"), key)
	assert.Equal(t, "https://cdn.test/"+key, result["url"])
	assert.Len(t, ts.storage.Keys("uploads/"), 1)

	// "file" is accepted as the field name too
	body, ct = multipartBody(t, "file", "banner.png", png)
	w = upload(ts, token, body, ct)
	assert.Equal(t, http.StatusCreated, w.Code)

	body, ct = multipartBody(t, "image", "evil.png", []byte("<script>alert(1)</script>"))
	w = upload(ts, token, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, ct = multipartBody(t, "other", "banner.png", png)
	w = upload(ts, token, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	otherToken, _ := ts.addUser(t, "Other", models.RoleUser)
	w = ts.do("DELETE", "/api/upload", otherToken, map[string]string{"key": key})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Len(t, ts.storage.Keys("uploads/"), 2)

	w = ts.do("DELETE", "/api/upload", token, map[string]string{"key": key})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, ts.storage.Keys("uploads/"), 1)

	w = ts.do("DELETE", "/api/upload", token, map[string]string{"key": "../etc/passwd"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadTooLarge(t *testing.T) {
	ts := setupTestRouter(t)
	token, _ := ts.addUser(t, "Writer", models.RoleUser)

	big := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{1}, 512<<10)...)
	body, ct := multipartBody(t, "image", "huge.png", big)
	w := upload(ts, token, body, ct)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Empty(t, ts.storage.Keys("uploads/"))
}

func TestUserAdministration(t *testing.T) {
	ts := setupTestRouter(t)
	writerToken, writer := ts.addUser(t, "Writer", models.RoleUser)
	adminToken, admin := ts.addUser(t, "Editor", models.RoleAdmin)
	rootToken, root := ts.addUser(t, "Root", models.RoleSuperAdmin)

	w := ts.do("POST", "/api/blogs", writerToken, models.BlogInput{Title: "Keep Me"})
	require.Equal(t, http.StatusCreated, w.Code)
	blogID, _ := decode(t, w)["id"].(string)

	w = ts.do("GET", "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	users, _ := decode(t, w)["users"].([]interface{})
	assert.Len(t, users, 3)

	w = ts.do("PUT", "/api/admin/users/"+writer.ID+"/role", adminToken, models.UpdateRoleRequest{Role: models.RoleAdmin})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do("DELETE", "/api/admin/users/"+root.ID, adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do("DELETE", "/api/admin/users/"+writer.ID+"?transferBlogs=true", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	blog, err := ts.repos.Blog.GetByID(context.Background(), blogID)
	require.NoError(t, err)
	require.NotNil(t, blog)
	assert.Equal(t, admin.ID, blog.AuthorID)

	w = ts.do("PUT", "/api/admin/users/"+admin.ID+"/role", rootToken, models.UpdateRoleRequest{Role: models.RoleUser})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "USER", decode(t, w)["role"])
}

func TestPrompts(t *testing.T) {
	ts := setupTestRouter(t)
	adminToken, _ := ts.addUser(t, "Editor", models.RoleAdmin)

	w := ts.do("GET", "/api/admin/prompts/BLOG_DETAILED", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DefaultPrompts[models.PromptBlogDetailed], decode(t, w)["text"])

	w = ts.do("PUT", "/api/admin/prompts/BLOG_DETAILED", adminToken, models.PromptInput{Text: "Write long posts."})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do("GET", "/api/admin/prompts/BLOG_DETAILED", adminToken, nil)
	assert.Equal(t, "Write long posts.", decode(t, w)["text"])

	w = ts.do("GET", "/api/admin/prompts/NOPE", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportStream(t *testing.T) {
	ts := setupTestRouter(t)
	adminToken, _ := ts.addUser(t, "Editor", models.RoleAdmin)

	var gotResource, gotFormat string
	ts.export.StreamFunc = func(ctx context.Context, actor policy.Actor, w http.ResponseWriter, resource, format string) error {
		if !actor.IsAdmin() {
			return service.ErrNotAuthorized
		}
		if resource != "users" {
			return &service.FieldsError{Fields: []models.ValidationError{{Field: "resource", Message: "unknown"}}}
		}
		gotResource, gotFormat = resource, format
		w.Header().Set("Content-Type", "application/x-ndjson")
		_, err := w.Write([]byte(`{"id":"1"}` + "\n"))
		return err
	}

	w := ts.do("GET", "/api/admin/export?resource=users&format=ndjson", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))
	assert.Equal(t, "users", gotResource)
	assert.Equal(t, "ndjson", gotFormat)

	w = ts.do("GET", "/api/admin/export?resource=comments", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Fields", decode(t, w)["error"])

	writerToken, _ := ts.addUser(t, "Writer", models.RoleUser)
	w = ts.do("GET", "/api/admin/export?resource=users", writerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExportStream_FailureAfterStart(t *testing.T) {
	ts := setupTestRouter(t)
	adminToken, _ := ts.addUser(t, "Editor", models.RoleAdmin)

	ts.export.StreamFunc = func(ctx context.Context, actor policy.Actor, w http.ResponseWriter, resource, format string) error {
		w.Write([]byte("[{\"id\":\"1\"}"))
		return errors.New("connection reset")
	}

	w := ts.do("GET", "/api/admin/export?resource=users&format=json", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "error")
}

func TestUnknownRoute(t *testing.T) {
	ts := setupTestRouter(t)

	w := ts.do("GET", "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found", decode(t, w)["error"])
}
