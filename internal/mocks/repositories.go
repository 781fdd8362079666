package mocks

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/repository"
)

// Repository mocks keep rows in maps and hand out copies so callers can't
// mutate stored state without going through a write method.

func uniqueViolation(constraint string) error {
	return &pq.Error{Code: "23505", Constraint: constraint}
}

// MockRepositories bundles linked repository mocks sharing one lock
type MockRepositories struct {
	User     *MockUserRepository
	Blog     *MockBlogRepository
	Category *MockCategoryRepository
	Slang    *MockSlangRepository
	Job      *MockJobRepository
	Prompt   *MockPromptRepository
}

// NewMockRepositories creates a full set of mocks. Blogs resolve author
// names and categories through the sibling mocks the way the SQL joins do.
func NewMockRepositories() *MockRepositories {
	mu := &sync.Mutex{}
	users := NewMockUserRepository()
	blogs := NewMockBlogRepository()
	categories := NewMockCategoryRepository()
	users.mu, blogs.mu, categories.mu = mu, mu, mu
	users.blogs = blogs
	blogs.users = users
	blogs.categories = categories

	return &MockRepositories{
		User:     users,
		Blog:     blogs,
		Category: categories,
		Slang:    NewMockSlangRepository(),
		Job:      NewMockJobRepository(),
		Prompt:   NewMockPromptRepository(),
	}
}

// Repositories returns the mocks behind the repository interfaces
func (m *MockRepositories) Repositories() *repository.Repositories {
	return &repository.Repositories{
		User:     m.User,
		Blog:     m.Blog,
		Category: m.Category,
		Slang:    m.Slang,
		Job:      m.Job,
		Prompt:   m.Prompt,
	}
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mu          *sync.Mutex
	blogs       *MockBlogRepository
	Users       map[string]*models.User
	InsertError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		mu:    &sync.Mutex{},
		Users: make(map[string]*models.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	for _, u := range m.Users {
		if u.Email == user.Email {
			return uniqueViolation("users_email_key")
		}
	}
	stored := *user
	m.Users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	u, err := m.GetByEmail(ctx, email)
	return u != nil, err
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]*models.User, 0, len(m.Users))
	for _, u := range m.Users {
		out := *u
		users = append(users, &out)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return nil
}

// Delete mirrors the transactional SQL: nothing changes when the user is missing
func (m *MockUserRepository) Delete(ctx context.Context, id, transferTo string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[id]; !ok {
		return nil, repository.ErrNotFound
	}

	var blogIDs []string
	if m.blogs != nil {
		for blogID, b := range m.blogs.Blogs {
			if b.AuthorID != id {
				continue
			}
			blogIDs = append(blogIDs, blogID)
			if transferTo != "" {
				b.AuthorID = transferTo
				b.Status = models.BlogStatusDraft
				b.Version++
				b.UpdatedAt = time.Now()
			} else {
				delete(m.blogs.Blogs, blogID)
				delete(m.blogs.Links, blogID)
			}
		}
	}
	delete(m.Users, id)
	sort.Strings(blogIDs)
	return blogIDs, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Users), nil
}

func (m *MockUserRepository) StreamAll(ctx context.Context, callback func(*models.User) error) error {
	users, _ := m.List(ctx)
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	for _, u := range users {
		if err := callback(u); err != nil {
			return err
		}
	}
	return nil
}

// MockBlogRepository is a mock implementation of BlogRepository
type MockBlogRepository struct {
	mu          *sync.Mutex
	users       *MockUserRepository
	categories  *MockCategoryRepository
	Blogs       map[string]*models.Blog
	Links       map[string][]string
	InsertError error
	UpdateCalls int
}

func NewMockBlogRepository() *MockBlogRepository {
	return &MockBlogRepository{
		mu:    &sync.Mutex{},
		Blogs: make(map[string]*models.Blog),
		Links: make(map[string][]string),
	}
}

// view copies a stored blog and fills the joined fields. Caller holds mu.
func (m *MockBlogRepository) view(b *models.Blog) *models.Blog {
	out := *b
	out.Content = append(json.RawMessage(nil), b.Content...)
	if len(out.Content) == 0 {
		out.Content = nil
	}
	if b.PublishedAt != nil {
		t := *b.PublishedAt
		out.PublishedAt = &t
	}
	if m.users != nil {
		if u, ok := m.users.Users[b.AuthorID]; ok {
			out.AuthorName = u.Name
		}
	}
	out.Categories = []models.Category{}
	if m.categories != nil {
		for _, id := range m.Links[b.ID] {
			if c, ok := m.categories.Categories[id]; ok {
				out.Categories = append(out.Categories, *c)
			}
		}
		sort.Slice(out.Categories, func(i, j int) bool { return out.Categories[i].Name < out.Categories[j].Name })
	}
	return &out
}

func (m *MockBlogRepository) slugTaken(slug, except string) bool {
	for id, b := range m.Blogs {
		if b.Slug == slug && id != except {
			return true
		}
	}
	return false
}

func (m *MockBlogRepository) Create(ctx context.Context, blog *models.Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	if m.slugTaken(blog.Slug, "") {
		return uniqueViolation("blogs_slug_key")
	}
	stored := *blog
	stored.Categories = nil
	if stored.Version == 0 {
		stored.Version = 1
	}
	m.Blogs[blog.ID] = &stored
	return nil
}

func (m *MockBlogRepository) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.Blogs[id]; ok {
		return m.view(b), nil
	}
	return nil, nil
}

func (m *MockBlogRepository) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.Blogs {
		if b.Slug == slug {
			return m.view(b), nil
		}
	}
	return nil, nil
}

func (m *MockBlogRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blogs := []*models.Blog{}
	for _, id := range ids {
		if b, ok := m.Blogs[id]; ok {
			blogs = append(blogs, m.view(b))
		}
	}
	return blogs, nil
}

func (m *MockBlogRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slugTaken(slug, ""), nil
}

func (m *MockBlogRepository) Update(ctx context.Context, id string, upd repository.BlogUpdate, expectedVersion *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++

	b, ok := m.Blogs[id]
	if !ok {
		return repository.ErrNotFound
	}
	if expectedVersion != nil && *expectedVersion != b.Version {
		return repository.ErrVersionConflict
	}
	if upd.Slug != nil && m.slugTaken(*upd.Slug, id) {
		return uniqueViolation("blogs_slug_key")
	}

	next := *b
	if upd.Title != nil {
		next.Title = *upd.Title
	}
	if upd.Slug != nil {
		next.Slug = *upd.Slug
	}
	if upd.Description != nil {
		next.Description = *upd.Description
	}
	if upd.Content != nil {
		if string(upd.Content) == "null" {
			next.Content = nil
		} else {
			next.Content = append(json.RawMessage(nil), upd.Content...)
		}
	}
	if upd.Banner != nil {
		next.Banner = *upd.Banner
	}
	if upd.Tags != nil {
		next.Tags = *upd.Tags
	}
	if upd.Status != nil {
		next.Status = *upd.Status
	}
	if upd.Approved != nil {
		next.Approved = *upd.Approved
	}
	if upd.AuthorID != nil {
		next.AuthorID = *upd.AuthorID
	}
	now := time.Now()
	if upd.MarkPublished && next.PublishedAt == nil {
		next.PublishedAt = &now
	}
	// blogs_published_requires_approval
	if next.Status == models.BlogStatusPublished && !next.Approved {
		return &pq.Error{Code: "23514", Constraint: "blogs_published_requires_approval"}
	}
	next.Version++
	next.UpdatedAt = now
	m.Blogs[id] = &next
	return nil
}

func (m *MockBlogRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Blogs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Blogs, id)
	delete(m.Links, id)
	return nil
}

func (m *MockBlogRepository) matches(b *models.Blog, filter models.BlogFilter) bool {
	if filter.Public {
		if !b.IsPublic() {
			return false
		}
	} else if filter.Status != "" && b.Status != filter.Status {
		return false
	}
	if filter.AuthorID != "" && b.AuthorID != filter.AuthorID {
		return false
	}
	if filter.Category != "" {
		if m.categories == nil {
			return false
		}
		want := strings.ToLower(filter.Category)
		found := false
		for _, id := range m.Links[b.ID] {
			if c, ok := m.categories.Categories[id]; ok && (c.Name == want || c.Slug == want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Query != "" {
		q := strings.ToLower(filter.Query)
		if !strings.Contains(strings.ToLower(b.Title), q) &&
			!strings.Contains(strings.ToLower(b.Description), q) &&
			!strings.Contains(strings.ToLower(b.Tags), q) {
			return false
		}
	}
	return true
}

func (m *MockBlogRepository) List(ctx context.Context, filter models.BlogFilter) ([]*models.Blog, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*models.Blog
	for _, b := range m.Blogs {
		if m.matches(b, filter) {
			matched = append(matched, m.view(b))
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if filter.Public {
			pi, pj := matched[i].PublishedAt, matched[j].PublishedAt
			if pi != nil && pj != nil && !pi.Equal(*pj) {
				return pi.After(*pj)
			}
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	total := len(matched)
	if filter.Limit > 0 {
		start := filter.Offset()
		if start > total {
			start = total
		}
		end := start + filter.Limit
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	if matched == nil {
		matched = []*models.Blog{}
	}
	return matched, total, nil
}

func (m *MockBlogRepository) IncrementViews(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.Blogs[id]; ok {
		b.Views++
	}
	return nil
}

func (m *MockBlogRepository) SetCategories(ctx context.Context, blogID string, categoryIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Links[blogID] = append([]string(nil), categoryIDs...)
	return nil
}

func (m *MockBlogRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Blogs), nil
}

func (m *MockBlogRepository) StreamAll(ctx context.Context, callback func(*models.Blog) error) error {
	m.mu.Lock()
	blogs := make([]*models.Blog, 0, len(m.Blogs))
	for _, b := range m.Blogs {
		out := *b
		out.Categories = []models.Category{}
		blogs = append(blogs, &out)
	}
	m.mu.Unlock()

	sort.Slice(blogs, func(i, j int) bool { return blogs[i].CreatedAt.Before(blogs[j].CreatedAt) })
	for _, b := range blogs {
		if err := callback(b); err != nil {
			return err
		}
	}
	return nil
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	mu         *sync.Mutex
	Categories map[string]*models.Category
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		mu:         &sync.Mutex{},
		Categories: make(map[string]*models.Category),
	}
}

func (m *MockCategoryRepository) conflict(c *models.Category) error {
	for id, existing := range m.Categories {
		if id == c.ID {
			continue
		}
		if existing.Name == c.Name {
			return uniqueViolation("categories_name_key")
		}
		if existing.Slug == c.Slug {
			return uniqueViolation("categories_slug_key")
		}
	}
	return nil
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conflict(category); err != nil {
		return err
	}
	stored := *category
	m.Categories[category.ID] = &stored
	return nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.Categories[id]; ok {
		out := *c
		return &out, nil
	}
	return nil, nil
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	categories := make([]*models.Category, 0, len(m.Categories))
	for _, c := range m.Categories {
		out := *c
		categories = append(categories, &out)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Categories[category.ID]; !ok {
		return repository.ErrNotFound
	}
	if err := m.conflict(category); err != nil {
		return err
	}
	stored := *category
	m.Categories[category.ID] = &stored
	return nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Categories, id)
	return nil
}

func (m *MockCategoryRepository) FindOrCreate(ctx context.Context, categories []models.Category) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]models.Category, 0, len(categories))
	for _, c := range categories {
		var found *models.Category
		for _, existing := range m.Categories {
			if existing.Name == c.Name {
				found = existing
				break
			}
		}
		if found == nil {
			nc := c
			m.Categories[c.ID] = &nc
			found = &nc
		}
		stored = append(stored, *found)
	}
	return stored, nil
}

// MockSlangRepository is a mock implementation of SlangRepository
type MockSlangRepository struct {
	mu    sync.Mutex
	Terms map[string]*models.SlangTerm
}

func NewMockSlangRepository() *MockSlangRepository {
	return &MockSlangRepository{Terms: make(map[string]*models.SlangTerm)}
}

func (m *MockSlangRepository) termTaken(term, except string) bool {
	for id, t := range m.Terms {
		if t.Term == term && id != except {
			return true
		}
	}
	return false
}

func (m *MockSlangRepository) Create(ctx context.Context, term *models.SlangTerm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.termTaken(term.Term, "") {
		return uniqueViolation("slang_terms_term_key")
	}
	stored := *term
	m.Terms[term.ID] = &stored
	return nil
}

func (m *MockSlangRepository) GetByID(ctx context.Context, id string) (*models.SlangTerm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.Terms[id]; ok {
		out := *t
		return &out, nil
	}
	return nil, nil
}

func (m *MockSlangRepository) TermExists(ctx context.Context, term string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.termTaken(term, ""), nil
}

func (m *MockSlangRepository) List(ctx context.Context, filter models.SlangFilter) ([]*models.SlangTerm, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := strings.ToLower(filter.Query)
	terms := []*models.SlangTerm{}
	for _, t := range m.Terms {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		if filter.Featured != nil && t.IsFeatured != *filter.Featured {
			continue
		}
		if q != "" && !strings.Contains(t.Term, q) && !strings.Contains(strings.ToLower(t.Meaning), q) {
			continue
		}
		out := *t
		terms = append(terms, &out)
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].IsFeatured != terms[j].IsFeatured {
			return terms[i].IsFeatured
		}
		return terms[i].Term < terms[j].Term
	})

	total := len(terms)
	if filter.Limit > 0 {
		start := filter.Offset()
		if start > total {
			start = total
		}
		end := start + filter.Limit
		if end > total {
			end = total
		}
		terms = terms[start:end]
	}
	return terms, total, nil
}

func (m *MockSlangRepository) Update(ctx context.Context, term *models.SlangTerm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Terms[term.ID]; !ok {
		return repository.ErrNotFound
	}
	if m.termTaken(term.Term, term.ID) {
		return uniqueViolation("slang_terms_term_key")
	}
	stored := m.Terms[term.ID]
	stored.Term = term.Term
	stored.Meaning = term.Meaning
	stored.Example = term.Example
	stored.Category = term.Category
	stored.UpdatedAt = term.UpdatedAt
	return nil
}

func (m *MockSlangRepository) SetStatus(ctx context.Context, id string, status models.SlangStatus, approvedBy string, approvedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Terms[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Status = status
	t.ApprovedBy = approvedBy
	t.ApprovedAt = approvedAt
	t.UpdatedAt = time.Now()
	return nil
}

func (m *MockSlangRepository) SetFeatured(ctx context.Context, id string, featured bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Terms[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.IsFeatured = featured
	t.UpdatedAt = time.Now()
	return nil
}

func (m *MockSlangRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Terms[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Terms, id)
	return nil
}

func (m *MockSlangRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Terms), nil
}

func (m *MockSlangRepository) StreamAll(ctx context.Context, callback func(*models.SlangTerm) error) error {
	terms, _, _ := m.List(ctx, models.SlangFilter{})
	sort.Slice(terms, func(i, j int) bool { return terms[i].Term < terms[j].Term })
	for _, t := range terms {
		if err := callback(t); err != nil {
			return err
		}
	}
	return nil
}

// MockJobRepository is a mock implementation of JobRepository
type MockJobRepository struct {
	mu          sync.Mutex
	Jobs        map[string]*models.GenerationJob
	InsertError error
	ClaimCalls  int
}

func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{Jobs: make(map[string]*models.GenerationJob)}
}

func (m *MockJobRepository) Create(ctx context.Context, job *models.GenerationJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	stored := *job
	m.Jobs[job.ID] = &stored
	return nil
}

func (m *MockJobRepository) GetByID(ctx context.Context, id string) (*models.GenerationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.Jobs[id]; ok {
		out := *job
		return &out, nil
	}
	return nil, nil
}

func (m *MockJobRepository) GetPending(ctx context.Context, limit int) ([]*models.GenerationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var jobs []*models.GenerationJob
	for _, job := range m.Jobs {
		if job.Status == models.JobStatusPending && job.StartedAt == nil {
			out := *job
			jobs = append(jobs, &out)
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (m *MockJobRepository) Claim(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClaimCalls++
	job, ok := m.Jobs[id]
	if !ok || job.Status != models.JobStatusPending || job.StartedAt != nil {
		return false, nil
	}
	now := time.Now()
	job.StartedAt = &now
	return true, nil
}

func (m *MockJobRepository) Complete(ctx context.Context, id string, status models.JobStatus, result json.RawMessage, errMsg string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.Jobs[id]
	if !ok || job.Status != models.JobStatusPending {
		return false, nil
	}
	now := time.Now()
	job.Status = status
	job.Result = result
	job.Error = errMsg
	job.CompletedAt = &now
	return true, nil
}

func (m *MockJobRepository) FailStale(ctx context.Context, createdBefore time.Time, errMsg string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	now := time.Now()
	for _, job := range m.Jobs {
		if job.Status == models.JobStatusPending && job.CreatedAt.Before(createdBefore) {
			job.Status = models.JobStatusFailed
			job.Error = errMsg
			job.CompletedAt = &now
			n++
		}
	}
	return n, nil
}

func (m *MockJobRepository) CountByStatus(ctx context.Context) (map[models.JobStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[models.JobStatus]int)
	for _, job := range m.Jobs {
		counts[job.Status]++
	}
	return counts, nil
}

// Job returns a snapshot of a stored job, or nil
func (m *MockJobRepository) Job(id string) *models.GenerationJob {
	job, _ := m.GetByID(context.Background(), id)
	return job
}

// MockPromptRepository is a mock implementation of PromptRepository
type MockPromptRepository struct {
	mu      sync.Mutex
	Prompts map[models.PromptKey]*models.SystemPrompt
}

func NewMockPromptRepository() *MockPromptRepository {
	return &MockPromptRepository{Prompts: make(map[models.PromptKey]*models.SystemPrompt)}
}

func (m *MockPromptRepository) Get(ctx context.Context, key models.PromptKey) (*models.SystemPrompt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Prompts[key]; ok {
		out := *p
		return &out, nil
	}
	return nil, nil
}

func (m *MockPromptRepository) List(ctx context.Context) ([]*models.SystemPrompt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prompts := make([]*models.SystemPrompt, 0, len(m.Prompts))
	for _, p := range m.Prompts {
		out := *p
		prompts = append(prompts, &out)
	}
	sort.Slice(prompts, func(i, j int) bool { return prompts[i].Key < prompts[j].Key })
	return prompts, nil
}

func (m *MockPromptRepository) Upsert(ctx context.Context, prompt *models.SystemPrompt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *prompt
	m.Prompts[prompt.Key] = &stored
	return nil
}
