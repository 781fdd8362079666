package mocks

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/portfolio-blog-api/internal/genai"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/search"
	"github.com/portfolio-blog-api/internal/service"
	"github.com/portfolio-blog-api/internal/storage"
)

var (
	_ service.SessionStore  = (*MockSessionStore)(nil)
	_ service.ObjectStorage = (*MockObjectStorage)(nil)
	_ service.SearchIndex   = (*MockSearchIndex)(nil)
	_ service.Notifier      = (*MockNotifier)(nil)
	_ genai.TextGenerator   = (*MockTextGenerator)(nil)
	_ genai.ImageGenerator  = (*MockImageGenerator)(nil)
)

// MockSessionStore keeps live token IDs in memory
type MockSessionStore struct {
	mu       sync.Mutex
	Sessions map[string]string // tokenID -> userID
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{Sessions: make(map[string]string)}
}

func (m *MockSessionStore) Save(ctx context.Context, tokenID, userID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions[tokenID] = userID
	return nil
}

func (m *MockSessionStore) Exists(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Sessions[tokenID]
	return ok, nil
}

func (m *MockSessionStore) Revoke(ctx context.Context, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Sessions, tokenID)
	return nil
}

func (m *MockSessionStore) RevokeUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for tokenID, owner := range m.Sessions {
		if owner == userID {
			delete(m.Sessions, tokenID)
		}
	}
	return nil
}

// MockObjectStorage records stored objects
type MockObjectStorage struct {
	mu       sync.Mutex
	Objects  map[string][]byte
	Types    map[string]string
	PutError error
}

func NewMockObjectStorage() *MockObjectStorage {
	return &MockObjectStorage{
		Objects: make(map[string][]byte),
		Types:   make(map[string]string),
	}
}

func (m *MockObjectStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if m.PutError != nil {
		return "", m.PutError
	}
	if !storage.ValidKey(key) {
		return "", storage.ErrInvalidKey
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = buf.Bytes()
	m.Types[key] = contentType
	return "https://cdn.test/" + key, nil
}

func (m *MockObjectStorage) Delete(ctx context.Context, key string) error {
	if !storage.ValidKey(key) {
		return storage.ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	delete(m.Types, key)
	return nil
}

// Keys returns the stored keys with the given prefix
func (m *MockObjectStorage) Keys(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for key := range m.Objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys
}

// MockSearchIndex is an in-memory search index. With Unavailable set every
// query fails the way an unreachable Meilisearch does.
type MockSearchIndex struct {
	mu          sync.Mutex
	Records     map[string]search.BlogRecord
	Unavailable bool
	Queries     []search.Query
}

func NewMockSearchIndex() *MockSearchIndex {
	return &MockSearchIndex{Records: make(map[string]search.BlogRecord)}
}

func (m *MockSearchIndex) Search(q search.Query) (*search.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, q)
	if m.Unavailable {
		return nil, search.ErrUnavailable
	}

	text := strings.ToLower(q.Text)
	result := &search.Result{IDs: []string{}}
	for id, rec := range m.Records {
		if text != "" && !strings.Contains(strings.ToLower(rec.Title+" "+rec.Description+" "+rec.Tags), text) {
			continue
		}
		if q.Category != "" && !containsString(rec.Categories, strings.ToLower(q.Category)) {
			continue
		}
		result.IDs = append(result.IDs, id)
	}
	result.Total = len(result.IDs)
	return result, nil
}

func (m *MockSearchIndex) Upsert(rec search.BlogRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records[rec.ID] = rec
}

func (m *MockSearchIndex) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Records, id)
}

func (m *MockSearchIndex) Reindex(recs []search.BlogRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Unavailable {
		return search.ErrUnavailable
	}
	for _, rec := range recs {
		m.Records[rec.ID] = rec
	}
	return nil
}

// Has reports whether id is indexed
func (m *MockSearchIndex) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Records[id]
	return ok
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// MockNotifier records review notifications
type MockNotifier struct {
	mu        sync.Mutex
	Submitted []string // blog IDs
}

func (m *MockNotifier) BlogSubmitted(blog *models.Blog, author *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Submitted = append(m.Submitted, blog.ID)
}

// Count returns the number of notifications sent
func (m *MockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Submitted)
}

// MockTextGenerator returns canned responses in order, repeating the last one
type MockTextGenerator struct {
	mu        sync.Mutex
	Provider  string
	Responses []string
	Err       error
	Prompts   []string
}

func (m *MockTextGenerator) Name() string {
	if m.Provider == "" {
		return "mock"
	}
	return m.Provider
}

func (m *MockTextGenerator) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", genai.ErrEmptyResponse
	}
	resp := m.Responses[0]
	if len(m.Responses) > 1 {
		m.Responses = m.Responses[1:]
	}
	return resp, nil
}

// MockImageGenerator returns a fixed image
type MockImageGenerator struct {
	Image *genai.Image
	Err   error
}

func (m *MockImageGenerator) Name() string { return "mock-image" }

func (m *MockImageGenerator) GenerateImage(ctx context.Context, prompt string) (*genai.Image, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Image == nil {
		return &genai.Image{Data: []byte("\x89PNG\r\n\x1a\n"), MimeType: "image/png"}, nil
	}
	return m.Image, nil
}
