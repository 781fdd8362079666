package mocks

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/policy"
	"github.com/portfolio-blog-api/internal/service"
)

// Compile-time interface compliance checks
var (
	_ service.ExportService     = (*MockExportService)(nil)
	_ service.GenerationService = (*MockGenerationService)(nil)
)

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamFunc func(ctx context.Context, actor policy.Actor, w http.ResponseWriter, resource, format string) error
	Counts     map[string]int
}

func NewMockExportService() *MockExportService {
	return &MockExportService{
		Counts: make(map[string]int),
	}
}

func (m *MockExportService) StreamResource(ctx context.Context, actor policy.Actor, w http.ResponseWriter, resource, format string) error {
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, actor, w, resource, format)
	}
	return nil
}

func (m *MockExportService) GetCount(ctx context.Context, resource string) (int, error) {
	return m.Counts[resource], nil
}

// MockGenerationService is a mock implementation of GenerationService.
// Submitted jobs stay PENDING until a test completes them.
type MockGenerationService struct {
	mu        sync.Mutex
	Jobs      map[string]*models.GenerationJob
	SubmitErr error
}

func NewMockGenerationService() *MockGenerationService {
	return &MockGenerationService{
		Jobs: make(map[string]*models.GenerationJob),
	}
}

func (m *MockGenerationService) submit(actor policy.Actor, jobType models.JobType) (*models.JobAccepted, error) {
	if m.SubmitErr != nil {
		return nil, m.SubmitErr
	}
	if !actor.IsAuthenticated() {
		return nil, service.ErrUnauthenticated
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	job := &models.GenerationJob{
		ID:          uuid.NewString(),
		Type:        jobType,
		Status:      models.JobStatusPending,
		RequestedBy: actor.ID,
	}
	m.Jobs[job.ID] = job
	return &models.JobAccepted{JobID: job.ID, Status: job.Status}, nil
}

func (m *MockGenerationService) SubmitBlog(ctx context.Context, actor policy.Actor, req *models.BlogGenerationRequest) (*models.JobAccepted, error) {
	return m.submit(actor, models.JobTypeBlog)
}

func (m *MockGenerationService) SubmitImage(ctx context.Context, actor policy.Actor, req *models.ImageGenerationRequest) (*models.JobAccepted, error) {
	return m.submit(actor, models.JobTypeImage)
}

func (m *MockGenerationService) GetJob(ctx context.Context, actor policy.Actor, id string) (*models.GenerationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.Jobs[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	if !policy.Can(actor, policy.ActionViewJob, job.RequestedBy) {
		return nil, service.ErrNotAuthorized
	}
	out := *job
	return &out, nil
}

func (m *MockGenerationService) StartProcessor(ctx context.Context) {}

func (m *MockGenerationService) StopProcessor() {}
