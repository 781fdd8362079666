package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio-blog-api/internal/config"
	"github.com/portfolio-blog-api/internal/genai"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/policy"
	"github.com/portfolio-blog-api/internal/repository"
	"github.com/portfolio-blog-api/internal/storage"
	"github.com/portfolio-blog-api/internal/validation"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	errJobExpired  = "job expired"
	errJobShutdown = "server shutting down"
	completeWithin = 10 * time.Second
)

// generationService queues AI generation jobs and runs them in a bounded worker pool
type generationService struct {
	jobs      repository.JobRepository
	prompts   repository.PromptRepository
	text      genai.TextGenerator
	images    genai.ImageGenerator
	storage   ObjectStorage
	validator *validation.Validator
	cfg       config.JobsConfig
	maxFixups int
	log       zerolog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
	// Semaphore: buffered channel limiting concurrent jobs
	sem  chan struct{}
	wake chan struct{}
	cron *cron.Cron
	now  func() time.Time
}

// newGenerationService creates the service with a worker pool sized from config,
// or from the CPU count for I/O-bound work when unset
func newGenerationService(d Deps, v *validation.Validator) *generationService {
	maxWorkers := d.Config.Jobs.Workers
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * 4
		if maxWorkers < 4 {
			maxWorkers = 4
		}
		if maxWorkers > 32 {
			maxWorkers = 32 // Cap to avoid excessive provider calls
		}
	}

	log := d.Log.With().Str("service", "generation").Logger()
	log.Info().Int("max_workers", maxWorkers).Msg("Initializing generation worker pool")

	return &generationService{
		jobs:      d.Repos.Job,
		prompts:   d.Repos.Prompt,
		text:      d.Text,
		images:    d.Images,
		storage:   d.Storage,
		validator: v,
		cfg:       d.Config.Jobs,
		maxFixups: d.Config.AI.MaxFixups,
		log:       log,
		sem:       make(chan struct{}, maxWorkers),
		wake:      make(chan struct{}, 1),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SubmitBlog queues a blog text job
func (s *generationService) SubmitBlog(ctx context.Context, actor policy.Actor, req *models.BlogGenerationRequest) (*models.JobAccepted, error) {
	if !policy.Can(actor, policy.ActionGenerate, "") {
		return nil, ErrNotAuthorized
	}
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Mode == "" {
		req.Mode = models.ModeSimplified
	}
	if errs := s.validator.Struct(req); len(errs) > 0 {
		return nil, invalidFields(errs)
	}
	return s.enqueue(ctx, actor, models.JobTypeBlog, req)
}

// SubmitImage queues an image job
func (s *generationService) SubmitImage(ctx context.Context, actor policy.Actor, req *models.ImageGenerationRequest) (*models.JobAccepted, error) {
	if !policy.Can(actor, policy.ActionGenerate, "") {
		return nil, ErrNotAuthorized
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if errs := s.validator.Struct(req); len(errs) > 0 {
		return nil, invalidFields(errs)
	}
	return s.enqueue(ctx, actor, models.JobTypeImage, req)
}

func (s *generationService) enqueue(ctx context.Context, actor policy.Actor, jobType models.JobType, params interface{}) (*models.JobAccepted, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, ErrInternal
	}

	job := &models.GenerationJob{
		ID:          uuid.NewString(),
		Type:        jobType,
		Status:      models.JobStatusPending,
		Params:      raw,
		RequestedBy: actor.ID,
		CreatedAt:   s.now(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		s.log.Error().Err(err).Msg("Failed to create job")
		return nil, ErrInternal
	}

	// non-blocking; a pending wake already covers this job
	select {
	case s.wake <- struct{}{}:
	default:
	}

	s.log.Info().Str("job_id", job.ID).Str("type", string(jobType)).Str("by", actor.ID).Msg("Job queued")
	return &models.JobAccepted{JobID: job.ID, Status: job.Status}, nil
}

// GetJob returns a job to its requester or an admin
func (s *generationService) GetJob(ctx context.Context, actor policy.Actor, id string) (*models.GenerationJob, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if !validation.IsValidUUID(id) {
		return nil, ErrNotFound
	}

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", id).Msg("Failed to load job")
		return nil, ErrInternal
	}
	if job == nil {
		return nil, ErrNotFound
	}
	if !policy.Can(actor, policy.ActionViewJob, job.RequestedBy) {
		return nil, ErrNotAuthorized
	}
	return job, nil
}

// StartProcessor runs the job loop until ctx is cancelled or StopProcessor is called
func (s *generationService) StartProcessor(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.startReaper()
	// the loop holds the group open until it returns
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	s.log.Info().Msg("Job processor started")

	interval := s.cfg.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.processPendingJobs()
	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("Job processor stopping")
			return
		case <-ticker.C:
			s.processPendingJobs()
		case <-s.wake:
			s.processPendingJobs()
		}
	}
}

// StopProcessor cancels running jobs and waits for them to record their outcome
func (s *generationService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Job processor stopped")
}

func (s *generationService) startReaper() {
	if s.cfg.ReaperSchedule == "" || s.cfg.StaleAfter <= 0 {
		return
	}
	c := cron.New()
	if _, err := c.AddFunc(s.cfg.ReaperSchedule, s.reapStaleJobs); err != nil {
		s.log.Error().Err(err).Str("schedule", s.cfg.ReaperSchedule).Msg("Invalid reaper schedule, stale jobs will not expire")
		return
	}
	c.Start()
	s.cron = c
}

// reapStaleJobs fails jobs left pending longer than StaleAfter, e.g. by a restart
func (s *generationService) reapStaleJobs() {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), completeWithin)
	defer cancel()

	n, err := s.jobs.FailStale(ctx, s.now().Add(-s.cfg.StaleAfter), errJobExpired)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to expire stale jobs")
		return
	}
	if n > 0 {
		s.log.Warn().Int("count", n).Msg("Expired stale jobs")
	}
}

// processPendingJobs claims and starts pending jobs while worker slots are free
func (s *generationService) processPendingJobs() {
	limit := s.cfg.BatchSize
	if limit <= 0 {
		limit = 20
	}
	jobs, err := s.jobs.GetPending(s.ctx, limit)
	if err != nil {
		if s.ctx.Err() == nil {
			s.log.Error().Err(err).Msg("Failed to get pending jobs")
		}
		return
	}

	for _, job := range jobs {
		// blocks while all workers are busy
		select {
		case s.sem <- struct{}{}:
		case <-s.ctx.Done():
			return
		}
		if s.ctx.Err() != nil {
			<-s.sem
			return
		}

		// counted before Claim so StopProcessor never waits on a zero
		// counter while a claimed job is still starting
		s.wg.Add(1)
		claimed, err := s.jobs.Claim(s.ctx, job.ID)
		if err != nil || !claimed {
			<-s.sem
			s.wg.Done()
			continue // another worker has it
		}

		go func(j *models.GenerationJob) {
			defer s.wg.Done()
			defer func() { <-s.sem }()

			defer func() {
				if r := recover(); r != nil {
					s.log.Error().
						Interface("panic", r).
						Str("job_id", j.ID).
						Msg("Job processing panicked - recovered")
					s.complete(j, models.JobStatusFailed, nil, fmt.Sprintf("internal error: %v", r))
				}
			}()
			s.processJob(j)
		}(job)
	}
}

// processJob runs one claimed job and records its outcome exactly once
func (s *generationService) processJob(job *models.GenerationJob) {
	select {
	case <-s.ctx.Done():
		s.complete(job, models.JobStatusFailed, nil, errJobShutdown)
		return
	default:
	}

	lifetime := s.cfg.MaxLifetime
	if lifetime <= 0 {
		lifetime = 3 * time.Minute
	}
	ctx, cancel := context.WithTimeout(s.ctx, lifetime)
	defer cancel()

	s.log.Info().Str("job_id", job.ID).Str("type", string(job.Type)).Msg("Processing job")
	started := time.Now()

	var (
		result json.RawMessage
		err    error
	)
	switch job.Type {
	case models.JobTypeBlog:
		result, err = s.runBlogJob(ctx, job)
	case models.JobTypeImage:
		result, err = s.runImageJob(ctx, job)
	default:
		err = fmt.Errorf("unknown job type %q", job.Type)
	}

	if err != nil {
		msg := err.Error()
		switch {
		case s.ctx.Err() != nil:
			msg = errJobShutdown
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			msg = fmt.Sprintf("job timed out after %s", lifetime)
		}
		s.log.Warn().Err(err).Str("job_id", job.ID).Dur("duration", time.Since(started)).Msg("Job failed")
		s.complete(job, models.JobStatusFailed, nil, msg)
		return
	}

	s.log.Info().Str("job_id", job.ID).Dur("duration", time.Since(started)).Msg("Job succeeded")
	s.complete(job, models.JobStatusSuccess, result, "")
}

// complete writes the terminal state even after shutdown has cancelled s.ctx
func (s *generationService) complete(job *models.GenerationJob, status models.JobStatus, result json.RawMessage, errMsg string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), completeWithin)
	defer cancel()

	ok, err := s.jobs.Complete(ctx, job.ID, status, result, errMsg)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to record job outcome")
		return
	}
	if !ok {
		s.log.Debug().Str("job_id", job.ID).Msg("Job already terminal")
	}
}

func (s *generationService) runBlogJob(ctx context.Context, job *models.GenerationJob) (json.RawMessage, error) {
	var req models.BlogGenerationRequest
	if err := json.Unmarshal(job.Params, &req); err != nil {
		return nil, fmt.Errorf("invalid job parameters: %w", err)
	}
	if req.Mode == "" {
		req.Mode = models.ModeSimplified
	}

	prompt, err := resolvePrompt(ctx, s.prompts, models.PromptKeyForMode(req.Mode))
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}

	raw, provider, err := s.generateText(ctx, prompt.Text, blogPrompt(&req))
	if err != nil {
		return nil, err
	}

	blog, err := genai.DecodeBlog(raw, req.Mode, s.maxFixups)
	if err != nil {
		return nil, err
	}
	blog.Provider = provider
	if len(blog.Fixups) > 0 {
		s.log.Debug().Str("job_id", job.ID).Strs("fixups", blog.Fixups).Msg("Repaired model output")
	}
	return json.Marshal(blog)
}

func (s *generationService) generateText(ctx context.Context, system, prompt string) (string, string, error) {
	if s.text == nil {
		return "", "", genai.ErrNoProvider
	}
	if chain, ok := s.text.(interface {
		Generate(ctx context.Context, system, prompt string) (string, string, error)
	}); ok {
		return chain.Generate(ctx, system, prompt)
	}
	text, err := s.text.GenerateText(ctx, system, prompt)
	return text, s.text.Name(), err
}

func blogPrompt(req *models.BlogGenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	if req.Keywords != "" {
		fmt.Fprintf(&b, "Keywords: %s\n", req.Keywords)
	}
	if req.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", req.Tone)
	}
	fmt.Fprintf(&b, "Length: %s (at least %d content blocks)\n", req.Mode, req.Mode.MinBlocks())
	return b.String()
}

func (s *generationService) runImageJob(ctx context.Context, job *models.GenerationJob) (json.RawMessage, error) {
	var req models.ImageGenerationRequest
	if err := json.Unmarshal(job.Params, &req); err != nil {
		return nil, fmt.Errorf("invalid job parameters: %w", err)
	}
	if s.images == nil {
		return nil, genai.ErrNoProvider
	}

	prompt, err := resolvePrompt(ctx, s.prompts, models.PromptImage)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}

	img, err := s.images.GenerateImage(ctx, strings.TrimSpace(prompt.Text+"\n\n"+req.Prompt))
	if err != nil {
		return nil, err
	}

	key := storage.ObjectKey(storage.PrefixGenerated, job.RequestedBy, uuid.NewString()+img.Extension())
	url, err := s.storage.Put(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), img.MimeType)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	return json.Marshal(models.ImageResult{ImageURL: url, Key: key})
}
