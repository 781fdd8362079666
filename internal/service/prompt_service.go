package service

import (
	"context"
	"strings"
	"time"

	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/policy"
	"github.com/portfolio-blog-api/internal/repository"
	"github.com/portfolio-blog-api/internal/validation"
	"github.com/rs/zerolog"
)

// promptService is the concrete implementation of PromptService
type promptService struct {
	prompts   repository.PromptRepository
	validator *validation.Validator
	log       zerolog.Logger
}

func newPromptService(d Deps, v *validation.Validator) *promptService {
	return &promptService{
		prompts:   d.Repos.Prompt,
		validator: v,
		log:       d.Log.With().Str("service", "prompt").Logger(),
	}
}

// resolvePrompt returns the stored prompt for key, or the built-in default
func resolvePrompt(ctx context.Context, repo repository.PromptRepository, key models.PromptKey) (*models.SystemPrompt, error) {
	p, err := repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	return &models.SystemPrompt{Key: key, Text: models.DefaultPrompts[key]}, nil
}

// List returns every editable prompt, defaults included
func (s *promptService) List(ctx context.Context, actor policy.Actor) ([]*models.SystemPrompt, error) {
	if !policy.Can(actor, policy.ActionManagePrompts, "") {
		return nil, ErrNotAuthorized
	}
	keys := []models.PromptKey{models.PromptBlogSimplified, models.PromptBlogDetailed, models.PromptImage}
	out := make([]*models.SystemPrompt, 0, len(keys))
	for _, key := range keys {
		p, err := resolvePrompt(ctx, s.prompts, key)
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to load prompt")
			return nil, ErrInternal
		}
		out = append(out, p)
	}
	return out, nil
}

// Get returns one prompt
func (s *promptService) Get(ctx context.Context, actor policy.Actor, key models.PromptKey) (*models.SystemPrompt, error) {
	if !policy.Can(actor, policy.ActionManagePrompts, "") {
		return nil, ErrNotAuthorized
	}
	if !models.ValidPromptKeys[key] {
		return nil, ErrNotFound
	}
	p, err := resolvePrompt(ctx, s.prompts, key)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load prompt")
		return nil, ErrInternal
	}
	return p, nil
}

// Update replaces a prompt's text
func (s *promptService) Update(ctx context.Context, actor policy.Actor, key models.PromptKey, input *models.PromptInput) (*models.SystemPrompt, error) {
	if !policy.Can(actor, policy.ActionManagePrompts, "") {
		return nil, ErrNotAuthorized
	}
	if !models.ValidPromptKeys[key] {
		return nil, ErrNotFound
	}
	input.Text = strings.TrimSpace(input.Text)
	if errs := s.validator.Struct(input); len(errs) > 0 {
		return nil, invalidFields(errs)
	}

	p := &models.SystemPrompt{Key: key, Text: input.Text, UpdatedAt: time.Now().UTC()}
	if err := s.prompts.Upsert(ctx, p); err != nil {
		s.log.Error().Err(err).Msg("Failed to save prompt")
		return nil, ErrInternal
	}
	s.log.Info().Str("key", string(key)).Str("by", actor.ID).Msg("System prompt updated")
	return p, nil
}
