package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/policy"
	"github.com/portfolio-blog-api/internal/repository"
	"github.com/portfolio-blog-api/internal/validation"
	"github.com/rs/zerolog"
)

const anonymousSubmitter = "anonymous"

// slangService is the concrete implementation of SlangService
type slangService struct {
	terms     repository.SlangRepository
	validator *validation.Validator
	log       zerolog.Logger
	now       func() time.Time
}

func newSlangService(d Deps, v *validation.Validator) *slangService {
	return &slangService{
		terms:     d.Repos.Slang,
		validator: v,
		log:       d.Log.With().Str("service", "slang").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func slangDefaults(filter models.SlangFilter) models.SlangFilter {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Category = strings.ToLower(strings.TrimSpace(filter.Category))
	return filter
}

// ListPublic returns approved terms only
func (s *slangService) ListPublic(ctx context.Context, filter models.SlangFilter) (*models.SlangPage, error) {
	filter.Status = models.SlangStatusApproved
	return s.list(ctx, filter)
}

// List returns terms in any status for moderation
func (s *slangService) List(ctx context.Context, actor policy.Actor, filter models.SlangFilter) (*models.SlangPage, error) {
	if !policy.Can(actor, policy.ActionManageSlang, "") {
		return nil, ErrNotAuthorized
	}
	if filter.Status != "" && filter.Status != models.SlangStatusPending &&
		filter.Status != models.SlangStatusApproved && filter.Status != models.SlangStatusRejected {
		return nil, invalidField("status", "must be one of: pending approved rejected")
	}
	return s.list(ctx, filter)
}

func (s *slangService) list(ctx context.Context, filter models.SlangFilter) (*models.SlangPage, error) {
	filter = slangDefaults(filter)
	terms, total, err := s.terms.List(ctx, filter)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list slang terms")
		return nil, ErrInternal
	}
	if terms == nil {
		terms = []*models.SlangTerm{}
	}
	return &models.SlangPage{Terms: terms, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *slangService) newTerm(ctx context.Context, input *models.SlangInput) (*models.SlangTerm, error) {
	input.Term = strings.ToLower(strings.TrimSpace(input.Term))
	input.Meaning = strings.TrimSpace(input.Meaning)
	input.Category = strings.ToLower(strings.TrimSpace(input.Category))
	if errs := s.validator.Struct(input); len(errs) > 0 {
		return nil, invalidFields(errs)
	}

	exists, err := s.terms.TermExists(ctx, input.Term)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to check term")
		return nil, ErrInternal
	}
	if exists {
		return nil, ErrTermExists
	}

	now := s.now()
	return &models.SlangTerm{
		ID:        uuid.NewString(),
		Term:      input.Term,
		Meaning:   input.Meaning,
		Example:   strings.TrimSpace(input.Example),
		Category:  input.Category,
		Status:    models.SlangStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *slangService) insert(ctx context.Context, t *models.SlangTerm) error {
	if err := s.terms.Create(ctx, t); err != nil {
		if repository.IsUniqueViolation(err) {
			return ErrTermExists
		}
		s.log.Error().Err(err).Msg("Failed to create slang term")
		return ErrInternal
	}
	return nil
}

// Submit queues a public suggestion for moderation. A signed-in submitter
// is credited by account name.
func (s *slangService) Submit(ctx context.Context, actor policy.Actor, input *models.SlangInput) (*models.SlangTerm, error) {
	t, err := s.newTerm(ctx, input)
	if err != nil {
		return nil, err
	}

	switch {
	case actor.IsAuthenticated() && actor.Name != "":
		t.SubmittedBy = actor.Name
	case strings.TrimSpace(input.SubmittedBy) != "":
		t.SubmittedBy = strings.TrimSpace(input.SubmittedBy)
	default:
		t.SubmittedBy = anonymousSubmitter
	}

	if err := s.insert(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info().Str("term", t.Term).Msg("Slang term submitted")
	return t, nil
}

// Create adds an approved term directly
func (s *slangService) Create(ctx context.Context, actor policy.Actor, input *models.SlangInput) (*models.SlangTerm, error) {
	if !policy.Can(actor, policy.ActionManageSlang, "") {
		return nil, ErrNotAuthorized
	}
	t, err := s.newTerm(ctx, input)
	if err != nil {
		return nil, err
	}

	t.SubmittedBy = actor.Name
	t.Status = models.SlangStatusApproved
	t.ApprovedBy = actor.Name
	t.ApprovedAt = &t.CreatedAt

	if err := s.insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns a term in any status
func (s *slangService) Get(ctx context.Context, actor policy.Actor, id string) (*models.SlangTerm, error) {
	if !policy.Can(actor, policy.ActionManageSlang, "") {
		return nil, ErrNotAuthorized
	}
	return s.load(ctx, id)
}

func (s *slangService) load(ctx context.Context, id string) (*models.SlangTerm, error) {
	if !validation.IsValidUUID(id) {
		return nil, ErrNotFound
	}
	t, err := s.terms.GetByID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load slang term")
		return nil, ErrInternal
	}
	if t == nil {
		return nil, ErrNotFound
	}
	return t, nil
}

// Update edits the provided fields of a term
func (s *slangService) Update(ctx context.Context, actor policy.Actor, id string, input *models.SlangUpdate) (*models.SlangTerm, error) {
	if !policy.Can(actor, policy.ActionManageSlang, "") {
		return nil, ErrNotAuthorized
	}
	if input.Term != nil {
		*input.Term = strings.ToLower(strings.TrimSpace(*input.Term))
	}
	if errs := s.validator.Struct(input); len(errs) > 0 {
		return nil, invalidFields(errs)
	}

	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Term != nil {
		t.Term = *input.Term
	}
	if input.Meaning != nil {
		t.Meaning = strings.TrimSpace(*input.Meaning)
	}
	if input.Example != nil {
		t.Example = strings.TrimSpace(*input.Example)
	}
	if input.Category != nil {
		t.Category = strings.ToLower(strings.TrimSpace(*input.Category))
	}
	if err := s.save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a term
func (s *slangService) Delete(ctx context.Context, actor policy.Actor, id string) error {
	if !policy.Can(actor, policy.ActionManageSlang, "") {
		return ErrNotAuthorized
	}
	if !validation.IsValidUUID(id) {
		return ErrNotFound
	}
	if err := s.terms.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		s.log.Error().Err(err).Msg("Failed to delete slang term")
		return ErrInternal
	}
	return nil
}

// Act applies a moderation action. Each action writes only its own columns,
// so featuring never changes status even when it races an approval.
func (s *slangService) Act(ctx context.Context, actor policy.Actor, id string, action models.SlangAction) (*models.SlangTerm, error) {
	if !policy.Can(actor, policy.ActionManageSlang, "") {
		return nil, ErrNotAuthorized
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	var err error
	switch action {
	case models.SlangActionApprove:
		now := s.now()
		err = s.terms.SetStatus(ctx, id, models.SlangStatusApproved, actor.Name, &now)
	case models.SlangActionReject:
		err = s.terms.SetStatus(ctx, id, models.SlangStatusRejected, "", nil)
	case models.SlangActionFeature:
		err = s.terms.SetFeatured(ctx, id, true)
	case models.SlangActionUnfeature:
		err = s.terms.SetFeatured(ctx, id, false)
	default:
		return nil, invalidField("action", "must be one of: approve reject feature unfeature")
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error().Err(err).Str("term_id", id).Msg("Failed to moderate slang term")
		return nil, ErrInternal
	}

	s.log.Info().Str("term_id", id).Str("action", string(action)).Str("by", actor.ID).Msg("Slang term moderated")
	return s.load(ctx, id)
}

func (s *slangService) save(ctx context.Context, t *models.SlangTerm) error {
	t.UpdatedAt = s.now()
	if err := s.terms.Update(ctx, t); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrNotFound
		case repository.IsUniqueViolation(err):
			return ErrTermExists
		}
		s.log.Error().Err(err).Msg("Failed to update slang term")
		return ErrInternal
	}
	return nil
}
