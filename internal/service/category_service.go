package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/policy"
	"github.com/portfolio-blog-api/internal/repository"
	"github.com/portfolio-blog-api/internal/validation"
	"github.com/rs/zerolog"
)

// categoryService is the concrete implementation of CategoryService
type categoryService struct {
	categories repository.CategoryRepository
	validator  *validation.Validator
	log        zerolog.Logger
}

func newCategoryService(d Deps, v *validation.Validator) *categoryService {
	return &categoryService{
		categories: d.Repos.Category,
		validator:  v,
		log:        d.Log.With().Str("service", "category").Logger(),
	}
}

// List returns every category by name
func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list categories")
		return nil, ErrInternal
	}
	if cats == nil {
		cats = []*models.Category{}
	}
	return cats, nil
}

func (s *categoryService) prepare(input *models.CategoryInput) (string, string, error) {
	input.Name = validation.NormalizeName(input.Name)
	if errs := s.validator.Struct(input); len(errs) > 0 {
		return "", "", invalidFields(errs)
	}
	slug := validation.Slugify(input.Name)
	if slug == "" {
		return "", "", invalidField("name", "must contain at least one letter or digit")
	}
	return input.Name, slug, nil
}

// Create adds a category with a lowercased, unique name
func (s *categoryService) Create(ctx context.Context, actor policy.Actor, input *models.CategoryInput) (*models.Category, error) {
	if !policy.Can(actor, policy.ActionManageCategories, "") {
		return nil, ErrNotAuthorized
	}
	name, slug, err := s.prepare(input)
	if err != nil {
		return nil, err
	}

	c := &models.Category{ID: uuid.NewString(), Name: name, Slug: slug, CreatedAt: time.Now().UTC()}
	if err := s.categories.Create(ctx, c); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrCategoryExists
		}
		s.log.Error().Err(err).Msg("Failed to create category")
		return nil, ErrInternal
	}
	return c, nil
}

// Update renames a category
func (s *categoryService) Update(ctx context.Context, actor policy.Actor, id string, input *models.CategoryInput) (*models.Category, error) {
	if !policy.Can(actor, policy.ActionManageCategories, "") {
		return nil, ErrNotAuthorized
	}
	if !validation.IsValidUUID(id) {
		return nil, ErrNotFound
	}
	name, slug, err := s.prepare(input)
	if err != nil {
		return nil, err
	}

	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load category")
		return nil, ErrInternal
	}
	if c == nil {
		return nil, ErrNotFound
	}

	c.Name, c.Slug = name, slug
	if err := s.categories.Update(ctx, c); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case repository.IsUniqueViolation(err):
			return nil, ErrCategoryExists
		}
		s.log.Error().Err(err).Msg("Failed to update category")
		return nil, ErrInternal
	}
	return c, nil
}

// Delete removes a category; blogs lose the link but are kept
func (s *categoryService) Delete(ctx context.Context, actor policy.Actor, id string) error {
	if !policy.Can(actor, policy.ActionManageCategories, "") {
		return ErrNotAuthorized
	}
	if !validation.IsValidUUID(id) {
		return ErrNotFound
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		s.log.Error().Err(err).Msg("Failed to delete category")
		return ErrInternal
	}
	return nil
}
