package service

import (
	"context"
	"errors"

	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/policy"
	"github.com/portfolio-blog-api/internal/repository"
	"github.com/portfolio-blog-api/internal/validation"
	"github.com/rs/zerolog"
)

// userService is the concrete implementation of UserService
type userService struct {
	users    repository.UserRepository
	sessions SessionStore
	blogs    *blogService
	log      zerolog.Logger
}

func newUserService(d Deps, blogs *blogService) *userService {
	return &userService{
		users:    d.Repos.User,
		sessions: d.Sessions,
		blogs:    blogs,
		log:      d.Log.With().Str("service", "user").Logger(),
	}
}

// List returns every account, newest first
func (s *userService) List(ctx context.Context, actor policy.Actor) ([]*models.User, error) {
	if !policy.Can(actor, policy.ActionManageUsers, "") {
		return nil, ErrNotAuthorized
	}
	users, err := s.users.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list users")
		return nil, ErrInternal
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// Delete removes a user. With transferBlogs their blogs move to actor as
// drafts; otherwise the blogs are deleted with the user.
func (s *userService) Delete(ctx context.Context, actor policy.Actor, id string, transferBlogs bool) error {
	if !policy.Can(actor, policy.ActionManageUsers, "") {
		return ErrNotAuthorized
	}
	if !validation.IsValidUUID(id) {
		return ErrNotFound
	}

	target, err := s.users.GetByID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load user")
		return ErrInternal
	}
	if target == nil {
		return ErrNotFound
	}
	if !policy.CanDeleteUser(actor, target) {
		return ErrNotAuthorized
	}

	transferTo := ""
	if transferBlogs {
		transferTo = actor.ID
	}

	blogIDs, err := s.users.Delete(ctx, id, transferTo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		s.log.Error().Err(err).Str("user_id", id).Msg("Failed to delete user")
		return ErrInternal
	}

	// transferred blogs are drafts now and deleted ones are gone
	for _, blogID := range blogIDs {
		s.blogs.search.Remove(blogID)
	}
	if err := s.sessions.RevokeUser(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("user_id", id).Msg("Failed to revoke sessions of deleted user")
	}

	s.log.Info().
		Str("user_id", id).
		Str("by", actor.ID).
		Bool("transfer", transferBlogs).
		Int("blogs", len(blogIDs)).
		Msg("User deleted")
	return nil
}

// UpdateRole changes a user's role and ends their sessions
func (s *userService) UpdateRole(ctx context.Context, actor policy.Actor, id string, role models.Role) (*models.User, error) {
	if !policy.Can(actor, policy.ActionChangeRoles, "") {
		return nil, ErrNotAuthorized
	}
	if !models.ValidRoles[role] {
		return nil, invalidField("role", "must be one of: USER ADMIN SUPER_ADMIN")
	}
	if !validation.IsValidUUID(id) {
		return nil, ErrNotFound
	}

	target, err := s.users.GetByID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load user")
		return nil, ErrInternal
	}
	if target == nil {
		return nil, ErrNotFound
	}
	if !policy.CanChangeRole(actor, target) {
		return nil, ErrNotAuthorized
	}
	if target.Role == role {
		return target, nil
	}

	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error().Err(err).Msg("Failed to update role")
		return nil, ErrInternal
	}
	if err := s.sessions.RevokeUser(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("user_id", id).Msg("Failed to revoke sessions after role change")
	}

	target.Role = role
	s.log.Info().Str("user_id", id).Str("role", string(role)).Msg("User role changed")
	return target, nil
}
