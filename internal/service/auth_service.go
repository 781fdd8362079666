package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio-blog-api/internal/auth"
	"github.com/portfolio-blog-api/internal/config"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/policy"
	"github.com/portfolio-blog-api/internal/repository"
	"github.com/portfolio-blog-api/internal/validation"
	"github.com/rs/zerolog"
)

// authService is the concrete implementation of AuthService
type authService struct {
	users     repository.UserRepository
	tokens    *auth.TokenManager
	sessions  SessionStore
	bootstrap config.BootstrapConfig
	validator *validation.Validator
	log       zerolog.Logger
}

func newAuthService(d Deps, v *validation.Validator) *authService {
	return &authService{
		users:     d.Repos.User,
		tokens:    d.Tokens,
		sessions:  d.Sessions,
		bootstrap: d.Config.Bootstrap,
		validator: v,
		log:       d.Log.With().Str("service", "auth").Logger(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a USER account
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if errs := s.validator.Struct(req); len(errs) > 0 {
		return nil, invalidFields(errs)
	}

	exists, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to check email")
		return nil, ErrInternal
	}
	if exists {
		return nil, ErrEmailTaken
	}

	user, err := s.createUser(ctx, req.Name, req.Email, req.Password, models.RoleUser)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Msg("User registered")
	return user, nil
}

func (s *authService) createUser(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to hash password")
		return nil, ErrInternal
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  hash,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		s.log.Error().Err(err).Msg("Failed to create user")
		return nil, ErrInternal
	}
	return user, nil
}

// Login verifies credentials and issues a session token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if errs := s.validator.Struct(req); len(errs) > 0 {
		return nil, invalidFields(errs)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load user")
		return nil, ErrInternal
	}
	if user == nil || !auth.CheckPassword(user.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to issue token")
		return nil, ErrInternal
	}
	expiresAt := claims.ExpiresAt.Time
	if err := s.sessions.Save(ctx, claims.ID, user.ID, expiresAt); err != nil {
		s.log.Error().Err(err).Msg("Failed to save session")
		return nil, ErrInternal
	}

	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout revokes a token ID
func (s *authService) Logout(ctx context.Context, tokenID string) error {
	if err := s.sessions.Revoke(ctx, tokenID); err != nil {
		s.log.Error().Err(err).Msg("Failed to revoke session")
		return ErrInternal
	}
	return nil
}

// Authenticate verifies token and checks that its session is still live
func (s *authService) Authenticate(ctx context.Context, token string) (policy.Actor, string, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return policy.Actor{}, "", ErrUnauthenticated
	}

	live, err := s.sessions.Exists(ctx, claims.ID)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to check session")
		return policy.Actor{}, "", ErrInternal
	}
	if !live {
		return policy.Actor{}, "", ErrUnauthenticated
	}

	actor := policy.Actor{ID: claims.Subject, Name: claims.Name, Email: claims.Email, Role: claims.Role}
	if !actor.IsAuthenticated() {
		return policy.Actor{}, "", ErrUnauthenticated
	}
	return actor, claims.ID, nil
}

// Me returns the stored account of actor
func (s *authService) Me(ctx context.Context, actor policy.Actor) (*models.User, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load user")
		return nil, ErrInternal
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// Bootstrap creates the configured SUPER_ADMIN when it does not exist yet
func (s *authService) Bootstrap(ctx context.Context) error {
	email := normalizeEmail(s.bootstrap.SuperAdminEmail)
	if email == "" || s.bootstrap.SuperAdminPassword == "" {
		return nil
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.Role != models.RoleSuperAdmin {
			s.log.Warn().Str("email", email).Msg("Bootstrap account exists without SUPER_ADMIN role")
		}
		return nil
	}

	name := s.bootstrap.SuperAdminName
	if name == "" {
		name = "Super Admin"
	}
	user, err := s.createUser(ctx, name, email, s.bootstrap.SuperAdminPassword, models.RoleSuperAdmin)
	if err != nil && !errors.Is(err, ErrEmailTaken) {
		return err
	}
	if user != nil {
		s.log.Info().Str("user_id", user.ID).Msg("Created super admin account")
	}
	return nil
}
