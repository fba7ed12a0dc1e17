package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AuthService authenticates staff and manages technician accounts. Stored
// passwords may predate hashing; a successful login against a plain-text
// record rewrites it with a bcrypt hash.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	clock      domain.Clock
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies bundles collaborators for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Clock      domain.Clock
	BcryptCost int
	Logger     *zap.Logger
}

// LoginResult carries the issued token and its subject.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// UserCreateInput describes a new staff account.
type UserCreateInput struct {
	Username string
	Password string
	Name     string
	Email    *string
	Role     domain.UserRole
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		clock:      deps.Clock,
		bcryptCost: deps.BcryptCost,
		logger:     logger,
	}
}

// Login verifies credentials and issues a JWT. Wrong username and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.NewDependencyFailure("load user", err)
	}
	if !auth.VerifyPassword(user.Password, password) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	// Legacy records store the password in plain text. Upgrade in place now
	// that we hold the verified plaintext; a failed upgrade only delays the
	// migration to the next login.
	if !auth.IsHashed(user.Password) {
		if hashed, err := auth.HashPassword(password, s.bcryptCost); err != nil {
			s.logger.Warn("password upgrade hash failed", zap.String("user_id", user.ID), zap.Error(err))
		} else if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
			s.logger.Warn("password upgrade write failed", zap.String("user_id", user.ID), zap.Error(err))
		} else {
			user.Password = hashed
		}
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// CreateUser registers a staff account with a hashed password.
func (s *AuthService) CreateUser(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, apperrors.NewInvalidArgument("username is required", nil)
	}
	if input.Password == "" {
		return nil, apperrors.NewInvalidArgument("password is required", nil)
	}
	if !domain.ValidUserRole(input.Role) {
		return nil, apperrors.NewInvalidArgument("invalid role", map[string]any{"role": input.Role})
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username already taken", map[string]any{"username": username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewDependencyFailure("check username", err)
	}

	hashed, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:  username,
		Password:  hashed,
		Name:      strings.TrimSpace(input.Name),
		Email:     input.Email,
		Role:      input.Role,
		CreatedAt: s.clock.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.NewDependencyFailure("create user", err)
	}
	return user, nil
}

// DeleteUser removes a staff account. Tickets assigned to the user keep
// their assignment as a dangling reference.
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return apperrors.NewDependencyFailure("delete user", err)
	}
	return nil
}

// ListTechnicians returns all staff accounts with passwords blanked.
func (s *AuthService) ListTechnicians(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewDependencyFailure("list users", err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}
