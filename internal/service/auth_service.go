package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/classroom-gateway/internal/auth"
	"github.com/spec-kit/classroom-gateway/internal/config"
	"github.com/spec-kit/classroom-gateway/internal/domain"
	"github.com/spec-kit/classroom-gateway/internal/events"
	"github.com/spec-kit/classroom-gateway/internal/repository"
	apperrors "github.com/spec-kit/classroom-gateway/pkg/util/errorutil"
)

// Postgres error code for unique constraint violations.
const pgUniqueViolation = "23505"

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Username   string
	Email      string
	Token      string
	ExpiresAt  time.Time
	Permission string
}

// AuthService coordinates login, registration and permission changes.
type AuthService struct {
	users      repository.UserRepository
	perms      repository.PermissionRepository
	tokens     *auth.TokenService
	limiter    LoginLimiter
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	PermissionRepo repository.PermissionRepository
	Tokens         *auth.TokenService
	Limiter        LoginLimiter
	Dispatcher     events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		perms:      deps.PermissionRepo,
		tokens:     deps.Tokens,
		limiter:    deps.Limiter,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.BcryptCost,
	}
}

// Login authenticates the credentials and issues a token signed with the
// secret of the account's current role. No token is ever issued for an
// account whose permission does not resolve to a role.
func (s *AuthService) Login(ctx context.Context, email, password, clientIP string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password required", nil)
	}

	if s.limiter != nil {
		if err := s.limiter.Allow(ctx, email, clientIP); err != nil {
			return nil, apperrors.NewTooManyRequests(err.Error())
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("incorrect password")
	}

	role, ok := domain.RoleFromPermissionID(user.PermissionTypeID)
	if !ok {
		return nil, apperrors.NewForbidden("account has no resolvable permission")
	}

	perm, err := s.perms.GetByID(ctx, user.PermissionTypeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewForbidden("account has no resolvable permission")
		}
		return nil, apperrors.NewInternalError(err)
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	return &LoginResult{
		Username:   user.Username,
		Email:      user.Email,
		Token:      token,
		ExpiresAt:  expiresAt,
		Permission: perm.Name,
	}, nil
}

// Register creates a new account at the lowest privilege level. Callers
// cannot choose a role for themselves.
func (s *AuthService) Register(ctx context.Context, username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return apperrors.NewValidationError("username, email and password required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:         username,
		Email:            email,
		PasswordHash:     hash,
		PermissionTypeID: domain.RoleStudent.PermissionID(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The duplicate check above races concurrent registrations; the
		// unique index on users.email is the authority.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperrors.NewConflict("email already registered", nil)
		}
		return apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.New(events.EventUserRegistered, events.UserRegisteredPayload{
		Username: user.Username,
		Email:    user.Email,
	}))
	return nil
}

// ModifyPermission moves the target account to a new permission level.
// It performs no role check of its own: the admin tier gate on the route
// is the single point of control, and no other entry point may reach
// this mutation.
func (s *AuthService) ModifyPermission(ctx context.Context, email string, permissionTypeID int) error {
	if email == "" || permissionTypeID == 0 {
		return apperrors.NewValidationError("email and permission required", nil)
	}

	perm, err := s.perms.GetByID(ctx, permissionTypeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("unknown permission", nil)
		}
		return apperrors.NewInternalError(err)
	}

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.NewInternalError(err)
	}

	if err := s.users.UpdatePermission(ctx, email, permissionTypeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.New(events.EventPermissionChanged, events.PermissionChangedPayload{
		Email:      email,
		Permission: perm.Name,
	}))
	return nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
