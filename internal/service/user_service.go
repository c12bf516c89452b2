package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/accounts-service/internal/auth"
	"github.com/spec-kit/accounts-service/internal/config"
	"github.com/spec-kit/accounts-service/internal/domain"
	"github.com/spec-kit/accounts-service/internal/events"
	"github.com/spec-kit/accounts-service/internal/repository"
	apperrors "github.com/spec-kit/accounts-service/pkg/util"
)

// UserService manages accounts: self-service registration and administration.
type UserService struct {
	users      repository.UserRepository
	hasher     *auth.PasswordHasher
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService constructs the service. dispatcher may be nil.
func NewUserService(users repository.UserRepository, hasher *auth.PasswordHasher, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, hasher: hasher, dispatcher: dispatcher, logger: logger}
}

// Register creates a VIEWER account. Callers cannot choose their own role.
func (s *UserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	return s.create(ctx, nil, email, password, domain.RoleViewer, "register")
}

// Create lets an administrator add an account with any role.
func (s *UserService) Create(ctx context.Context, actor *domain.User, email, password string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{"role": "must be one of VIEWER EDITOR ADMIN"})
	}
	return s.create(ctx, actor, email, password, role, "admin")
}

// Me returns the stored record of the authenticated account.
func (s *UserService) Me(ctx context.Context, principal *domain.User) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, principal.ID)
	if err != nil {
		return nil, userStoreError(err, principal.ID)
	}
	return user, nil
}

// DeleteMe removes the authenticated account.
func (s *UserService) DeleteMe(ctx context.Context, principal *domain.User) error {
	if err := s.users.Delete(ctx, principal.ID); err != nil {
		return userStoreError(err, principal.ID)
	}
	s.logger.Info("account deleted", zap.String("user_id", principal.ID))
	s.publish(ctx, events.Event{
		Type:    events.EventUserDeleted,
		UserID:  principal.ID,
		ActorID: principal.ID,
		Payload: events.UserDeletedPayload{Email: principal.Email, Self: true},
	})
	return nil
}

// ResetPassword replaces the authenticated account's password.
func (s *UserService) ResetPassword(ctx context.Context, principal *domain.User, newPassword string) error {
	user, err := s.users.GetByID(ctx, principal.ID)
	if err != nil {
		return userStoreError(err, principal.ID)
	}
	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.NewBadRequest("password cannot be hashed")
	}
	user.PasswordHash = digest
	if err := s.users.Update(ctx, user); err != nil {
		return userStoreError(err, user.ID)
	}
	s.publish(ctx, events.Event{Type: events.EventUserPasswordChanged, UserID: user.ID, ActorID: user.ID})
	return nil
}

// List returns every account.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	return users, nil
}

// Delete removes another account. Administrators cannot delete themselves here.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if actor != nil && actor.ID == id {
		return apperrors.NewBadRequest("users cannot delete themselves through this endpoint")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return userStoreError(err, id)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return userStoreError(err, id)
	}
	s.logger.Info("account deleted by administrator", zap.String("user_id", id), zap.String("actor_id", actorID(actor)))
	s.publish(ctx, events.Event{
		Type:    events.EventUserDeleted,
		UserID:  id,
		ActorID: actorID(actor),
		Payload: events.UserDeletedPayload{Email: user.Email},
	})
	return nil
}

// EnsureDefaultAdmin creates the bootstrap administrator when configured and missing.
func (s *UserService) EnsureDefaultAdmin(ctx context.Context, cfg config.AdminConfig) error {
	if !cfg.CreateDefault {
		return nil
	}
	email := normalizeEmail(cfg.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		s.logger.Debug("default admin already present", zap.String("email", email))
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	_, err := s.create(ctx, nil, email, cfg.Password, domain.RoleAdmin, "bootstrap")
	var de *apperrors.DomainError
	if errors.As(err, &de) && de.Code == "CONFLICT" {
		// another instance won the race
		return nil
	}
	return err
}

func (s *UserService) create(ctx context.Context, actor *domain.User, email, password string, role domain.Role, source string) (*domain.User, error) {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.NewBadRequest("password cannot be hashed")
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: digest,
		Role:         role,
		IsAdmin:      role == domain.RoleAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
		return nil, storeUnavailable(err)
	}

	s.logger.Info("account created",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("source", source))
	s.publish(ctx, events.Event{
		Type:    events.EventUserCreated,
		UserID:  user.ID,
		ActorID: actorID(actor),
		Payload: events.UserCreatedPayload{Email: user.Email, Role: user.Role, IsAdmin: user.IsAdmin, Source: source},
	})
	return user, nil
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, event)
}

func userStoreError(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	if errors.Is(err, repository.ErrEmailTaken) {
		return apperrors.NewConflict("email already registered", nil)
	}
	return storeUnavailable(err)
}

func actorID(actor *domain.User) string {
	if actor == nil {
		return ""
	}
	return actor.ID
}
