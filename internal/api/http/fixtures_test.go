package http

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/accounts-service/internal/api/http/handlers"
	"github.com/spec-kit/accounts-service/internal/auth"
	"github.com/spec-kit/accounts-service/internal/config"
	"github.com/spec-kit/accounts-service/internal/domain"
	"github.com/spec-kit/accounts-service/internal/events"
	"github.com/spec-kit/accounts-service/internal/observability"
	"github.com/spec-kit/accounts-service/internal/repository"
	"github.com/spec-kit/accounts-service/internal/service"
)

const fixtureSecret = "router-test-secret-0123456789abcdef"

var fixtureHasher = auth.NewPasswordHasher(4)

type userStore struct {
	mu   sync.Mutex
	byID map[string]domain.User
}

func (s *userStore) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}
	u.CreatedAt, u.UpdatedAt = time.Now().UTC(), time.Now().UTC()
	s.byID[u.ID] = *u
	return nil
}

func (s *userStore) Update(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[u.ID]; !ok {
		return repository.ErrNotFound
	}
	s.byID[u.ID] = *u
	return nil
}

func (s *userStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *userStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *userStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *userStore) List(_ context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, u)
	}
	return out, nil
}

type itemStore struct {
	mu   sync.Mutex
	byID map[string]domain.Item
}

func (s *itemStore) Create(_ context.Context, item *domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[item.ID] = *item
	return nil
}

func (s *itemStore) Update(_ context.Context, item *domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[item.ID]
	if !ok {
		return repository.ErrNotFound
	}
	item.OwnerID, item.CreatedAt = existing.OwnerID, existing.CreatedAt
	s.byID[item.ID] = *item
	return nil
}

func (s *itemStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *itemStore) GetByID(_ context.Context, id string) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (s *itemStore) List(_ context.Context) ([]domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Item, 0, len(s.byID))
	for _, item := range s.byID {
		out = append(out, item)
	}
	return out, nil
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type testServer struct {
	app     *fiber.App
	users   *userStore
	items   *itemStore
	tokens  *auth.TokenManager
	metrics *observability.Metrics
	redis   *miniredis.Miniredis
}

type serverOption func(*config.Config)

func withAllowedHosts(hosts ...string) serverOption {
	return func(c *config.Config) { c.Security.AllowedHosts = hosts }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Name: "accounts-service", Version: "test", RequestTimeoutSeconds: 5},
		Security: config.SecurityConfig{
			JWTIssuer:                "my-app",
			JWTSecretKey:             fixtureSecret,
			JWTAccessTokenExpireSecs: 3600,
			RefreshTokenExpireSecs:   7200,
			AllowedHosts:             []string{"*"},
			BackendCORSOrigins:       []string{"http://localhost:3000"},
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	denylist := auth.NewRedisDenyList(client)

	s := &testServer{
		users:   &userStore{byID: map[string]domain.User{}},
		items:   &itemStore{byID: map[string]domain.Item{}},
		tokens:  auth.NewTokenManager(fixtureSecret, "my-app"),
		metrics: observability.NewMetrics(),
		redis:   mr,
	}

	logger := zap.NewNop()
	dispatcher := events.NewBus(nil)
	userService := service.NewUserService(s.users, fixtureHasher, dispatcher, logger)
	authService := service.NewAuthService(cfg.Security, service.AuthDependencies{
		UserRepo:   s.users,
		Hasher:     fixtureHasher,
		Tokens:     s.tokens,
		DenyList:   denylist,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	gate := auth.NewGate(s.tokens, s.users, auth.WithDenyList(denylist))

	s.app = fiber.New()
	RegisterMiddlewares(s.app, logger, s.metrics, cfg)
	RegisterRoutes(s.app, RouteConfig{
		Health:         handlers.NewHealthHandler("accounts-service", "test", pinger{}, pinger{err: errors.New("redis down")}),
		Auth:           handlers.NewAuthHandler(authService, userService),
		Users:          handlers.NewUsersHandler(userService),
		Items:          handlers.NewItemsHandler(service.NewItemService(s.items, logger)),
		AuthMiddleware: auth.NewAuthMiddleware(gate, logger),
		Metrics:        s.metrics,
	})
	return s
}

// seed stores an account with the given password and returns a bearer header for it.
func (s *testServer) seed(t *testing.T, id, email, password string, role domain.Role, isAdmin bool) string {
	t.Helper()
	digest, err := fixtureHasher.Hash(password)
	require.NoError(t, err)
	s.users.byID[id] = domain.User{ID: id, Email: email, PasswordHash: digest, Role: role, IsAdmin: isAdmin}

	token, _, err := s.tokens.GenerateToken(id, domain.TokenTypeAccess, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}
