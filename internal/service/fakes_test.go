package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/accounts-service/internal/domain"
	"github.com/spec-kit/accounts-service/internal/events"
	"github.com/spec-kit/accounts-service/internal/repository"
)

type memoryUsers struct {
	mu    sync.Mutex
	byID  map[string]domain.User
	err   error
	clock time.Time
}

func newMemoryUsers(users ...domain.User) *memoryUsers {
	m := &memoryUsers{byID: map[string]domain.User{}, clock: time.Unix(1_700_000_000, 0).UTC()}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memoryUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.byID {
		if existing.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	m.clock = m.clock.Add(time.Second)
	user.CreatedAt, user.UpdatedAt = m.clock, m.clock
	m.byID[user.ID] = *user
	return nil
}

func (m *memoryUsers) Update(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byID[user.ID]; !ok {
		return repository.ErrNotFound
	}
	m.byID[user.ID] = *user
	return nil
}

func (m *memoryUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryUsers) List(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryItems struct {
	byID map[string]domain.Item
	err  error
}

func newMemoryItems() *memoryItems {
	return &memoryItems{byID: map[string]domain.Item{}}
}

func (m *memoryItems) Create(_ context.Context, item *domain.Item) error {
	if m.err != nil {
		return m.err
	}
	m.byID[item.ID] = *item
	return nil
}

func (m *memoryItems) Update(_ context.Context, item *domain.Item) error {
	if m.err != nil {
		return m.err
	}
	existing, ok := m.byID[item.ID]
	if !ok {
		return repository.ErrNotFound
	}
	item.OwnerID = existing.OwnerID
	m.byID[item.ID] = *item
	return nil
}

func (m *memoryItems) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryItems) GetByID(_ context.Context, id string) (*domain.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	item, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (m *memoryItems) List(_ context.Context) ([]domain.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Item, 0, len(m.byID))
	for _, item := range m.byID {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryDenyList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemoryDenyList() *memoryDenyList {
	return &memoryDenyList{revoked: map[string]time.Time{}}
}

func (d *memoryDenyList) Revoke(_ context.Context, id string, expiresAt time.Time) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.revoked[id]; ok {
		return false, nil
	}
	d.revoked[id] = expiresAt
	return true, nil
}

func (d *memoryDenyList) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[id]
	return ok, nil
}

type recordingDispatcher struct {
	events.Dispatcher
	published []events.Event
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{Dispatcher: events.NewBus(nil)}
}

func (r *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	r.published = append(r.published, event)
	return r.Dispatcher.Publish(ctx, event)
}

func (r *recordingDispatcher) types() []events.EventType {
	out := make([]events.EventType, 0, len(r.published))
	for _, e := range r.published {
		out = append(out, e.Type)
	}
	return out
}
