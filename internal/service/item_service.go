package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/accounts-service/internal/domain"
	"github.com/spec-kit/accounts-service/internal/repository"
	apperrors "github.com/spec-kit/accounts-service/pkg/util"
)

// ItemService manages items. Role checks happen at the route level.
type ItemService struct {
	items  repository.ItemRepository
	logger *zap.Logger
}

// NewItemService builds the service.
func NewItemService(items repository.ItemRepository, logger *zap.Logger) *ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemService{items: items, logger: logger}
}

// List returns all items.
func (s *ItemService) List(ctx context.Context) ([]domain.Item, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, apperrors.NewUnavailable("item store unavailable", err)
	}
	return items, nil
}

// Get returns a single item.
func (s *ItemService) Get(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, itemStoreError(err, id)
	}
	return item, nil
}

// Create stores a new item owned by owner.
func (s *ItemService) Create(ctx context.Context, owner *domain.User, title, description string) (*domain.Item, error) {
	item := &domain.Item{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		OwnerID:     owner.ID,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, apperrors.NewUnavailable("item store unavailable", err)
	}
	s.logger.Info("item created", zap.String("item_id", item.ID), zap.String("owner_id", owner.ID))
	return item, nil
}

// Update replaces the title and description of an item.
func (s *ItemService) Update(ctx context.Context, id, title, description string) (*domain.Item, error) {
	item := &domain.Item{ID: id, Title: title, Description: description}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, itemStoreError(err, id)
	}
	return item, nil
}

// Delete removes an item.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	if err := s.items.Delete(ctx, id); err != nil {
		return itemStoreError(err, id)
	}
	s.logger.Info("item deleted", zap.String("item_id", id))
	return nil
}

func itemStoreError(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("item", map[string]any{"id": id})
	}
	return apperrors.NewUnavailable("item store unavailable", err)
}
