package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/accounts-service/internal/domain"
)

// ItemRepository defines persistence access for items.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context) ([]domain.Item, error)
}

type itemRepository struct {
	db DBTX
}

// NewItemRepository returns a Postgres-backed implementation.
func NewItemRepository(db DBTX) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	const query = `
        INSERT INTO item (item_id, title, description, owner_id)
        VALUES ($1, $2, $3, $4)
        RETURNING create_time, update_time`

	if err := r.db.QueryRow(ctx, query,
		item.ID,
		item.Title,
		item.Description,
		item.OwnerID,
	).Scan(&item.CreatedAt, &item.UpdatedAt); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	const query = `
        UPDATE item SET title=$1, description=$2, update_time=NOW()
        WHERE item_id=$3
        RETURNING owner_id, create_time, update_time`

	if err := r.db.QueryRow(ctx, query,
		item.Title,
		item.Description,
		item.ID,
	).Scan(&item.OwnerID, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return notFoundOr(err)
	}
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM item WHERE item_id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	const query = `
        SELECT item_id, title, description, owner_id, create_time, update_time
        FROM item WHERE item_id=$1`

	var item domain.Item
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.OwnerID,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, notFoundOr(err)
	}
	return &item, nil
}

func (r *itemRepository) List(ctx context.Context) ([]domain.Item, error) {
	const query = `
        SELECT item_id, title, description, owner_id, create_time, update_time
        FROM item ORDER BY create_time, item_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Description,
			&item.OwnerID,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}
