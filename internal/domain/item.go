package domain

import "time"

// Item is a role-gated resource owned by the user who created it.
type Item struct {
	ID          string
	Title       string
	Description string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
