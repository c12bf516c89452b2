package domain

import "time"

// Role is the coarse-grained permission category of an account.
type Role string

const (
	RoleViewer Role = "VIEWER"
	RoleEditor Role = "EDITOR"
	RoleAdmin  Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// User is the account record a token subject resolves to.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	// IsAdmin is the legacy privilege flag kept alongside Role.
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdministrator reports full administrator rights: Role ADMIN or the legacy flag.
// Every admin check goes through here.
func (u *User) IsAdministrator() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleAdmin || u.IsAdmin
}
