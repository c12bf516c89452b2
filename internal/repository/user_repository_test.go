package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/accounts-service/internal/domain"
)

func newUserTestFixture(t *testing.T) (UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewUserRepository(mock), mock
}

func sampleUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.User{
		ID:           "5b4c0f8e-2f7c-4f55-9a77-0c2d3c8b1e01",
		Email:        "alice@example.com",
		PasswordHash: "$2a$12$abcdefghijklmnopqrstuv",
		Role:         domain.RoleEditor,
		IsAdmin:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func userRow(u *domain.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"user_id", "email", "hashed_password", "role", "is_admin", "create_time", "update_time",
	}).AddRow(u.ID, u.Email, u.PasswordHash, string(u.Role), u.IsAdmin, u.CreatedAt, u.UpdatedAt)
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestUserRepository_Create_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	u := sampleUser()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO user_account").
		WithArgs(u.ID, u.Email, u.PasswordHash, string(u.Role), u.IsAdmin).
		WillReturnRows(pgxmock.NewRows([]string{"create_time", "update_time"}).AddRow(created, created))

	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, created, u.CreatedAt)
	assert.Equal(t, created, u.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	u := sampleUser()

	mock.ExpectQuery("INSERT INTO user_account").
		WithArgs(u.ID, u.Email, u.PasswordHash, string(u.Role), u.IsAdmin).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), u)
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// GetByID / GetByEmail
// ---------------------------------------------------------------------------

func TestUserRepository_GetByID_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	u := sampleUser()

	mock.ExpectQuery("SELECT .+ FROM user_account WHERE user_id=").
		WithArgs(u.ID).
		WillReturnRows(userRow(u))

	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)

	mock.ExpectQuery("SELECT .+ FROM user_account WHERE user_id=").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_StoreErrorPassesThrough(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	cause := errors.New("conn closed")

	mock.ExpectQuery("SELECT .+ FROM user_account WHERE user_id=").
		WithArgs("u1").
		WillReturnError(cause)

	_, err := repo.GetByID(context.Background(), "u1")
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_GetByEmail_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	u := sampleUser()
	u.Role = domain.RoleViewer
	u.IsAdmin = true

	mock.ExpectQuery("SELECT .+ FROM user_account WHERE email=").
		WithArgs(u.Email).
		WillReturnRows(userRow(u))

	got, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleViewer, got.Role)
	assert.True(t, got.IsAdministrator())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Update / Delete / List
// ---------------------------------------------------------------------------

func TestUserRepository_Update(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	u := sampleUser()

	mock.ExpectExec("UPDATE user_account SET").
		WithArgs(u.Email, u.PasswordHash, string(u.Role), u.IsAdmin, u.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE user_account SET").
		WithArgs(u.Email, u.PasswordHash, string(u.Role), u.IsAdmin, u.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.NoError(t, repo.Update(context.Background(), u))
	assert.ErrorIs(t, repo.Update(context.Background(), u), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete(t *testing.T) {
	repo, mock := newUserTestFixture(t)

	mock.ExpectExec("DELETE FROM user_account").
		WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM user_account").
		WithArgs("u2").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Delete(context.Background(), "u1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "u2"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	a := sampleUser()
	b := sampleUser()
	b.ID = "9e0d8f5a-7c0b-4e8a-8a5d-64b8e7d3f0a2"
	b.Email = "bob@example.com"
	b.Role = domain.RoleAdmin

	rows := pgxmock.NewRows([]string{
		"user_id", "email", "hashed_password", "role", "is_admin", "create_time", "update_time",
	}).
		AddRow(a.ID, a.Email, a.PasswordHash, string(a.Role), a.IsAdmin, a.CreatedAt, a.UpdatedAt).
		AddRow(b.ID, b.Email, b.PasswordHash, string(b.Role), b.IsAdmin, b.CreatedAt, b.UpdatedAt)

	mock.ExpectQuery("SELECT .+ FROM user_account ORDER BY").WillReturnRows(rows)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice@example.com", users[0].Email)
	assert.Equal(t, domain.RoleAdmin, users[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}
