package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viettravel/tourhub/internal/devserver/tokens"
	"github.com/viettravel/tourhub/internal/models"
)

func TestGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	issued := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"token", "user_id", "role", "device_id", "issued_at"}).
		AddRow("r1", "u-1", "Customer", "dev-1", issued)
	mock.ExpectQuery("SELECT token, user_id, role, device_id, issued_at").
		WithArgs("r1").
		WillReturnRows(rows)

	repo := NewPostgresTokenRepository(db)
	got, err := repo.Get(context.Background(), "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, models.RoleCustomer, got.Role)
	assert.Equal(t, "dev-1", got.DeviceID)
	assert.True(t, got.IssuedAt.Equal(issued))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_MissingTokenIsNotAnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT token, user_id, role, device_id, issued_at").
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "role", "device_id", "issued_at"}))

	repo := NewPostgresTokenRepository(db)
	got, err := repo.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, got, "an absent token is a plain rejection, not a failure")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	issued := time.Now()
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs("r2", "u-1", "Partner", "dev-1", issued).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgresTokenRepository(db)
	err = repo.Upsert(context.Background(), &tokens.StoredRefreshToken{
		Token:    "r2",
		UserID:   "u-1",
		Role:     models.RolePartner,
		DeviceID: "dev-1",
		IssuedAt: issued,
	})
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM refresh_tokens").
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgresTokenRepository(db)
	require.NoError(t, repo.Delete(context.Background(), "r1"))

	require.NoError(t, mock.ExpectationsWereMet())
}
