package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liljarn/gandalf/internal/domain/entity"
	"github.com/liljarn/gandalf/internal/domain/repository"
)

func testProfile() *entity.UserProfile {
	return &entity.UserProfile{
		UUID:      uuid.MustParse("44444444-4444-4444-4444-444444444444"),
		Email:     "ann@x.com",
		Password:  "hash",
		Salt:      "salt",
		FirstName: "Ann",
		LastName:  "Smith",
		BirthDate: time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC),
		Version:   3,
	}
}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *ProfileRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewProfileRepository(mock)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		p := testProfile()
		p.Version = 7 // stale in-memory value, reset on insert

		mock.ExpectExec("INSERT INTO user_data").
			WithArgs(p.UUID, p.Email, p.Password, p.Salt, p.FirstName, p.LastName, p.BirthDate, p.PhotoURL).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Create(ctx, p))
		assert.Equal(t, int64(0), p.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		p := testProfile()

		mock.ExpectExec("INSERT INTO user_data").
			WithArgs(p.UUID, p.Email, p.Password, p.Salt, p.FirstName, p.LastName, p.BirthDate, p.PhotoURL).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "user_data_email_key"})

		err := repo.Create(ctx, p)
		assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateUUID", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		p := testProfile()

		mock.ExpectExec("INSERT INTO user_data").
			WithArgs(p.UUID, p.Email, p.Password, p.Salt, p.FirstName, p.LastName, p.BirthDate, p.PhotoURL).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "user_data_pkey"})

		err := repo.Create(ctx, p)
		assert.ErrorIs(t, err, repository.ErrDuplicateUUID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetByUUID(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		p := testProfile()

		rows := pgxmock.NewRows([]string{"uuid", "email", "password", "salt", "first_name", "last_name", "birth_date", "photo_url", "version"}).
			AddRow(p.UUID, p.Email, p.Password, p.Salt, p.FirstName, p.LastName, p.BirthDate, (*string)(nil), p.Version)
		mock.ExpectQuery("SELECT (.+) FROM user_data").
			WithArgs(p.UUID).
			WillReturnRows(rows)

		got, err := repo.GetByUUID(ctx, p.UUID)
		require.NoError(t, err)
		assert.Equal(t, p.Email, got.Email)
		assert.Equal(t, int64(3), got.Version)
		assert.Nil(t, got.PhotoURL)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		id := uuid.New()

		mock.ExpectQuery("SELECT (.+) FROM user_data").
			WithArgs(id).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByUUID(ctx, id)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSave(t *testing.T) {
	ctx := context.Background()

	t.Run("BumpsVersion", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		p := testProfile()

		mock.ExpectExec("UPDATE user_data").
			WithArgs(p.Email, p.Password, p.Salt, p.FirstName, p.LastName, p.BirthDate, p.PhotoURL, p.UUID, int64(3)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.Save(ctx, p))
		assert.Equal(t, int64(4), p.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("StaleVersion", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		p := testProfile()

		mock.ExpectExec("UPDATE user_data").
			WithArgs(p.Email, p.Password, p.Salt, p.FirstName, p.LastName, p.BirthDate, p.PhotoURL, p.UUID, int64(3)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(p.UUID).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		err := repo.Save(ctx, p)
		assert.ErrorIs(t, err, repository.ErrVersionConflict)
		assert.Equal(t, int64(3), p.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RowVanished", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		p := testProfile()

		mock.ExpectExec("UPDATE user_data").
			WithArgs(p.Email, p.Password, p.Salt, p.FirstName, p.LastName, p.BirthDate, p.PhotoURL, p.UUID, int64(3)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(p.UUID).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		err := repo.Save(ctx, p)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		p := testProfile()

		mock.ExpectExec("UPDATE user_data").
			WithArgs(p.Email, p.Password, p.Salt, p.FirstName, p.LastName, p.BirthDate, p.PhotoURL, p.UUID, int64(3)).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "user_data_email_key"})

		err := repo.Save(ctx, p)
		assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
