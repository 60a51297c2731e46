package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/liljarn/gandalf/internal/domain/entity"
	"github.com/liljarn/gandalf/internal/domain/repository"
)

// DB is the slice of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ProfileRepository struct {
	pool DB
}

func NewProfileRepository(pool DB) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const profileColumns = `uuid, email, password, salt, first_name, last_name, birth_date, photo_url, version`

func (r *ProfileRepository) Create(ctx context.Context, p *entity.UserProfile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_data (uuid, email, password, salt, first_name, last_name, birth_date, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.UUID, p.Email, p.Password, p.Salt, p.FirstName, p.LastName, p.BirthDate, p.PhotoURL)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique violation
			switch pgErr.ConstraintName {
			case "user_data_pkey":
				return fmt.Errorf("uuid %s: %w", p.UUID, repository.ErrDuplicateUUID)
			default:
				return fmt.Errorf("email %s: %w", p.Email, repository.ErrDuplicateEmail)
			}
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	p.Version = 0
	return nil
}

func (r *ProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM user_data WHERE email = $1)
	`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists by email: %w", err)
	}
	return exists, nil
}

func (r *ProfileRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*entity.UserProfile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM user_data
		WHERE uuid = $1
	`, id)
	return scanProfile(row)
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*entity.UserProfile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM user_data
		WHERE email = $1
	`, email)
	return scanProfile(row)
}

// Save replaces the stored record, guarded by the version read alongside it.
// Zero rows affected means either the row vanished or someone else won the
// read-modify-write race; the two are told apart with a follow-up lookup.
func (r *ProfileRepository) Save(ctx context.Context, p *entity.UserProfile) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE user_data
		SET email = $1, password = $2, salt = $3, first_name = $4, last_name = $5,
		    birth_date = $6, photo_url = $7, version = version + 1
		WHERE uuid = $8 AND version = $9
	`, p.Email, p.Password, p.Salt, p.FirstName, p.LastName, p.BirthDate, p.PhotoURL, p.UUID, p.Version)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("email %s: %w", p.Email, repository.ErrDuplicateEmail)
		}
		return fmt.Errorf("save profile: %w", err)
	}
	if res.RowsAffected() == 0 {
		exists := false
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM user_data WHERE uuid = $1)`, p.UUID).Scan(&exists); err == nil && exists {
			return fmt.Errorf("uuid %s: %w", p.UUID, repository.ErrVersionConflict)
		}
		return fmt.Errorf("uuid %s: %w", p.UUID, repository.ErrNotFound)
	}
	p.Version++
	return nil
}

func (r *ProfileRepository) ListEmails(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT email FROM user_data ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	return emails, nil
}

func scanProfile(row pgx.Row) (*entity.UserProfile, error) {
	p := &entity.UserProfile{}
	err := row.Scan(&p.UUID, &p.Email, &p.Password, &p.Salt, &p.FirstName, &p.LastName,
		&p.BirthDate, &p.PhotoURL, &p.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return p, nil
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
