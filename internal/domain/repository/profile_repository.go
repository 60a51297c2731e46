package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/liljarn/gandalf/internal/domain/entity"
)

var (
	ErrNotFound        = errors.New("profile not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrDuplicateUUID   = errors.New("uuid already registered")
	ErrVersionConflict = errors.New("profile was modified concurrently")
)

// ProfileRepository defines the persistence operations for user profiles.
// Save is a full-record replace keyed by UUID and checks the record version
// so concurrent read-modify-write cycles cannot silently lose updates.
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.UserProfile) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (*entity.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*entity.UserProfile, error)
	Save(ctx context.Context, p *entity.UserProfile) error
	ListEmails(ctx context.Context) ([]string, error)
}
