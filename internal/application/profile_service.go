package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/liljarn/gandalf/internal/domain/client"
	"github.com/liljarn/gandalf/internal/domain/entity"
	repo "github.com/liljarn/gandalf/internal/domain/repository"
	"github.com/liljarn/gandalf/pkg/helpers"
)

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const publicProfileTTL = 10 * time.Minute

// Service orchestrates profile reads and partial updates. Postgres is the
// source of truth; Redis, RabbitMQ, and Elasticsearch are optional
// collaborators guarded by nil checks so the service degrades to plain
// repository access in tests and minimal deployments.
type Service struct {
	Repo            repo.ProfileRepository
	Images          client.ImageClient
	Redis           *redis.Client
	Logger          *logrus.Logger
	Pub             *helpers.RabbitPublisher
	ES              *elasticsearch.Client
	ESProfilesIndex string
}

func NewService(r repo.ProfileRepository, images client.ImageClient, rdb *redis.Client, logger *logrus.Logger, pub *helpers.RabbitPublisher, es *elasticsearch.Client, esProfilesIndex string) *Service {
	return &Service{
		Repo:            r,
		Images:          images,
		Redis:           rdb,
		Logger:          logger,
		Pub:             pub,
		ES:              es,
		ESProfilesIndex: esProfilesIndex,
	}
}

func publicProfileKey(id uuid.UUID) string {
	return "profile:public:" + id.String()
}

// ProfileEvent is published to RabbitMQ after every successful profile
// mutation. The notify worker turns these into emails.
type ProfileEvent struct {
	Type       string    `json:"type"` // profile_created, profile_updated, photo_updated, photo_removed
	UUID       uuid.UUID `json:"uuid"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	EventProfileCreated = "profile_created"
	EventProfileUpdated = "profile_updated"
	EventPhotoUpdated   = "photo_updated"
	EventPhotoRemoved   = "photo_removed"
)

// GetProfile returns the public view, read through the Redis cache.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*entity.PublicProfile, error) {
	if s.Redis != nil {
		var cached entity.PublicProfile
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, publicProfileKey(id), &cached); err == nil && ok {
			return &cached, nil
		}
	}

	p, err := s.Repo.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	view := p.Public()
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, publicProfileKey(id), view, publicProfileTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("uuid", id).Warn("profile cache write failed")
		}
	}
	return &view, nil
}

type CreateProfileInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	BirthDate time.Time
}

// CreateProfile registers a new profile with a freshly salted password hash.
func (s *Service) CreateProfile(ctx context.Context, in CreateProfileInput) (*entity.PublicProfile, error) {
	taken, err := s.Repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	salt, err := helpers.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	p := &entity.UserProfile{
		UUID:      uuid.New(),
		Email:     in.Email,
		Password:  helpers.Encrypt(in.Password, salt),
		Salt:      salt,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		BirthDate: in.BirthDate,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.publishEvent(ctx, EventProfileCreated, p)
	s.indexProfile(ctx, p)

	view := p.Public()
	return &view, nil
}

// EditProfileInput is the partial-update request. Nil fields keep the
// stored value. Password carries a plaintext secret; it is hashed with a
// fresh salt here, before anything reaches the store.
type EditProfileInput struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	BirthDate *time.Time
}

// EditProfile merges a partial update onto the stored profile and saves it.
func (s *Service) EditProfile(ctx context.Context, id uuid.UUID, in EditProfileInput) error {
	p, err := s.Repo.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProfileNotFound
		}
		return err
	}

	data := entity.ChangedProfileData{
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		BirthDate: in.BirthDate,
	}
	if in.Password != nil {
		salt, err := helpers.GenerateSalt()
		if err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}
		data.Credentials = &entity.ChangedCredentials{
			Password: helpers.Encrypt(*in.Password, salt),
			Salt:     salt,
		}
	}

	return s.saveMerged(ctx, p, data, EventProfileUpdated)
}

// EditProfilePhoto uploads the image and attaches its durable URL to the
// profile. The profile is fetched first so an unknown identifier fails
// before any bytes travel to storage.
func (s *Service) EditProfilePhoto(ctx context.Context, id uuid.UUID, r io.Reader, filename, contentType string) (string, error) {
	p, err := s.Repo.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrProfileNotFound
		}
		return "", err
	}

	name := photoObjectName(id, filename)
	url, err := s.Images.Upload(ctx, r, name, contentType)
	if err != nil {
		return "", err
	}

	data := entity.ChangedProfileData{Photo: &entity.PhotoChange{URL: &url}}
	if err := s.saveMerged(ctx, p, data, EventPhotoUpdated); err != nil {
		return "", err
	}
	return url, nil
}

// DeleteProfilePhoto detaches the photo reference. The remote object is
// left in place; storage lifecycle is not this service's concern.
func (s *Service) DeleteProfilePhoto(ctx context.Context, id uuid.UUID) error {
	p, err := s.Repo.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProfileNotFound
		}
		return err
	}
	data := entity.ChangedProfileData{Photo: &entity.PhotoChange{URL: nil}}
	return s.saveMerged(ctx, p, data, EventPhotoRemoved)
}

// VerifyCredentials checks a plaintext secret against the stored hash+salt
// pair and returns the private view for the authentication collaborator.
func (s *Service) VerifyCredentials(ctx context.Context, email, password string) (*entity.PrivateProfile, error) {
	p, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.IsCorrect(password, p.Salt, p.Password) {
		return nil, ErrInvalidCredentials
	}
	private := p.Private()
	return &private, nil
}

// ListEmails returns every registered email, for batch notification use.
func (s *Service) ListEmails(ctx context.Context) ([]string, error) {
	return s.Repo.ListEmails(ctx)
}

func (s *Service) saveMerged(ctx context.Context, p *entity.UserProfile, data entity.ChangedProfileData, eventType string) error {
	merged := p.Merge(data)
	if err := s.Repo.Save(ctx, &merged); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return ErrEmailTaken
		}
		return err
	}

	s.invalidateCache(ctx, merged.UUID)
	s.publishEvent(ctx, eventType, &merged)
	s.indexProfile(ctx, &merged)
	return nil
}

func (s *Service) invalidateCache(ctx context.Context, id uuid.UUID) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, publicProfileKey(id)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("uuid", id).Warn("profile cache invalidation failed")
	}
}

func (s *Service) publishEvent(ctx context.Context, eventType string, p *entity.UserProfile) {
	if s.Pub == nil {
		return
	}
	ev := ProfileEvent{
		Type:       eventType,
		UUID:       p.UUID,
		Email:      p.Email,
		FirstName:  p.FirstName,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.Pub.PublishJSON(ctx, ev); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("uuid", p.UUID).WithField("event", eventType).Warn("profile event publish failed")
	}
}

func (s *Service) indexProfile(ctx context.Context, p *entity.UserProfile) {
	if s.ES == nil || s.ESProfilesIndex == "" {
		return
	}
	doc := p.Public()
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESProfilesIndex, DocumentID: p.UUID.String(), Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("uuid", p.UUID).Warn("profile index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("uuid", p.UUID).Warn("profile index response error")
	}
}

// SearchProfiles runs a multi_match query over email and name fields.
func (s *Service) SearchProfiles(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESProfilesIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "first_name", "last_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESProfilesIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func photoObjectName(id uuid.UUID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return filepath.ToSlash(filepath.Join("profile", id.String(), uuid.NewString()+ext))
}
