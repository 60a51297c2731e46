package application

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/liljarn/gandalf/internal/domain/entity"
	repo "github.com/liljarn/gandalf/internal/domain/repository"
	"github.com/liljarn/gandalf/pkg/helpers"
)

// MockProfileRepo is a mock implementation of the ProfileRepository interface
type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) Create(ctx context.Context, p *entity.UserProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProfileRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileRepo) GetByUUID(ctx context.Context, id uuid.UUID) (*entity.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserProfile), args.Error(1)
}

func (m *MockProfileRepo) GetByEmail(ctx context.Context, email string) (*entity.UserProfile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserProfile), args.Error(1)
}

func (m *MockProfileRepo) Save(ctx context.Context, p *entity.UserProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProfileRepo) ListEmails(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockImageClient is a mock implementation of the ImageClient interface
type MockImageClient struct {
	mock.Mock
}

func (m *MockImageClient) Upload(ctx context.Context, r io.Reader, name, contentType string) (string, error) {
	args := m.Called(ctx, r, name, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockImageClient) URL(name string) string {
	args := m.Called(name)
	return args.String(0)
}

func strPtr(s string) *string { return &s }

func storedProfile(password, salt string) *entity.UserProfile {
	return &entity.UserProfile{
		UUID:      uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		Email:     "a@x.com",
		Password:  helpers.Encrypt(password, salt),
		Salt:      salt,
		FirstName: "Ann",
		LastName:  "Smith",
		BirthDate: time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC),
		Version:   1,
	}
}

func newTestService(r *MockProfileRepo, img *MockImageClient) *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewService(r, img, nil, logger, nil, nil, "")
}

func TestGetProfile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockProfileRepo)
		svc := newTestService(mockRepo, new(MockImageClient))
		ctx := context.Background()
		p := storedProfile("password123", "salt")

		mockRepo.On("GetByUUID", ctx, p.UUID).Return(p, nil).Once()

		view, err := svc.GetProfile(ctx, p.UUID)

		require.NoError(t, err)
		assert.Equal(t, p.Email, view.Email)
		assert.Equal(t, "1990-05-12", view.BirthDate)
		mockRepo.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockProfileRepo)
		svc := newTestService(mockRepo, new(MockImageClient))
		ctx := context.Background()
		id := uuid.New()

		mockRepo.On("GetByUUID", ctx, id).Return(nil, repo.ErrNotFound).Once()

		view, err := svc.GetProfile(ctx, id)

		assert.Nil(t, view)
		assert.ErrorIs(t, err, ErrProfileNotFound)
		mockRepo.AssertExpectations(t)
	})
}

func TestCreateProfile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockProfileRepo)
		svc := newTestService(mockRepo, new(MockImageClient))
		ctx := context.Background()

		var created *entity.UserProfile
		mockRepo.On("ExistsByEmail", ctx, "new@x.com").Return(false, nil).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*entity.UserProfile")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*entity.UserProfile) }).
			Return(nil).Once()

		view, err := svc.CreateProfile(ctx, CreateProfileInput{
			Email:     "new@x.com",
			Password:  "password123",
			FirstName: "New",
			LastName:  "User",
			BirthDate: time.Date(1991, 2, 3, 0, 0, 0, 0, time.UTC),
		})

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, view.UUID, created.UUID)
		assert.NotEmpty(t, created.Salt)
		assert.True(t, helpers.IsCorrect("password123", created.Salt, created.Password))
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		mockRepo := new(MockProfileRepo)
		svc := newTestService(mockRepo, new(MockImageClient))
		ctx := context.Background()

		mockRepo.On("ExistsByEmail", ctx, "a@x.com").Return(true, nil).Once()

		view, err := svc.CreateProfile(ctx, CreateProfileInput{Email: "a@x.com", Password: "password123"})

		assert.Nil(t, view)
		assert.ErrorIs(t, err, ErrEmailTaken)
		mockRepo.AssertExpectations(t)
	})
}

func TestEditProfile(t *testing.T) {
	t.Run("FirstNameOnlyKeepsOtherFields", func(t *testing.T) {
		mockRepo := new(MockProfileRepo)
		svc := newTestService(mockRepo, new(MockImageClient))
		ctx := context.Background()
		p := storedProfile("password123", "salt")

		var saved *entity.UserProfile
		mockRepo.On("GetByUUID", ctx, p.UUID).Return(p, nil).Once()
		mockRepo.On("Save", ctx, mock.AnythingOfType("*entity.UserProfile")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*entity.UserProfile) }).
			Return(nil).Once()

		err := svc.EditProfile(ctx, p.UUID, EditProfileInput{FirstName: strPtr("Anna")})

		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "Anna", saved.FirstName)
		assert.Equal(t, "a@x.com", saved.Email)
		assert.Equal(t, "Smith", saved.LastName)
		assert.Equal(t, p.Password, saved.Password)
		assert.Equal(t, p.Salt, saved.Salt)
		mockRepo.AssertExpectations(t)
	})

	t.Run("PasswordChangeRotatesSaltAndHash", func(t *testing.T) {
		mockRepo := new(MockProfileRepo)
		svc := newTestService(mockRepo, new(MockImageClient))
		ctx := context.Background()
		p := storedProfile("old-password", "old-salt")

		var saved *entity.UserProfile
		mockRepo.On("GetByUUID", ctx, p.UUID).Return(p, nil).Once()
		mockRepo.On("Save", ctx, mock.AnythingOfType("*entity.UserProfile")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*entity.UserProfile) }).
			Return(nil).Once()

		err := svc.EditProfile(ctx, p.UUID, EditProfileInput{Password: strPtr("new-password")})

		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.NotEqual(t, "old-salt", saved.Salt)
		assert.True(t, helpers.IsCorrect("new-password", saved.Salt, saved.Password))
		assert.False(t, helpers.IsCorrect("old-password", saved.Salt, saved.Password))
		mockRepo.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockProfileRepo)
		svc := newTestService(mockRepo, new(MockImageClient))
		ctx := context.Background()
		id := uuid.New()

		mockRepo.On("GetByUUID", ctx, id).Return(nil, repo.ErrNotFound).Once()

		err := svc.EditProfile(ctx, id, EditProfileInput{FirstName: strPtr("Anna")})

		assert.ErrorIs(t, err, ErrProfileNotFound)
		mockRepo.AssertExpectations(t)
	})
}

func TestEditProfilePhoto(t *testing.T) {
	t.Run("UploadsAndAttachesURL", func(t *testing.T) {
		mockRepo := new(MockProfileRepo)
		mockImages := new(MockImageClient)
		svc := newTestService(mockRepo, mockImages)
		ctx := context.Background()
		p := storedProfile("password123", "salt")
		uploadedURL := "https://storage.example.com/bucket/profile/new.png"

		var saved *entity.UserProfile
		mockRepo.On("GetByUUID", ctx, p.UUID).Return(p, nil).Once()
		mockImages.On("Upload", ctx, mock.Anything, mock.MatchedBy(func(name string) bool {
			return strings.HasPrefix(name, "profile/"+p.UUID.String()+"/") && strings.HasSuffix(name, ".png")
		}), "image/png").Return(uploadedURL, nil).Once()
		mockRepo.On("Save", ctx, mock.AnythingOfType("*entity.UserProfile")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*entity.UserProfile) }).
			Return(nil).Once()

		url, err := svc.EditProfilePhoto(ctx, p.UUID, strings.NewReader("png-bytes"), "avatar.png", "image/png")

		require.NoError(t, err)
		assert.Equal(t, uploadedURL, url)
		require.NotNil(t, saved)
		require.NotNil(t, saved.PhotoURL)
		assert.Equal(t, uploadedURL, *saved.PhotoURL)
		mockRepo.AssertExpectations(t)
		mockImages.AssertExpectations(t)
	})

	t.Run("UnknownProfileSkipsUpload", func(t *testing.T) {
		mockRepo := new(MockProfileRepo)
		mockImages := new(MockImageClient)
		svc := newTestService(mockRepo, mockImages)
		ctx := context.Background()
		id := uuid.New()

		mockRepo.On("GetByUUID", ctx, id).Return(nil, repo.ErrNotFound).Once()

		_, err := svc.EditProfilePhoto(ctx, id, strings.NewReader("png-bytes"), "avatar.png", "image/png")

		assert.ErrorIs(t, err, ErrProfileNotFound)
		mockImages.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})
}

func TestDeleteProfilePhoto(t *testing.T) {
	mockRepo := new(MockProfileRepo)
	svc := newTestService(mockRepo, new(MockImageClient))
	ctx := context.Background()
	p := storedProfile("password123", "salt")
	url := "https://storage.example.com/bucket/profile/old.png"
	p.PhotoURL = &url

	var saved *entity.UserProfile
	mockRepo.On("GetByUUID", ctx, p.UUID).Return(p, nil).Once()
	mockRepo.On("Save", ctx, mock.AnythingOfType("*entity.UserProfile")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*entity.UserProfile) }).
		Return(nil).Once()

	err := svc.DeleteProfilePhoto(ctx, p.UUID)

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Nil(t, saved.PhotoURL)
	assert.Equal(t, p.Email, saved.Email)
	mockRepo.AssertExpectations(t)
}

func TestVerifyCredentials(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockProfileRepo)
		svc := newTestService(mockRepo, new(MockImageClient))
		ctx := context.Background()
		p := storedProfile("password123", "salt")

		mockRepo.On("GetByEmail", ctx, p.Email).Return(p, nil).Once()

		private, err := svc.VerifyCredentials(ctx, p.Email, "password123")

		require.NoError(t, err)
		assert.Equal(t, p.UUID, private.UUID)
		assert.Equal(t, p.Password, private.Password)
		mockRepo.AssertExpectations(t)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockProfileRepo)
		svc := newTestService(mockRepo, new(MockImageClient))
		ctx := context.Background()
		p := storedProfile("password123", "salt")

		mockRepo.On("GetByEmail", ctx, p.Email).Return(p, nil).Once()

		private, err := svc.VerifyCredentials(ctx, p.Email, "wrong")

		assert.Nil(t, private)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		mockRepo := new(MockProfileRepo)
		svc := newTestService(mockRepo, new(MockImageClient))
		ctx := context.Background()

		mockRepo.On("GetByEmail", ctx, "ghost@x.com").Return(nil, repo.ErrNotFound).Once()

		private, err := svc.VerifyCredentials(ctx, "ghost@x.com", "password123")

		assert.Nil(t, private)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockRepo.AssertExpectations(t)
	})
}

func TestListEmails(t *testing.T) {
	mockRepo := new(MockProfileRepo)
	svc := newTestService(mockRepo, new(MockImageClient))
	ctx := context.Background()
	want := []string{"a@x.com", "b@x.com"}

	mockRepo.On("ListEmails", ctx).Return(want, nil).Once()

	got, err := svc.ListEmails(ctx)

	require.NoError(t, err)
	assert.Equal(t, want, got)
	mockRepo.AssertExpectations(t)
}
