package auth

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/course-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/course-platform/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userUID, passwordHash string) error {
	args := m.Called(ctx, userUID, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, userUID, tokenHash string, expiry sql.NullTime) error {
	args := m.Called(ctx, userUID, tokenHash, expiry)
	return args.Error(0)
}

func (m *MockUserRepository) ClearResetToken(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

type MockAvatarStore struct {
	mock.Mock
}

func (m *MockAvatarStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingkey string, message any) error {
	args := m.Called(exchange, routingkey, message)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(users *MockUserRepository, avatars *MockAvatarStore, publisher *MockPublisher) *AuthService {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	return NewAuthService(users, avatars, publisher, maker, newNoopLogger(),
		"https://app.example.com/reset-password")
}

func bcryptHash(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegister(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetUserByEmail", mock.Anything, "new@example.com").
		Return(nil, repository.ErrUserNotFound)

	var created models.User
	users.On("CreateUser", mock.Anything, mock.AnythingOfType("models.User")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(models.User)
		}).Return("uid-1", nil)

	svc := newService(users, new(MockAvatarStore), new(MockPublisher))
	token, user, err := svc.Register(context.Background(), "New User", "new@example.com", "password123")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "uid-1", user.UID)
	assert.Equal(t, models.RoleUser, created.Role)
	require.NotNil(t, created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*created.PasswordHash), []byte("password123")))
}

func TestRegister_EmailTaken(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetUserByEmail", mock.Anything, "taken@example.com").
		Return(&models.User{UID: "uid-1", Email: "taken@example.com"}, nil)

	svc := newService(users, new(MockAvatarStore), new(MockPublisher))
	_, _, err := svc.Register(context.Background(), "Someone", "taken@example.com", "password123")

	assert.ErrorIs(t, err, ErrEmailTaken)
	users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	hash := bcryptHash(t, "password123")
	googleID := "google-1"

	tests := []struct {
		name     string
		email    string
		password string
		user     *models.User
		userErr  error
		wantErr  error
	}{
		{
			name:     "успех - верные учетные данные",
			email:    "user@example.com",
			password: "password123",
			user: &models.User{UID: "uid-1", Email: "user@example.com",
				FullName: "User", Role: models.RoleUser, PasswordHash: &hash},
		},
		{
			name:     "ошибка - пользователь не найден",
			email:    "ghost@example.com",
			password: "password123",
			userErr:  repository.ErrUserNotFound,
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "ошибка - неверный пароль",
			email:    "user@example.com",
			password: "wrong-password",
			user: &models.User{UID: "uid-1", Email: "user@example.com",
				Role: models.RoleUser, PasswordHash: &hash},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "ошибка - аккаунт создан через OAuth, пароля нет",
			email:    "oauth@example.com",
			password: "password123",
			user: &models.User{UID: "uid-2", Email: "oauth@example.com",
				Role: models.RoleUser, GoogleID: &googleID},
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			if tt.userErr != nil {
				users.On("GetUserByEmail", mock.Anything, tt.email).Return(nil, tt.userErr)
			} else {
				users.On("GetUserByEmail", mock.Anything, tt.email).Return(tt.user, nil)
			}

			svc := newService(users, new(MockAvatarStore), new(MockPublisher))
			token, _, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, token)
			}
		})
	}
}

func TestFindOrCreateGoogleUser(t *testing.T) {
	t.Run("существующий аккаунт найден по внешнему идентификатору", func(t *testing.T) {
		users := new(MockUserRepository)
		googleID := "google-1"
		users.On("GetUserByGoogleID", mock.Anything, "google-1").
			Return(&models.User{UID: "uid-1", Email: "g@example.com",
				GoogleID: &googleID, Role: models.RoleUser}, nil)

		svc := newService(users, new(MockAvatarStore), new(MockPublisher))
		token, user, err := svc.FindOrCreateGoogleUser(context.Background(), "google-1", "g@example.com", "G User")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "uid-1", user.UID)
		users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("новый аккаунт создается без пароля", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByGoogleID", mock.Anything, "google-2").
			Return(nil, repository.ErrUserNotFound)

		var created models.User
		users.On("CreateUser", mock.Anything, mock.AnythingOfType("models.User")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(models.User)
			}).Return("uid-2", nil)

		svc := newService(users, new(MockAvatarStore), new(MockPublisher))
		_, user, err := svc.FindOrCreateGoogleUser(context.Background(), "google-2", "g2@example.com", "G2 User")

		require.NoError(t, err)
		assert.Equal(t, "uid-2", user.UID)
		assert.Nil(t, created.PasswordHash)
		require.NotNil(t, created.GoogleID)
		assert.Equal(t, "google-2", *created.GoogleID)
	})
}

func TestUpdateProfile_ReplacesAvatar(t *testing.T) {
	users := new(MockUserRepository)
	avatars := new(MockAvatarStore)

	users.On("UpdateProfile", mock.Anything, mock.AnythingOfType("models.User")).Return(nil)
	avatars.On("Delete", mock.Anything, "avatars/uid-1/old").Return(nil)

	svc := newService(users, avatars, new(MockPublisher))
	current := &models.User{UID: "uid-1", FullName: "Old Name", AvatarKey: "avatars/uid-1/old"}
	updated, err := svc.UpdateProfile(context.Background(), current, ProfileUpdate{
		FullName:  "New Name",
		AvatarKey: "avatars/uid-1/new",
		AvatarURL: "https://cdn.example.com/avatars/uid-1/new",
	})

	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.FullName)
	assert.Equal(t, "avatars/uid-1/new", updated.AvatarKey)
	avatars.AssertExpectations(t)
}

func TestUpdateProfile_AvatarDeleteFailureIsNotFatal(t *testing.T) {
	users := new(MockUserRepository)
	avatars := new(MockAvatarStore)

	users.On("UpdateProfile", mock.Anything, mock.AnythingOfType("models.User")).Return(nil)
	avatars.On("Delete", mock.Anything, "avatars/uid-1/old").
		Return(errors.New("storage unavailable"))

	svc := newService(users, avatars, new(MockPublisher))
	current := &models.User{UID: "uid-1", AvatarKey: "avatars/uid-1/old"}
	_, err := svc.UpdateProfile(context.Background(), current, ProfileUpdate{
		FullName:  "Name",
		AvatarKey: "avatars/uid-1/new",
	})

	// ошибка удаления старого аватара не прерывает обновление профиля
	assert.NoError(t, err)
}

func TestUpdatePassword(t *testing.T) {
	hash := bcryptHash(t, "old-password")

	t.Run("успех", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("UpdatePassword", mock.Anything, "uid-1", mock.AnythingOfType("string")).Return(nil)

		svc := newService(users, new(MockAvatarStore), new(MockPublisher))
		user := &models.User{UID: "uid-1", PasswordHash: &hash}
		err := svc.UpdatePassword(context.Background(), user, "old-password", "new-password")

		assert.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("ошибка - старый пароль не подошел", func(t *testing.T) {
		users := new(MockUserRepository)

		svc := newService(users, new(MockAvatarStore), new(MockPublisher))
		user := &models.User{UID: "uid-1", PasswordHash: &hash}
		err := svc.UpdatePassword(context.Background(), user, "wrong", "new-password")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestForgotPassword(t *testing.T) {
	users := new(MockUserRepository)
	publisher := new(MockPublisher)

	users.On("GetUserByEmail", mock.Anything, "user@example.com").
		Return(&models.User{UID: "uid-1", Email: "user@example.com", FullName: "User"}, nil)
	users.On("SetResetToken", mock.Anything, "uid-1", mock.AnythingOfType("string"),
		mock.AnythingOfType("sql.NullTime")).Return(nil)

	var task rabbitmq.ResetEmailTask
	publisher.On("Publish", rabbitmq.Exchange, "password-reset",
		mock.AnythingOfType("rabbitmq.ResetEmailTask")).
		Run(func(args mock.Arguments) {
			task = args.Get(2).(rabbitmq.ResetEmailTask)
		}).Return(nil)

	svc := newService(users, new(MockAvatarStore), publisher)
	err := svc.ForgotPassword(context.Background(), "user@example.com")

	require.NoError(t, err)
	assert.Equal(t, "user@example.com", task.Email)
	assert.Contains(t, task.ResetLink, "https://app.example.com/reset-password?id=uid-1&token=")
	users.AssertNotCalled(t, "ClearResetToken", mock.Anything, mock.Anything)
}

func TestForgotPassword_PublishFailureUnwindsToken(t *testing.T) {
	users := new(MockUserRepository)
	publisher := new(MockPublisher)

	users.On("GetUserByEmail", mock.Anything, "user@example.com").
		Return(&models.User{UID: "uid-1", Email: "user@example.com"}, nil)
	users.On("SetResetToken", mock.Anything, "uid-1", mock.AnythingOfType("string"),
		mock.AnythingOfType("sql.NullTime")).Return(nil)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("broker unavailable"))
	users.On("ClearResetToken", mock.Anything, "uid-1").Return(nil)

	svc := newService(users, new(MockAvatarStore), publisher)
	err := svc.ForgotPassword(context.Background(), "user@example.com")

	assert.Error(t, err)
	// токен снимается, если письмо не удалось поставить в очередь
	users.AssertCalled(t, "ClearResetToken", mock.Anything, "uid-1")
}

func TestResetPassword(t *testing.T) {
	plainToken := "746f6b656e"
	tokenHash := bcryptHash(t, plainToken)
	future := time.Now().Add(10 * time.Minute)
	past := time.Now().Add(-time.Minute)

	tests := []struct {
		name       string
		user       *models.User
		token      string
		wantErr    error
		wantUpdate bool
	}{
		{
			name: "успех - пароль заменен, токен очищен",
			user: &models.User{UID: "uid-1", ResetTokenHash: &tokenHash,
				ResetTokenExpiry: &future},
			token:      plainToken,
			wantUpdate: true,
		},
		{
			name: "ошибка - токен просрочен",
			user: &models.User{UID: "uid-1", ResetTokenHash: &tokenHash,
				ResetTokenExpiry: &past},
			token:   plainToken,
			wantErr: ErrInvalidResetToken,
		},
		{
			name: "ошибка - токен не совпал",
			user: &models.User{UID: "uid-1", ResetTokenHash: &tokenHash,
				ResetTokenExpiry: &future},
			token:   "wrong-token",
			wantErr: ErrInvalidResetToken,
		},
		{
			name:    "ошибка - сброс не запрашивался",
			user:    &models.User{UID: "uid-1"},
			token:   plainToken,
			wantErr: ErrInvalidResetToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			users.On("GetUser", mock.Anything, "uid-1").Return(tt.user, nil)
			users.On("ClearResetToken", mock.Anything, "uid-1").Return(nil)
			if tt.wantUpdate {
				users.On("UpdatePassword", mock.Anything, "uid-1",
					mock.AnythingOfType("string")).Return(nil)
			}

			svc := newService(users, new(MockAvatarStore), new(MockPublisher))
			err := svc.ResetPassword(context.Background(), "uid-1", tt.token, "new-password")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			// токен очищается и при успехе, и при неудачной проверке
			users.AssertCalled(t, "ClearResetToken", mock.Anything, "uid-1")
		})
	}
}

func TestDeleteAccount(t *testing.T) {
	users := new(MockUserRepository)
	avatars := new(MockAvatarStore)

	users.On("DeleteUser", mock.Anything, "uid-1").Return(nil)
	avatars.On("Delete", mock.Anything, "avatars/uid-1/key").Return(nil)

	svc := newService(users, avatars, new(MockPublisher))
	err := svc.DeleteAccount(context.Background(), &models.User{UID: "uid-1", AvatarKey: "avatars/uid-1/key"})

	assert.NoError(t, err)
	avatars.AssertExpectations(t)
}
