// Package auth реализует работу с аккаунтами: регистрацию, вход,
// профиль, смену и сброс пароля, удаление аккаунта.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/course-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/course-platform/internal/lib/password"
	"github.com/magabrotheeeer/course-platform/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/course-platform/internal/lib/resettoken"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// Ошибки уровня бизнес-логики.
var (
	// ErrInvalidCredentials — почта не найдена или пароль не подошел.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken — почта уже занята другим аккаунтом.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidResetToken — токен сброса не совпал или просрочен.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository определяет методы хранилища для аккаунтов.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
	UpdatePassword(ctx context.Context, userUID, passwordHash string) error
	SetResetToken(ctx context.Context, userUID, tokenHash string, expiry sql.NullTime) error
	ClearResetToken(ctx context.Context, userUID string) error
	DeleteUser(ctx context.Context, userUID string) error
}

// AvatarStore удаляет объекты аватаров во внешнем хранилище.
type AvatarStore interface {
	Delete(ctx context.Context, key string) error
}

// TaskPublisher публикует задачи почтовым воркерам.
type TaskPublisher interface {
	Publish(exchange, routingkey string, message any) error
}

// AuthService реализует бизнес-логику работы с аккаунтами.
type AuthService struct {
	users     UserRepository
	avatars   AvatarStore
	publisher TaskPublisher
	maker     jwt.Maker
	log       *slog.Logger

	resetLinkBase string
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, avatars AvatarStore, publisher TaskPublisher,
	maker jwt.Maker, log *slog.Logger, resetLinkBase string) *AuthService {
	return &AuthService{
		users:         users,
		avatars:       avatars,
		publisher:     publisher,
		maker:         maker,
		log:           log,
		resetLinkBase: resetLinkBase,
	}
}

// Register создает аккаунт с ролью USER и возвращает токен сессии.
func (s *AuthService) Register(ctx context.Context, fullName, email, plainPassword string) (string, *models.User, error) {
	const op = "auth.Register"

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(plainPassword)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: &hash,
		Role:         models.RoleUser,
	}
	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	user.UID = uid

	token, err := s.maker.GenerateToken(uid, user.FullName, user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", "user_uid", uid)
	return token, &user, nil
}

// Login проверяет пару почта-пароль и возвращает токен сессии.
func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (string, *models.User, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	// у аккаунтов из OAuth пароля нет
	if user.PasswordHash == nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := password.CompareHash(*user.PasswordHash, plainPassword); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.maker.GenerateToken(user.UID, user.FullName, user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user logged in", "user_uid", user.UID)
	return token, user, nil
}

// FindOrCreateGoogleUser находит аккаунт по внешнему идентификатору
// или создает новый без пароля. Возвращает токен сессии.
func (s *AuthService) FindOrCreateGoogleUser(ctx context.Context, googleID, email, fullName string) (string, *models.User, error) {
	const op = "auth.FindOrCreateGoogleUser"

	user, err := s.users.GetUserByGoogleID(ctx, googleID)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, fmt.Errorf("%s: %w", op, err)
		}
		newUser := models.User{
			FullName: fullName,
			Email:    email,
			GoogleID: &googleID,
			Role:     models.RoleUser,
		}
		uid, err := s.users.CreateUser(ctx, newUser)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", op, err)
		}
		newUser.UID = uid
		user = &newUser
		s.log.Info("google user created", "user_uid", uid)
	}

	token, err := s.maker.GenerateToken(user.UID, user.FullName, user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// ProfileUpdate — изменяемые поля профиля. Пустой AvatarKey означает,
// что аватар не менялся.
type ProfileUpdate struct {
	FullName  string
	Contact   string
	Linkedin  string
	Address   string
	AvatarKey string
	AvatarURL string
}

// UpdateProfile обновляет профиль. При замене аватара старый объект
// удаляется из хранилища по возможности: ошибка удаления логируется,
// но не прерывает обновление.
func (s *AuthService) UpdateProfile(ctx context.Context, user *models.User, upd ProfileUpdate) (*models.User, error) {
	const op = "auth.UpdateProfile"

	updated := *user
	updated.FullName = upd.FullName
	updated.Contact = upd.Contact
	updated.Linkedin = upd.Linkedin
	updated.Address = upd.Address

	oldAvatarKey := ""
	if upd.AvatarKey != "" && upd.AvatarKey != user.AvatarKey {
		oldAvatarKey = user.AvatarKey
		updated.AvatarKey = upd.AvatarKey
		updated.AvatarURL = upd.AvatarURL
	}

	if err := s.users.UpdateProfile(ctx, updated); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if oldAvatarKey != "" {
		if err := s.avatars.Delete(ctx, oldAvatarKey); err != nil {
			s.log.Warn("failed to delete old avatar", "key", oldAvatarKey, sl.Err(err))
		}
	}

	s.log.Info("profile updated", "user_uid", user.UID)
	return &updated, nil
}

// UpdatePassword меняет пароль локального аккаунта после проверки
// старого пароля.
func (s *AuthService) UpdatePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) error {
	const op = "auth.UpdatePassword"

	if user.PasswordHash == nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := password.CompareHash(*user.PasswordHash, oldPassword); err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	hash, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePassword(ctx, user.UID, hash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("password updated", "user_uid", user.UID)
	return nil
}

// ForgotPassword генерирует токен сброса, сохраняет его хэш и ставит
// задачу на отправку письма. Если опубликовать задачу не удалось,
// сохраненный токен снимается, чтобы в базе не оставался токен,
// о котором пользователь никогда не узнает.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	const op = "auth.ForgotPassword"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	plain, hash, err := resettoken.New()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	expiry := sql.NullTime{Time: time.Now().Add(resettoken.TTL), Valid: true}
	if err := s.users.SetResetToken(ctx, user.UID, hash, expiry); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	task := rabbitmq.ResetEmailTask{
		Email:     user.Email,
		FullName:  user.FullName,
		ResetLink: fmt.Sprintf("%s?id=%s&token=%s", s.resetLinkBase, user.UID, plain),
	}
	if err := s.publisher.Publish(rabbitmq.Exchange, "password-reset", task); err != nil {
		s.log.Error("failed to publish reset email task", sl.Err(err))
		if clearErr := s.users.ClearResetToken(ctx, user.UID); clearErr != nil {
			s.log.Error("failed to clear reset token", sl.Err(clearErr))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("reset email task published", "user_uid", user.UID)
	return nil
}

// ResetPassword проверяет токен сброса и устанавливает новый пароль.
// Поля токена очищаются в любом исходе проверки.
func (s *AuthService) ResetPassword(ctx context.Context, userUID, plainToken, newPassword string) error {
	const op = "auth.ResetPassword"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, ErrInvalidResetToken)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if user.ResetTokenHash == nil || user.ResetTokenExpiry == nil ||
		!resettoken.Validate(*user.ResetTokenHash, plainToken, *user.ResetTokenExpiry) {
		if clearErr := s.users.ClearResetToken(ctx, userUID); clearErr != nil {
			s.log.Error("failed to clear reset token", sl.Err(clearErr))
		}
		return fmt.Errorf("%s: %w", op, ErrInvalidResetToken)
	}

	hash, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePassword(ctx, userUID, hash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.ClearResetToken(ctx, userUID); err != nil {
		s.log.Error("failed to clear reset token", sl.Err(err))
	}

	s.log.Info("password reset", "user_uid", userUID)
	return nil
}

// DeleteAccount удаляет аккаунт. Записи о покупках удаляются каскадно
// в базе, аватар удаляется по возможности.
func (s *AuthService) DeleteAccount(ctx context.Context, user *models.User) error {
	const op = "auth.DeleteAccount"

	if err := s.users.DeleteUser(ctx, user.UID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if user.AvatarKey != "" {
		if err := s.avatars.Delete(ctx, user.AvatarKey); err != nil {
			s.log.Warn("failed to delete avatar", "key", user.AvatarKey, sl.Err(err))
		}
	}

	s.log.Info("account deleted", "user_uid", user.UID)
	return nil
}
