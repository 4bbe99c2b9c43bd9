package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// ErrUserNotFound возвращается, когда пользователь не найден в базе.
var ErrUserNotFound = errors.New("user not found")

// CreateUser сохраняет нового пользователя в базу данных и возвращает его UID.
// Email приводится к нижнему регистру перед сохранением.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, full_name, google_id, password_hash, role,
			      contact, linkedin, address, avatar_key, avatar_url)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		strings.ToLower(user.Email), user.FullName, user.GoogleID, user.PasswordHash,
		user.Role, user.Contact, user.Linkedin, user.Address,
		user.AvatarKey, user.AvatarURL).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, full_name, google_id, password_hash, role,
			      contact, linkedin, address, avatar_key, avatar_url,
			      reset_token_hash, reset_token_expiry
			  FROM users
			  WHERE uid = $1`
	return s.scanUserRow(op, s.DB.QueryRowContext(ctx, query, userUID))
}

// GetUserByEmail возвращает пользователя по почте. Сравнение
// регистронезависимое: почта хранится в нижнем регистре.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, full_name, google_id, password_hash, role,
			      contact, linkedin, address, avatar_key, avatar_url,
			      reset_token_hash, reset_token_expiry
			  FROM users
			  WHERE email = $1`
	return s.scanUserRow(op, s.DB.QueryRowContext(ctx, query, strings.ToLower(email)))
}

// GetUserByGoogleID возвращает пользователя по идентификатору внешнего аккаунта.
func (s *Storage) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	const op = "storage.GetUserByGoogleID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, full_name, google_id, password_hash, role,
			      contact, linkedin, address, avatar_key, avatar_url,
			      reset_token_hash, reset_token_expiry
			  FROM users
			  WHERE google_id = $1`
	return s.scanUserRow(op, s.DB.QueryRowContext(ctx, query, googleID))
}

// UpdateProfile обновляет редактируемые поля профиля пользователя.
func (s *Storage) UpdateProfile(ctx context.Context, user models.User) error {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET full_name = $1, contact = $2, linkedin = $3, address = $4,
			      avatar_key = $5, avatar_url = $6, updated_at = now()
			  WHERE uid = $7`
	res, err := s.DB.ExecContext(ctx, query,
		user.FullName, user.Contact, user.Linkedin, user.Address,
		user.AvatarKey, user.AvatarURL, user.UID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireAffected(op, res)
}

// UpdatePassword заменяет хэш пароля пользователя.
func (s *Storage) UpdatePassword(ctx context.Context, userUID, passwordHash string) error {
	const op = "storage.UpdatePassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET password_hash = $1, updated_at = now()
			  WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, passwordHash, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireAffected(op, res)
}

// SetResetToken сохраняет хэш токена сброса пароля и срок его действия.
func (s *Storage) SetResetToken(ctx context.Context, userUID, tokenHash string, expiry sql.NullTime) error {
	const op = "storage.SetResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET reset_token_hash = $1, reset_token_expiry = $2, updated_at = now()
			  WHERE uid = $3`
	res, err := s.DB.ExecContext(ctx, query, tokenHash, expiry, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireAffected(op, res)
}

// ClearResetToken очищает поля токена сброса. Вызывается и после
// успешного сброса пароля, и при ошибке отправки письма, чтобы не
// оставлять в базе действующий токен, который пользователь не получил.
func (s *Storage) ClearResetToken(ctx context.Context, userUID string) error {
	const op = "storage.ClearResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET reset_token_hash = NULL, reset_token_expiry = NULL, updated_at = now()
			  WHERE uid = $1`
	_, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteUser удаляет пользователя. Записи о покупках и оценки удаляются
// каскадно на уровне базы.
func (s *Storage) DeleteUser(ctx context.Context, userUID string) error {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireAffected(op, res)
}

func (s *Storage) scanUserRow(op string, row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var googleID, passwordHash, resetTokenHash sql.NullString
	var resetTokenExpiry sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.FullName, &googleID, &passwordHash,
		&u.Role, &u.Contact, &u.Linkedin, &u.Address, &u.AvatarKey, &u.AvatarURL,
		&resetTokenHash, &resetTokenExpiry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if googleID.Valid {
		u.GoogleID = &googleID.String
	}
	if passwordHash.Valid {
		u.PasswordHash = &passwordHash.String
	}
	if resetTokenHash.Valid {
		u.ResetTokenHash = &resetTokenHash.String
	}
	if resetTokenExpiry.Valid {
		u.ResetTokenExpiry = &resetTokenExpiry.Time
	}
	return u, nil
}

func (s *Storage) requireAffected(op string, res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}
