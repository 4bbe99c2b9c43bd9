package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// ErrEntryNotFound возвращается, когда запись о покупке не найдена.
var ErrEntryNotFound = errors.New("subscription entry not found")

// UpsertEntry атомарно создает запись о покупке или обновляет существующую
// запись той же пары (пользователь, курс). Уникальный индекс по паре
// гарантирует, что дубликат записи для курса не появится даже при
// одновременных запросах.
func (s *Storage) UpsertEntry(ctx context.Context, entry models.Entry) (int, error) {
	const op = "storage.UpsertEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	details, err := marshalDetails(entry.PaymentDetails)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO subscriptions (user_uid, course_uid, course_title, status,
			      order_id, subscription_id, purchase_at, expires_at, payment_details)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  ON CONFLICT (user_uid, course_uid) DO UPDATE
			  SET course_title = EXCLUDED.course_title,
			      status = EXCLUDED.status,
			      order_id = EXCLUDED.order_id,
			      subscription_id = EXCLUDED.subscription_id,
			      purchase_at = EXCLUDED.purchase_at,
			      expires_at = EXCLUDED.expires_at,
			      payment_details = EXCLUDED.payment_details
			  RETURNING id`
	var id int
	if err := s.DB.QueryRowContext(ctx, query,
		entry.UserUID, entry.CourseUID, entry.CourseTitle, entry.Status,
		entry.OrderID, entry.SubscriptionID, entry.PurchaseAt, entry.ExpiresAt,
		details).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// FindEntry возвращает запись о покупке курса пользователем.
func (s *Storage) FindEntry(ctx context.Context, userUID, courseUID string) (*models.Entry, error) {
	const op = "storage.FindEntry"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, course_uid, course_title, status,
			      order_id, subscription_id, purchase_at, expires_at, payment_details
			  FROM subscriptions
			  WHERE user_uid = $1 AND course_uid = $2`
	return s.scanEntryRow(op, s.DB.QueryRowContext(ctx, query, userUID, courseUID))
}

// FindActiveSubscription возвращает активную запись пользователя
// с непустой ссылкой на регулярную подписку у провайдера.
func (s *Storage) FindActiveSubscription(ctx context.Context, userUID string) (*models.Entry, error) {
	const op = "storage.FindActiveSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, course_uid, course_title, status,
			      order_id, subscription_id, purchase_at, expires_at, payment_details
			  FROM subscriptions
			  WHERE user_uid = $1 AND status = $2 AND subscription_id <> ''
			  LIMIT 1`
	return s.scanEntryRow(op, s.DB.QueryRowContext(ctx, query, userUID, models.StatusActive))
}

// ActivateEntry переводит запись в статус active с отметками времени
// покупки и окончания доступа и сохраняет снимок платежа для аудита.
func (s *Storage) ActivateEntry(ctx context.Context, entryID int, purchaseAt, expiresAt time.Time, paymentDetails map[string]any) error {
	const op = "storage.ActivateEntry"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	details, err := marshalDetails(paymentDetails)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE subscriptions
			  SET status = $1, purchase_at = $2, expires_at = $3, payment_details = $4
			  WHERE id = $5`
	res, err := s.DB.ExecContext(ctx, query,
		models.StatusActive, purchaseAt, expiresAt, details, entryID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireEntryAffected(op, res)
}

// UpdateEntryStatus обновляет только статус записи. Используется для
// активации регулярной подписки (без отметки срока — доступ продолжается,
// пока провайдер списывает оплату) и для зеркалирования статуса отмены.
func (s *Storage) UpdateEntryStatus(ctx context.Context, entryID int, status string) error {
	const op = "storage.UpdateEntryStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions SET status = $1 WHERE id = $2`
	res, err := s.DB.ExecContext(ctx, query, status, entryID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireEntryAffected(op, res)
}

// ListEntries возвращает все записи о покупках пользователя.
func (s *Storage) ListEntries(ctx context.Context, userUID string) ([]*models.Entry, error) {
	const op = "storage.ListEntries"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, course_uid, course_title, status,
			      order_id, subscription_id, purchase_at, expires_at, payment_details
			  FROM subscriptions
			  WHERE user_uid = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Entry
	for rows.Next() {
		entry, err := scanEntry(op, rows)
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Storage) scanEntryRow(op string, row *sql.Row) (*models.Entry, error) {
	entry, err := scanEntry(op, row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrEntryNotFound)
		}
		return nil, err
	}
	return entry, nil
}

func scanEntry(op string, row rowScanner) (*models.Entry, error) {
	entry := &models.Entry{}
	var purchaseAt, expiresAt sql.NullTime
	var details []byte
	if err := row.Scan(&entry.ID, &entry.UserUID, &entry.CourseUID, &entry.CourseTitle,
		&entry.Status, &entry.OrderID, &entry.SubscriptionID,
		&purchaseAt, &expiresAt, &details); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if purchaseAt.Valid {
		entry.PurchaseAt = &purchaseAt.Time
	}
	if expiresAt.Valid {
		entry.ExpiresAt = &expiresAt.Time
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &entry.PaymentDetails); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return entry, nil
}

func marshalDetails(details map[string]any) ([]byte, error) {
	if details == nil {
		return nil, nil
	}
	return json.Marshal(details)
}

func (s *Storage) requireEntryAffected(op string, res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrEntryNotFound)
	}
	return nil
}
