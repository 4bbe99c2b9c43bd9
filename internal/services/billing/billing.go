// Package billing реализует жизненный цикл покупки курса: создание
// заказа или регулярной подписки у платежного провайдера, проверку
// подписи оплаты, отмену подписки и историю покупок.
//
// Состояния записи на пару (пользователь, курс): created → active →
// cancelled. Запись создается атомарным upsert'ом, поэтому повторный
// заказ обновляет существующую строку, а не плодит дубликаты.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/magabrotheeeer/course-platform/internal/lib/signature"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/paymentprovider"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// Ошибки уровня бизнес-логики. Обработчики переводят их в HTTP-статусы.
var (
	// ErrVerificationFailed — подпись оплаты не сошлась. Терминальная
	// ошибка: запись остается в текущем статусе.
	ErrVerificationFailed = errors.New("payment verification failed")
	// ErrNoActiveSubscription — у пользователя нет активной регулярной
	// подписки, отменять нечего.
	ErrNoActiveSubscription = errors.New("no active subscription found")
	// ErrEntryNotFound — запись о покупке не найдена.
	ErrEntryNotFound = errors.New("purchase entry not found")
	// ErrCourseNotFound — курс не найден в каталоге.
	ErrCourseNotFound = errors.New("course not found")
)

const (
	currency           = "INR"
	orderReceiptPrefix = "order_receipt_"

	// accessYears — срок доступа к курсу после разовой оплаты.
	accessYears = 2
	// subscriptionStartDelay — отступ первого списания от момента
	// оформления подписки.
	subscriptionStartDelay = 300 * time.Second
	// subscriptionTotalCount — количество платежных циклов подписки.
	subscriptionTotalCount = 24
)

// EntryRepository определяет методы хранилища для записей о покупках.
type EntryRepository interface {
	UpsertEntry(ctx context.Context, entry models.Entry) (int, error)
	FindEntry(ctx context.Context, userUID, courseUID string) (*models.Entry, error)
	FindActiveSubscription(ctx context.Context, userUID string) (*models.Entry, error)
	ActivateEntry(ctx context.Context, entryID int, purchaseAt, expiresAt time.Time, paymentDetails map[string]any) error
	UpdateEntryStatus(ctx context.Context, entryID int, status string) error
	ListEntries(ctx context.Context, userUID string) ([]*models.Entry, error)
}

// CourseProvider отдает курс каталога по идентификатору.
type CourseProvider interface {
	GetCourse(ctx context.Context, courseUID string) (*models.Course, error)
}

// Gateway описывает операции платежного провайдера, используемые сервисом.
type Gateway interface {
	CreateOrder(req paymentprovider.CreateOrderRequest) (*paymentprovider.Order, error)
	CreateSubscription(req paymentprovider.CreateSubscriptionRequest) (*paymentprovider.Subscription, error)
	CancelSubscription(subscriptionID string) (*paymentprovider.Subscription, error)
	FetchPayment(paymentID string) (*paymentprovider.Payment, error)
	ListPayments(from, to int64, count, skip int) (*paymentprovider.PaymentList, error)
}

// BillingService реализует операции жизненного цикла покупки.
type BillingService struct {
	entries EntryRepository
	courses CourseProvider
	gateway Gateway
	log     *slog.Logger

	keySecret string
	planID    string
}

// NewBillingService создает новый экземпляр BillingService.
func NewBillingService(entries EntryRepository, courses CourseProvider, gateway Gateway,
	log *slog.Logger, keySecret, planID string) *BillingService {
	return &BillingService{
		entries:   entries,
		courses:   courses,
		gateway:   gateway,
		log:       log,
		keySecret: keySecret,
		planID:    planID,
	}
}

// OrderResult — итог создания заказа. Если доступ уже открыт или курс
// бесплатный, Order пуст и провайдер не вызывался.
type OrderResult struct {
	Order         *paymentprovider.Order
	AlreadyActive bool
	FreeAccess    bool
}

// SubscribeResult — итог оформления регулярной подписки.
type SubscribeResult struct {
	Subscription  *paymentprovider.Subscription
	AlreadyActive bool
}

// FinalPrice вычисляет цену со скидкой с усечением дробной части.
func FinalPrice(price, discount int) int {
	return int(math.Trunc(float64(price) - float64(discount)*float64(price)/100))
}

// CreateOrder создает разовый заказ на курс. Для бесплатного курса
// доступ открывается сразу без обращения к провайдеру. Повторный вызов
// при уже открытом доступе ничего не меняет.
func (s *BillingService) CreateOrder(ctx context.Context, user *models.User, courseUID string) (*OrderResult, error) {
	const op = "billing.CreateOrder"

	course, err := s.findCourse(ctx, op, courseUID)
	if err != nil {
		return nil, err
	}

	existing, err := s.findEntry(ctx, op, user.UID, courseUID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == models.StatusActive {
		s.log.Info("course already purchased", "user_uid", user.UID, "course_uid", courseUID)
		return &OrderResult{AlreadyActive: true}, nil
	}

	finalPrice := FinalPrice(course.Price, course.Discount)
	if finalPrice == 0 {
		now := time.Now()
		expires := now.AddDate(accessYears, 0, 0)
		_, err := s.entries.UpsertEntry(ctx, models.Entry{
			UserUID:     user.UID,
			CourseUID:   courseUID,
			CourseTitle: course.Topic,
			Status:      models.StatusActive,
			PurchaseAt:  &now,
			ExpiresAt:   &expires,
			PaymentDetails: map[string]any{
				"amount": 0,
				"name":   user.FullName,
				"email":  user.Email,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("free course activated", "user_uid", user.UID, "course_uid", courseUID)
		return &OrderResult{FreeAccess: true}, nil
	}

	order, err := s.gateway.CreateOrder(paymentprovider.CreateOrderRequest{
		Amount:   finalPrice * 100,
		Currency: currency,
		Receipt:  orderReceiptPrefix + courseUID,
		Notes: map[string]string{
			"course": course.Topic,
			"name":   user.FullName,
			"email":  user.Email,
		},
	})
	if err != nil {
		s.log.Error("failed to create order", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.entries.UpsertEntry(ctx, models.Entry{
		UserUID:     user.UID,
		CourseUID:   courseUID,
		CourseTitle: course.Topic,
		Status:      order.Status,
		OrderID:     order.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("order created", "user_uid", user.UID, "course_uid", courseUID,
		"order_id", order.ID, "amount", order.Amount)
	return &OrderResult{Order: order}, nil
}

// Subscribe оформляет регулярную подписку на курс.
func (s *BillingService) Subscribe(ctx context.Context, user *models.User, courseUID string) (*SubscribeResult, error) {
	const op = "billing.Subscribe"

	course, err := s.findCourse(ctx, op, courseUID)
	if err != nil {
		return nil, err
	}

	existing, err := s.findEntry(ctx, op, user.UID, courseUID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == models.StatusActive {
		s.log.Info("course already purchased", "user_uid", user.UID, "course_uid", courseUID)
		return &SubscribeResult{AlreadyActive: true}, nil
	}

	sub, err := s.gateway.CreateSubscription(paymentprovider.CreateSubscriptionRequest{
		PlanID:         s.planID,
		StartAt:        time.Now().Add(subscriptionStartDelay).Unix(),
		TotalCount:     subscriptionTotalCount,
		CustomerNotify: 1,
	})
	if err != nil {
		s.log.Error("failed to create subscription", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.entries.UpsertEntry(ctx, models.Entry{
		UserUID:        user.UID,
		CourseUID:      courseUID,
		CourseTitle:    course.Topic,
		Status:         sub.Status,
		SubscriptionID: sub.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription created", "user_uid", user.UID, "course_uid", courseUID,
		"subscription_id", sub.ID)
	return &SubscribeResult{Subscription: sub}, nil
}

// VerifyOrder проверяет подпись оплаты разового заказа. Подпись
// считается от сохраненного идентификатора заказа и идентификатора
// платежа. При совпадении доступ открывается, в запись сохраняется
// снимок платежа от провайдера.
func (s *BillingService) VerifyOrder(ctx context.Context, user *models.User, courseUID, paymentID, gotSignature string) error {
	const op = "billing.VerifyOrder"

	entry, err := s.entries.FindEntry(ctx, user.UID, courseUID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return fmt.Errorf("%s: %w", op, ErrEntryNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if entry.OrderID == "" {
		return fmt.Errorf("%s: %w", op, ErrEntryNotFound)
	}

	if !signature.VerifyOrder(s.keySecret, entry.OrderID, paymentID, gotSignature) {
		s.log.Warn("order signature mismatch", "user_uid", user.UID, "course_uid", courseUID)
		return fmt.Errorf("%s: %w", op, ErrVerificationFailed)
	}

	payment, err := s.gateway.FetchPayment(paymentID)
	if err != nil {
		s.log.Error("failed to fetch payment", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()
	expires := now.AddDate(accessYears, 0, 0)
	if err := s.entries.ActivateEntry(ctx, entry.ID, now, expires, payment.Snapshot()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("order verified", "user_uid", user.UID, "course_uid", courseUID,
		"payment_id", paymentID)
	return nil
}

// VerifySubscription проверяет подпись оплаты регулярной подписки.
// Подпись считается от идентификатора платежа и сохраненного
// идентификатора подписки. Срок доступа не проставляется: доступ
// действует, пока провайдер продолжает списания.
func (s *BillingService) VerifySubscription(ctx context.Context, user *models.User, courseUID, paymentID, gotSignature string) error {
	const op = "billing.VerifySubscription"

	entry, err := s.entries.FindEntry(ctx, user.UID, courseUID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return fmt.Errorf("%s: %w", op, ErrEntryNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if entry.SubscriptionID == "" {
		return fmt.Errorf("%s: %w", op, ErrEntryNotFound)
	}

	if !signature.VerifySubscription(s.keySecret, paymentID, entry.SubscriptionID, gotSignature) {
		s.log.Warn("subscription signature mismatch", "user_uid", user.UID, "course_uid", courseUID)
		return fmt.Errorf("%s: %w", op, ErrVerificationFailed)
	}

	if err := s.entries.UpdateEntryStatus(ctx, entry.ID, models.StatusActive); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription verified", "user_uid", user.UID, "course_uid", courseUID,
		"payment_id", paymentID)
	return nil
}

// Unsubscribe отменяет активную регулярную подписку пользователя.
// Локальный статус зеркалирует статус, который вернул провайдер.
func (s *BillingService) Unsubscribe(ctx context.Context, user *models.User) (string, error) {
	const op = "billing.Unsubscribe"

	entry, err := s.entries.FindActiveSubscription(ctx, user.UID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrNoActiveSubscription)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	sub, err := s.gateway.CancelSubscription(entry.SubscriptionID)
	if err != nil {
		s.log.Error("failed to cancel subscription", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.entries.UpdateEntryStatus(ctx, entry.ID, sub.Status); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription cancelled", "user_uid", user.UID,
		"subscription_id", entry.SubscriptionID, "status", sub.Status)
	return sub.Status, nil
}

// PurchaseHistory возвращает историю покупок пользователя. Записи
// с неподтвержденной оплатой в историю не попадают.
func (s *BillingService) PurchaseHistory(ctx context.Context, user *models.User) ([]models.HistoryItem, error) {
	const op = "billing.PurchaseHistory"

	entries, err := s.entries.ListEntries(ctx, user.UID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items := make([]models.HistoryItem, 0, len(entries))
	for _, entry := range entries {
		if entry.Status == models.StatusCreated {
			continue
		}
		item := models.HistoryItem{
			CourseUID:   entry.CourseUID,
			CourseTitle: entry.CourseTitle,
			Status:      entry.Status,
			PurchaseAt:  entry.PurchaseAt,
			ExpiresAt:   entry.ExpiresAt,
		}
		if amount, ok := entry.PaymentDetails["amount"].(float64); ok {
			item.Amount = &amount
		}
		if method, ok := entry.PaymentDetails["method"].(string); ok {
			item.PaymentMethod = method
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *BillingService) findCourse(ctx context.Context, op, courseUID string) (*models.Course, error) {
	course, err := s.courses.GetCourse(ctx, courseUID)
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrCourseNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return course, nil
}

func (s *BillingService) findEntry(ctx context.Context, op, userUID, courseUID string) (*models.Entry, error) {
	entry, err := s.entries.FindEntry(ctx, userUID, courseUID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entry, nil
}
