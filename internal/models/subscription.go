// Package models содержит доменные структуры, описывающие связь
// пользователя с курсом: разовый заказ или регулярную подписку.
package models

import "time"

// Статусы записи о покупке. Провайдер может вернуть и другие строки —
// они сохраняются как есть.
const (
	// StatusCreated — заказ или подписка создана, оплата не подтверждена.
	StatusCreated = "created"
	// StatusActive — доступ к курсу открыт.
	StatusActive = "active"
	// StatusCancelled — подписка отменена.
	StatusCancelled = "cancelled"
)

// Entry представляет запись о покупке курса пользователем.
// На пару (пользователь, курс) существует не более одной записи,
// это гарантируется уникальным индексом в базе.
// Заполнено либо OrderID (разовый заказ), либо SubscriptionID
// (регулярная подписка) — в зависимости от выбранного сценария оплаты.
type Entry struct {
	ID             int            // Идентификатор записи
	UserUID        string         // Владелец записи
	CourseUID      string         // Курс, к которому относится запись
	CourseTitle    string         // Название курса на момент покупки
	Status         string         // Текущий статус записи
	OrderID        string         // Ссылка на разовый заказ у провайдера
	SubscriptionID string         // Ссылка на регулярную подписку у провайдера
	PurchaseAt     *time.Time     // Момент подтверждения оплаты
	ExpiresAt      *time.Time     // Срок окончания доступа (для разовых заказов)
	PaymentDetails map[string]any // Снимок платежа провайдера для аудита
}

// HistoryItem — строка истории покупок пользователя. Записи со статусом
// "created" (незавершённые оплаты) в историю не попадают.
type HistoryItem struct {
	CourseUID     string     `json:"course_id"`
	CourseTitle   string     `json:"course_title"`
	Status        string     `json:"status"`
	PurchaseAt    *time.Time `json:"purchase_at,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Amount        *float64   `json:"amount,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
}
