// Package paymentprovider реализует клиент платежного провайдера:
// разовые заказы, регулярные подписки и выгрузку платежей.
//
// Ответы провайдера декодируются в явные типы по операции. Успешный
// HTTP-статус с неполным телом (без id или status) считается ошибкой
// декодирования, а не пустым значением.
package paymentprovider

import "fmt"

// CreateOrderRequest — запрос на создание разового заказа.
// Amount задается в минимальных единицах валюты (пайсы, копейки).
type CreateOrderRequest struct {
	Amount   int               `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order — заказ, созданный у провайдера.
type Order struct {
	ID        string            `json:"id"`
	Entity    string            `json:"entity"`
	Amount    int               `json:"amount"`
	AmountDue int               `json:"amount_due"`
	Currency  string            `json:"currency"`
	Receipt   string            `json:"receipt"`
	Status    string            `json:"status"`
	Notes     map[string]string `json:"notes"`
	CreatedAt int64             `json:"created_at"`
}

func (o *Order) validate() error {
	if o.ID == "" {
		return fmt.Errorf("order response: missing id")
	}
	if o.Status == "" {
		return fmt.Errorf("order response: missing status")
	}
	return nil
}

// CreateSubscriptionRequest — запрос на создание регулярной подписки.
// StartAt — unix-время первого списания, TotalCount — количество
// платежных циклов.
type CreateSubscriptionRequest struct {
	PlanID         string `json:"plan_id"`
	StartAt        int64  `json:"start_at"`
	TotalCount     int    `json:"total_count"`
	CustomerNotify int    `json:"customer_notify"`
}

// Subscription — регулярная подписка у провайдера.
type Subscription struct {
	ID             string `json:"id"`
	Entity         string `json:"entity"`
	PlanID         string `json:"plan_id"`
	Status         string `json:"status"`
	StartAt        int64  `json:"start_at"`
	TotalCount     int    `json:"total_count"`
	PaidCount      int    `json:"paid_count"`
	CustomerNotify int    `json:"customer_notify"`
	CreatedAt      int64  `json:"created_at"`
}

func (s *Subscription) validate() error {
	if s.ID == "" {
		return fmt.Errorf("subscription response: missing id")
	}
	if s.Status == "" {
		return fmt.Errorf("subscription response: missing status")
	}
	return nil
}

// Payment — платеж у провайдера. Сохраняется в записи о покупке
// как снимок для аудита.
type Payment struct {
	ID             string            `json:"id"`
	Entity         string            `json:"entity"`
	Amount         int               `json:"amount"`
	Currency       string            `json:"currency"`
	Status         string            `json:"status"`
	OrderID        string            `json:"order_id"`
	SubscriptionID string            `json:"subscription_id"`
	Method         string            `json:"method"`
	Email          string            `json:"email"`
	Contact        string            `json:"contact"`
	Notes          map[string]string `json:"notes"`
	CreatedAt      int64             `json:"created_at"`
}

func (p *Payment) validate() error {
	if p.ID == "" {
		return fmt.Errorf("payment response: missing id")
	}
	if p.Status == "" {
		return fmt.Errorf("payment response: missing status")
	}
	return nil
}

// PaymentList — страница выгрузки платежей. Вызывающая сторона
// листает страницы, пока не получит меньше count элементов.
type PaymentList struct {
	Entity string    `json:"entity"`
	Count  int       `json:"count"`
	Items  []Payment `json:"items"`
}

// Snapshot переводит платеж в снимок для хранения в записи о покупке.
func (p *Payment) Snapshot() map[string]any {
	return map[string]any{
		"payment_id": p.ID,
		"amount":     p.Amount,
		"currency":   p.Currency,
		"status":     p.Status,
		"method":     p.Method,
		"email":      p.Email,
		"contact":    p.Contact,
		"created_at": p.CreatedAt,
	}
}
