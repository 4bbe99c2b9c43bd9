package billing

import (
	"fmt"
	"time"
)

// pageSize — размер страницы выгрузки платежей у провайдера.
const pageSize = 100

// MonthReport — платежи и сумма за один месяц. Сумма в основных
// единицах валюты.
type MonthReport struct {
	Month    string    `json:"month"`
	Payments []Payment `json:"payments"`
	Total    float64   `json:"total"`
}

// Payment — строка отчета по платежу.
type Payment struct {
	ID        string  `json:"id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`
	Method    string  `json:"method"`
	Email     string  `json:"email"`
	CreatedAt int64   `json:"created_at"`
}

// YearReport — платежи за год с разбивкой по месяцам.
type YearReport struct {
	Year   int           `json:"year"`
	Months []MonthReport `json:"months"`
	Total  float64       `json:"total"`
}

// PaymentsReport выгружает у провайдера все платежи за год помесячно.
// Страницы листаются, пока провайдер не вернет неполную страницу.
func (s *BillingService) PaymentsReport(year int) (*YearReport, error) {
	const op = "billing.PaymentsReport"

	report := &YearReport{Year: year}
	for month := time.January; month <= time.December; month++ {
		start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0).Add(-time.Second)

		monthReport := MonthReport{
			Month:    start.Month().String(),
			Payments: []Payment{},
		}

		skip := 0
		for {
			page, err := s.gateway.ListPayments(start.Unix(), end.Unix(), pageSize, skip)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			for _, p := range page.Items {
				amount := float64(p.Amount) / 100
				monthReport.Payments = append(monthReport.Payments, Payment{
					ID:        p.ID,
					Amount:    amount,
					Currency:  p.Currency,
					Status:    p.Status,
					Method:    p.Method,
					Email:     p.Email,
					CreatedAt: p.CreatedAt,
				})
				monthReport.Total += amount
			}
			if len(page.Items) < pageSize {
				break
			}
			skip += pageSize
		}

		report.Total += monthReport.Total
		report.Months = append(report.Months, monthReport)
	}
	return report, nil
}
