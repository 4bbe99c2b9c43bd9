package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyOrder(t *testing.T) {
	secret := "provider-secret"
	sig := Sign(secret, "order_123|pay_456")

	tests := []struct {
		name      string
		secret    string
		orderID   string
		paymentID string
		got       string
		want      bool
	}{
		{
			name:      "корректная подпись принимается",
			secret:    secret,
			orderID:   "order_123",
			paymentID: "pay_456",
			got:       sig,
			want:      true,
		},
		{
			name:      "другой orderID отклоняется",
			secret:    secret,
			orderID:   "order_124",
			paymentID: "pay_456",
			got:       sig,
			want:      false,
		},
		{
			name:      "другой paymentID отклоняется",
			secret:    secret,
			orderID:   "order_123",
			paymentID: "pay_457",
			got:       sig,
			want:      false,
		},
		{
			name:      "другой секрет отклоняется",
			secret:    "another-secret",
			orderID:   "order_123",
			paymentID: "pay_456",
			got:       sig,
			want:      false,
		},
		{
			name:      "искаженная подпись отклоняется",
			secret:    secret,
			orderID:   "order_123",
			paymentID: "pay_456",
			got:       sig[:len(sig)-1] + "0",
			want:      false,
		},
		{
			name:      "пустая подпись отклоняется",
			secret:    secret,
			orderID:   "order_123",
			paymentID: "pay_456",
			got:       "",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyOrder(tt.secret, tt.orderID, tt.paymentID, tt.got))
		})
	}
}

func TestVerifyOrder_Deterministic(t *testing.T) {
	sig := Sign("s", "a|b")
	for i := 0; i < 5; i++ {
		assert.True(t, VerifyOrder("s", "a", "b", sig))
	}
}

func TestVerifySubscription(t *testing.T) {
	secret := "provider-secret"
	sig := Sign(secret, "pay_456|sub_789")

	assert.True(t, VerifySubscription(secret, "pay_456", "sub_789", sig))
	assert.False(t, VerifySubscription(secret, "pay_456", "sub_790", sig))
	assert.False(t, VerifySubscription(secret, "pay_457", "sub_789", sig))
}
