// Package signature реализует проверку подписи платежного провайдера.
//
// Провайдер подписывает пары идентификаторов HMAC-SHA256 с секретным
// ключом аккаунта и отдает подпись клиенту в hex-кодировке. Сервер
// пересчитывает подпись по сохранённым идентификаторам и сравнивает
// её с присланной за константное время.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign возвращает hex-представление HMAC-SHA256 от payload на ключе secret.
func Sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyOrder проверяет подпись разового заказа.
// Подписывается строка "<orderID>|<paymentID>".
func VerifyOrder(secret, orderID, paymentID, got string) bool {
	return verify(secret, orderID+"|"+paymentID, got)
}

// VerifySubscription проверяет подпись регулярной подписки.
// Подписывается строка "<paymentID>|<subscriptionID>".
func VerifySubscription(secret, paymentID, subscriptionID, got string) bool {
	return verify(secret, paymentID+"|"+subscriptionID, got)
}

func verify(secret, payload, got string) bool {
	want := Sign(secret, payload)
	return hmac.Equal([]byte(want), []byte(got))
}
