package models

import "lavadero/pkg/pinpad"

// Имена событий, которые получает оболочка киоска
const (
	EventArduinoData     = "arduino-data"
	EventPaymentInserted = "pagoInsertado"
)

// Статусы события pagoInsertado
const (
	PaymentStatusSuccess = "success"
	PaymentStatusError   = "error"
)

// DefaultPaymentError сообщение по умолчанию для неуспешной оплаты
const DefaultPaymentError = "Error durante el procesamiento del pago"

// PaymentEvent полезная нагрузка события pagoInsertado
type PaymentEvent struct {
	Status      string              `json:"status"`
	Transaction *pinpad.Transaction `json:"transaction,omitempty"`
	Message     string              `json:"message,omitempty"`
}

// NewPaymentEvent переводит результат оплаты в событие для UI.
// Любой неуспешный исход (включая отмену) отдаётся как "error" с сообщением.
func NewPaymentEvent(out pinpad.Outcome) PaymentEvent {
	if out.Status == pinpad.StatusSuccess {
		return PaymentEvent{Status: PaymentStatusSuccess, Transaction: out.Transaction}
	}
	msg := out.MessageText()
	if msg == "" {
		msg = DefaultPaymentError
	}
	return PaymentEvent{Status: PaymentStatusError, Message: msg}
}
