package ports

import (
	"context"

	"lavadero/pkg/pinpad"
)

// LineSender отправляет данные микроконтроллеру
type LineSender interface {
	Send(p []byte) error
}

// LineReceiver запускает цикл приёма строк
type LineReceiver interface {
	Run(ctx context.Context, onLine func(line string)) error
}

// TicketPrinter передаёт готовый документ на принтер
type TicketPrinter interface {
	Transmit(doc []byte, printerName string) error
}

// PaymentTerminal выполняет оплату через терминал
type PaymentTerminal interface {
	Charge(ctx context.Context, host, amountCode string) pinpad.Outcome
}

// SerialLine канал микроконтроллера: приём и отправка
type SerialLine interface {
	LineSender
	LineReceiver
}
