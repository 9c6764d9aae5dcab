package kiosk

import (
	"context"
	"fmt"
	"time"

	"lavadero/internal/domain/models"
	"lavadero/internal/domain/ports"
	"lavadero/internal/metrics"
	"lavadero/pkg/pinpad"
)

// PaymentConfig параметры оплаты
type PaymentConfig struct {
	Host          string
	DefaultAmount float64
}

// PaymentService выполняет оплату через терминал и публикует pagoInsertado
type PaymentService struct {
	terminal ports.PaymentTerminal
	events   ports.EventEmitter
	cfg      PaymentConfig
	logger   ports.Logger
}

func NewPaymentService(terminal ports.PaymentTerminal, events ports.EventEmitter, cfg PaymentConfig, logger ports.Logger) *PaymentService {
	return &PaymentService{terminal: terminal, events: events, cfg: cfg, logger: logger}
}

// DefaultAmount сумма, если оболочка её не передала
func (s *PaymentService) DefaultAmount() float64 {
	return s.cfg.DefaultAmount
}

// Pay выполняет одну попытку оплаты. Ошибка возвращается, если сумма
// некорректна (терминал не вызывается) или событие не удалось отправить.
func (s *PaymentService) Pay(ctx context.Context, amount float64) (models.PaymentEvent, error) {
	code, err := pinpad.AmountCode(amount)
	if err != nil {
		return models.PaymentEvent{}, &ParseError{Err: err}
	}
	s.logger.Info("Evento nuevoPago recibido: %s -> %s", code, s.cfg.Host)

	start := time.Now()
	out := s.terminal.Charge(ctx, s.cfg.Host, code)
	metrics.PaymentDuration.Observe(time.Since(start).Seconds())
	metrics.Payments.WithLabelValues(string(out.Status), string(out.Reason)).Inc()

	ev := models.NewPaymentEvent(out)
	if ev.Status == models.PaymentStatusSuccess {
		s.logger.Info("Pago procesado exitosamente.")
	} else {
		s.logger.Warn("Error durante el procesamiento del pago: %s/%s: %s", out.Status, out.Reason, ev.Message)
	}

	if err := s.events.Emit(models.EventPaymentInserted, ev); err != nil {
		return ev, fmt.Errorf("не удалось отправить событие %s: %w", models.EventPaymentInserted, err)
	}
	return ev, nil
}
