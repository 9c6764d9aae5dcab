// Package kiosk связывает устройства киоска с событиями оболочки.
package kiosk

import (
	"context"
	"fmt"

	"lavadero/internal/domain/models"
	"lavadero/internal/domain/ports"
	"lavadero/internal/metrics"
)

// SerialService транслирует строки микроконтроллера в событие arduino-data
// и отправляет ему команды оболочки.
type SerialService struct {
	line   ports.SerialLine
	events ports.EventEmitter
	logger ports.Logger
}

func NewSerialService(line ports.SerialLine, events ports.EventEmitter, logger ports.Logger) *SerialService {
	return &SerialService{line: line, events: events, logger: logger}
}

// Start запускает цикл приёма в отдельной горутине. Канал получает
// причину остановки цикла: ctx.Err() или фатальную ошибку чтения.
func (s *SerialService) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := s.line.Run(ctx, s.onLine)
		if err != nil && ctx.Err() == nil {
			s.logger.Error("цикл чтения порта остановлен: %v", err)
		}
		done <- err
		close(done)
	}()
	return done
}

func (s *SerialService) onLine(line string) {
	metrics.SerialLines.Inc()
	s.logger.Debug("RX: %q", line)
	if err := s.events.Emit(models.EventArduinoData, line); err != nil {
		s.logger.Warn("не удалось отправить событие %s: %v", models.EventArduinoData, err)
	}
}

// Send передаёт текст микроконтроллеру как есть
func (s *SerialService) Send(text string) error {
	err := s.line.Send([]byte(text))
	metrics.SerialWrites.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("Error escribiendo en el puerto serie: %w", err)
	}
	s.logger.Info("Enviando a Arduino: %s", text)
	return nil
}
