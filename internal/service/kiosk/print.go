package kiosk

import (
	"encoding/json"
	"fmt"

	"lavadero/internal/domain/ports"
	"lavadero/internal/metrics"
	"lavadero/pkg/escpos"
)

// TicketPrinted ответ оболочке после успешной печати
const TicketPrinted = "Ticket impreso correctamente."

// PrintService печатает чек покупки
type PrintService struct {
	encoder *escpos.Encoder
	printer ports.TicketPrinter
	name    string
	logger  ports.Logger
}

func NewPrintService(encoder *escpos.Encoder, printer ports.TicketPrinter, printerName string, logger ports.Logger) *PrintService {
	return &PrintService{encoder: encoder, printer: printer, name: printerName, logger: logger}
}

// PrintJSON разбирает данные чека от оболочки и печатает его
func (s *PrintService) PrintJSON(raw []byte) (string, error) {
	var inv escpos.Invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return "", &ParseError{Err: err}
	}
	if err := inv.Validate(); err != nil {
		return "", &ParseError{Err: err}
	}
	return s.Print(inv)
}

// Print кодирует и передаёт чек на принтер
func (s *PrintService) Print(inv escpos.Invoice) (string, error) {
	doc := s.encoder.Encode(inv)
	err := s.printer.Transmit(doc.Bytes(), s.name)
	metrics.Tickets.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		s.logger.Error("ошибка печати чека %s на %s: %v", inv.Number, s.name, err)
		return "", fmt.Errorf("печать чека: %w", err)
	}
	s.logger.Info("чек %s напечатан на %s (%d байт)", inv.Number, s.name, doc.Len())
	return TicketPrinted, nil
}
