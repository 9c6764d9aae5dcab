// Package api локальный HTTP API, через который оболочка киоска управляет устройствами.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"

	"lavadero/internal/domain/models"
	"lavadero/internal/domain/ports"
	"lavadero/internal/service/kiosk"
	"lavadero/pkg/spooler"
)

const maxBodySize = 64 << 10

// SerialSender отправка команд микроконтроллеру
type SerialSender interface {
	Send(text string) error
}

// TicketService печать чека по JSON оболочки
type TicketService interface {
	PrintJSON(raw []byte) (string, error)
}

// PaymentService оплата через терминал
type PaymentService interface {
	Pay(ctx context.Context, amount float64) (models.PaymentEvent, error)
	DefaultAmount() float64
}

// Handler обработчики API
type Handler struct {
	Serial    SerialSender
	Tickets   TicketService
	Payments  PaymentService
	DeviceID  string
	ListPorts func() ([]string, error)
	Logger    ports.Logger
}

type sendRequest struct {
	Data string `json:"data"`
}

type paymentRequest struct {
	Amount *float64 `json:"monto"`
}

type deviceIDResponse struct {
	ID string `json:"id"`
}

// SendToArduino POST /api/arduino/send
func (h *Handler) SendToArduino(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, (&kiosk.ParseError{Err: err}).Error())
		return
	}
	if err := h.Serial.Send(req.Data); err != nil {
		h.Logger.Error("send to arduino: %v", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeMessage(w, "ok")
}

// PrintTicket POST /api/print, тело: данные чека (numero, card, auth, nombre, monto)
func (h *Handler) PrintTicket(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.Tickets.PrintJSON(raw)
	if err != nil {
		var parseErr *kiosk.ParseError
		var printerErr *spooler.PrinterError
		switch {
		case errors.As(err, &parseErr):
			writeError(w, http.StatusBadRequest, parseErr.Error())
		case errors.As(err, &printerErr):
			writeError(w, http.StatusServiceUnavailable, printerErr.Message())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeMessage(w, msg)
}

// Pay POST /api/payments, тело необязательно: {"monto": 1.00}
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, (&kiosk.ParseError{Err: err}).Error())
		return
	}
	amount := h.Payments.DefaultAmount()
	if req.Amount != nil {
		amount = *req.Amount
	}

	// оплата не зависит от жизни запроса: терминал мог уже списать деньги
	ev, err := h.Payments.Pay(context.WithoutCancel(r.Context()), amount)
	if err != nil {
		var parseErr *kiosk.ParseError
		if errors.As(err, &parseErr) {
			writeError(w, http.StatusBadRequest, parseErr.Error())
			return
		}
		// результат оплаты уже получен, не доставлено только событие
		h.Logger.Warn("payment event: %v", err)
	}
	writeData(w, ev)
}

// DeviceIDHandler GET /api/device-id
func (h *Handler) DeviceIDHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, deviceIDResponse{ID: h.DeviceID})
}

// Ports GET /api/ports
func (h *Handler) Ports(w http.ResponseWriter, r *http.Request) {
	list, err := h.ListPorts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []string{}
	}
	sort.Strings(list)
	writeData(w, list)
}
