package kiosk

import (
	"context"
	"sync"

	"lavadero/pkg/pinpad"
)

type emitted struct {
	Name    string
	Payload interface{}
}

// MockEmitter: мок оболочки киоска
type MockEmitter struct {
	mu     sync.Mutex
	Events []emitted
	Err    error
}

func (m *MockEmitter) Emit(name string, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, emitted{name, payload})
	return m.Err
}

func (m *MockEmitter) All() []emitted {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]emitted(nil), m.Events...)
}

// MockLine: мок последовательного канала
type MockLine struct {
	OnSend func(p []byte) error
	Lines  []string
	RunErr error
	Sent   [][]byte
}

func (m *MockLine) Send(p []byte) error {
	m.Sent = append(m.Sent, append([]byte(nil), p...))
	if m.OnSend != nil {
		return m.OnSend(p)
	}
	return nil
}

func (m *MockLine) Run(ctx context.Context, onLine func(line string)) error {
	for _, l := range m.Lines {
		onLine(l)
	}
	if m.RunErr != nil {
		return m.RunErr
	}
	<-ctx.Done()
	return ctx.Err()
}

// MockPrinter: мок спулера
type MockPrinter struct {
	Doc     []byte
	Printer string
	Err     error
}

func (m *MockPrinter) Transmit(doc []byte, printerName string) error {
	m.Doc, m.Printer = doc, printerName
	return m.Err
}

// MockTerminal: мок платёжного терминала
type MockTerminal struct {
	OnCharge   func(ctx context.Context, host, amountCode string) pinpad.Outcome
	Host, Code string
	Calls      int
}

func (m *MockTerminal) Charge(ctx context.Context, host, amountCode string) pinpad.Outcome {
	m.Calls++
	m.Host, m.Code = host, amountCode
	if m.OnCharge != nil {
		return m.OnCharge(ctx, host, amountCode)
	}
	return pinpad.Outcome{Status: pinpad.StatusSuccess, Transaction: &pinpad.Transaction{}}
}
