package spooler

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockSpooler считает открытия/закрытия и может сломать любой шаг
type MockSpooler struct {
	FailAt   Step
	Err      error
	MaxWrite int

	Calls   []Step
	Opens   int
	Closes  int
	Written bytes.Buffer
	DocName string
	Type    string
}

func (m *MockSpooler) fail(step Step) error {
	m.Calls = append(m.Calls, step)
	if m.FailAt == step {
		return m.Err
	}
	return nil
}

func (m *MockSpooler) Open(printer string) (Job, error) {
	if err := m.fail(StepOpen); err != nil {
		return nil, err
	}
	m.Opens++
	return &mockJob{m: m}, nil
}

type mockJob struct {
	m *MockSpooler
}

func (j *mockJob) StartDocument(name, dataType string) error {
	j.m.DocName, j.m.Type = name, dataType
	return j.m.fail(StepStartDocument)
}

func (j *mockJob) StartPage() error { return j.m.fail(StepStartPage) }

func (j *mockJob) Write(p []byte) (int, error) {
	if err := j.m.fail(StepWrite); err != nil {
		return 0, err
	}
	n := len(p)
	if j.m.MaxWrite > 0 && n > j.m.MaxWrite {
		n = j.m.MaxWrite
	}
	j.m.Written.Write(p[:n])
	return n, nil
}

func (j *mockJob) EndPage() error     { return j.m.fail(StepEndPage) }
func (j *mockJob) EndDocument() error { return j.m.fail(StepEndDocument) }

func (j *mockJob) Close() error {
	j.m.Closes++
	return j.m.fail(StepClose)
}

func TestTransmitSuccess(t *testing.T) {
	sp := &MockSpooler{MaxWrite: 4}
	tr := NewTransmitter(sp, Options{})

	require.NoError(t, tr.Transmit([]byte("\x1b@hola\x1dV\x00"), "POS-80"))

	assert.Equal(t, "\x1b@hola\x1dV\x00", sp.Written.String())
	assert.Equal(t, DefaultDocumentName, sp.DocName)
	assert.Equal(t, DataTypeRaw, sp.Type)
	assert.Equal(t, 1, sp.Opens)
	assert.Equal(t, 1, sp.Closes)
	assert.Equal(t, StepOpen, sp.Calls[0])
	assert.Equal(t, []Step{StepEndPage, StepEndDocument, StepClose}, sp.Calls[len(sp.Calls)-3:])
}

func TestTransmitReleasesOnEveryFailure(t *testing.T) {
	boom := errors.New("spooler offline")
	tests := []struct {
		failAt   Step
		expected []Step
	}{
		{StepOpen, []Step{StepOpen}},
		{StepStartDocument, []Step{StepOpen, StepStartDocument, StepClose}},
		{StepStartPage, []Step{StepOpen, StepStartDocument, StepStartPage, StepEndDocument, StepClose}},
		{StepWrite, []Step{StepOpen, StepStartDocument, StepStartPage, StepWrite, StepEndPage, StepEndDocument, StepClose}},
		{StepEndPage, []Step{StepOpen, StepStartDocument, StepStartPage, StepWrite, StepEndPage, StepEndDocument, StepClose}},
		{StepEndDocument, []Step{StepOpen, StepStartDocument, StepStartPage, StepWrite, StepEndPage, StepEndDocument, StepClose}},
		{StepClose, []Step{StepOpen, StepStartDocument, StepStartPage, StepWrite, StepEndPage, StepEndDocument, StepClose}},
	}

	for _, tt := range tests {
		t.Run(string(tt.failAt), func(t *testing.T) {
			sp := &MockSpooler{FailAt: tt.failAt, Err: boom}
			err := NewTransmitter(sp, Options{}).Transmit([]byte("ticket"), "POS-80")

			var pe *PrinterError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.failAt, pe.Step)
			assert.Equal(t, "POS-80", pe.Printer)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, tt.expected, sp.Calls)
			assert.Equal(t, sp.Opens, sp.Closes)
		})
	}
}

func TestTransmitWriteFailureKeepsWriteError(t *testing.T) {
	sp := &MockSpooler{FailAt: StepWrite, Err: errors.New("paper jam")}
	err := NewTransmitter(sp, Options{}).Transmit([]byte("x"), "POS-80")

	var pe *PrinterError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, StepWrite, pe.Step)
	assert.Equal(t, "Error al escribir en la impresora.", pe.Message())
	assert.Equal(t, 1, sp.Opens)
	assert.Equal(t, 1, sp.Closes)
}

func TestTransmitValidatesInput(t *testing.T) {
	sp := &MockSpooler{}
	tr := NewTransmitter(sp, Options{})

	assert.ErrorIs(t, tr.Transmit(nil, "POS-80"), ErrEmptyDocument)
	assert.ErrorIs(t, tr.Transmit([]byte("x"), ""), ErrNoPrinter)
	assert.Empty(t, sp.Calls)
}

func TestTransmitCustomDocument(t *testing.T) {
	sp := &MockSpooler{}
	var logs []string
	tr := NewTransmitter(sp, Options{
		DocumentName: "Cierre",
		DataType:     "XPS_PASS",
		Logger:       func(msg string) { logs = append(logs, msg) },
	})

	require.NoError(t, tr.Transmit([]byte("x"), "POS-58"))
	assert.Equal(t, "Cierre", sp.DocName)
	assert.Equal(t, "XPS_PASS", sp.Type)
	assert.NotEmpty(t, logs)
}
