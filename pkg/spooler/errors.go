package spooler

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyDocument = errors.New("spooler: empty document")
	ErrNoPrinter     = errors.New("spooler: printer name is empty")
	ErrJobState      = errors.New("spooler: job is not in a valid state for this step")
)

// Step шаг работы с очередью печати
type Step string

const (
	StepOpen          Step = "open"
	StepStartDocument Step = "start-document"
	StepStartPage     Step = "start-page"
	StepWrite         Step = "write"
	StepEndPage       Step = "end-page"
	StepEndDocument   Step = "end-document"
	StepClose         Step = "close"
)

var stepMessages = map[Step]string{
	StepOpen:          "No se pudo abrir la impresora.",
	StepStartDocument: "No se pudo iniciar el documento.",
	StepStartPage:     "No se pudo iniciar la página.",
	StepWrite:         "Error al escribir en la impresora.",
	StepEndPage:       "No se pudo finalizar la página.",
	StepEndDocument:   "No se pudo finalizar el documento.",
	StepClose:         "No se pudo cerrar la impresora.",
}

// PrinterError ошибка конкретного шага печати
type PrinterError struct {
	Step    Step
	Printer string
	Err     error
}

func (e *PrinterError) Error() string {
	return fmt.Sprintf("%s (%s, %s): %v", e.Message(), e.Printer, e.Step, e.Err)
}

func (e *PrinterError) Unwrap() error {
	return e.Err
}

// Message текст для пользователя киоска
func (e *PrinterError) Message() string {
	if msg, ok := stepMessages[e.Step]; ok {
		return msg
	}
	return "Error de impresión."
}
