// Package spooler передаёт готовые документы в системную очередь печати.
package spooler

import (
	"fmt"
	"io"
)

const (
	DefaultDocumentName = "Ticket de Compra"
	DataTypeRaw         = "RAW"
)

// Spooler открывает задание печати на именованном принтере
type Spooler interface {
	Open(printer string) (Job, error)
}

// Job повторяет последовательность вызовов winspool:
// StartDoc -> StartPage -> Write -> EndPage -> EndDoc -> Close.
type Job interface {
	StartDocument(name, dataType string) error
	StartPage() error
	Write(p []byte) (int, error)
	EndPage() error
	EndDocument() error
	Close() error
}

// Options параметры передатчика
type Options struct {
	DocumentName string
	DataType     string
	Logger       func(msg string)
}

// Transmitter отправляет документ на принтер
type Transmitter struct {
	spooler  Spooler
	docName  string
	dataType string
	logger   func(msg string)
}

// NewTransmitter создаёт передатчик поверх заданного спулера
func NewTransmitter(sp Spooler, opts Options) *Transmitter {
	if opts.DocumentName == "" {
		opts.DocumentName = DefaultDocumentName
	}
	if opts.DataType == "" {
		opts.DataType = DataTypeRaw
	}
	return &Transmitter{
		spooler:  sp,
		docName:  opts.DocumentName,
		dataType: opts.DataType,
		logger:   opts.Logger,
	}
}

// stage пара "действие / шаг" для acquire
type stage struct {
	step Step
	do   func() error
}

// Transmit печатает документ. При ошибке любого шага уже захваченные ресурсы
// освобождаются в обратном порядке, дескриптор принтера закрывается всегда.
func (t *Transmitter) Transmit(doc []byte, printer string) error {
	if printer == "" {
		return ErrNoPrinter
	}
	if len(doc) == 0 {
		return ErrEmptyDocument
	}

	var job Job
	open := stage{StepOpen, func() (err error) {
		job, err = t.spooler.Open(printer)
		return err
	}}
	closeJob := stage{StepClose, func() error { return job.Close() }}

	err := t.acquire(printer, open, closeJob, func() error {
		startDoc := stage{StepStartDocument, func() error { return job.StartDocument(t.docName, t.dataType) }}
		endDoc := stage{StepEndDocument, job.EndDocument}

		return t.acquire(printer, startDoc, endDoc, func() error {
			startPage := stage{StepStartPage, job.StartPage}
			endPage := stage{StepEndPage, job.EndPage}

			return t.acquire(printer, startPage, endPage, func() error {
				if err := writeAll(job, doc); err != nil {
					return &PrinterError{Step: StepWrite, Printer: printer, Err: err}
				}
				return nil
			})
		})
	})
	if err != nil {
		t.logf("Печать на %s не выполнена: %v", printer, err)
		return err
	}

	t.logf("Документ (%d байт) отправлен на %s", len(doc), printer)
	return nil
}

// acquire выполняет begin, затем body, и всегда end, если begin прошёл успешно.
// Возвращается первая ошибка: body важнее ошибки освобождения.
func (t *Transmitter) acquire(printer string, begin, end stage, body func() error) error {
	if err := begin.do(); err != nil {
		return &PrinterError{Step: begin.step, Printer: printer, Err: err}
	}

	err := body()

	if endErr := end.do(); endErr != nil {
		if err == nil {
			err = &PrinterError{Step: end.step, Printer: printer, Err: endErr}
		} else {
			t.logf("Ошибка шага %s после сбоя печати: %v", end.step, endErr)
		}
	}
	return err
}

func writeAll(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}

func (t *Transmitter) logf(format string, args ...interface{}) {
	if t.logger != nil {
		t.logger(fmt.Sprintf(format, args...))
	}
}
