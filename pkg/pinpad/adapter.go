// Package pinpad запускает внешнее консольное приложение платёжного терминала
// и классифицирует его текстовый вывод.
package pinpad

import (
	"context"
	"fmt"
	"strings"
)

// Маркеры в выводе процесса терминала
const (
	MarkerApprovalCode   = "Codigo de Respuesta: 00"
	MarkerApprovalPhrase = "APROBADA TRANS."
	MarkerCancelled      = "TRANS CANCELADA"
	MarkerErrorResult    = "RESULTADO: ERROR"
	LabelErrorMessage    = "MENSAJE:"
)

// Status итог попытки оплаты
type Status string

const (
	StatusSuccess   Status = "success"
	StatusCancelled Status = "cancelled"
	StatusError     Status = "error"
)

// Reason уточняет StatusError
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonInvocation   Reason = "invocation"   // процесс не запустился
	ReasonStderr       Reason = "stderr"       // процесс писал в stderr
	ReasonDeclined     Reason = "declined"     // терминал вернул RESULTADO: ERROR
	ReasonUnrecognized Reason = "unrecognized" // в выводе нет известных маркеров
)

// State состояние попытки оплаты
type State string

const (
	StateIdle             State = "Idle"
	StateInvoked          State = "Invoked"
	StateSuccess          State = "Success"
	StateCancelled        State = "Cancelled"
	StateError            State = "Error"
	StateInvocationFailed State = "InvocationFailed"
)

// Outcome результат Charge
type Outcome struct {
	Status      Status       `json:"status"`
	Reason      Reason       `json:"reason,omitempty"`
	Transaction *Transaction `json:"transaction,omitempty"`
	Message     *string      `json:"message,omitempty"`
	// Output исходный вывод процесса (для диагностики)
	Output string `json:"-"`
	Err    error  `json:"-"`
}

// State возвращает конечное состояние попытки
func (o Outcome) State() State {
	switch {
	case o.Status == StatusSuccess:
		return StateSuccess
	case o.Status == StatusCancelled:
		return StateCancelled
	case o.Reason == ReasonInvocation:
		return StateInvocationFailed
	default:
		return StateError
	}
}

// MessageText возвращает сообщение или пустую строку
func (o Outcome) MessageText() string {
	if o.Message == nil {
		return ""
	}
	return *o.Message
}

// Config параметры адаптера
type Config struct {
	// Executable и Args: итоговая команда: Executable Args... host amountCode
	Executable string   `json:"executable"`
	Args       []string `json:"args,omitempty"`
	// OutputCharset метка кодировки вывода консоли (например "windows-1252"); пусто: UTF-8
	OutputCharset string           `json:"outputCharset,omitempty"`
	Logger        func(msg string) `json:"-"`
}

// Adapter вызывает процесс терминала. Повторов и собственного таймаута нет:
// ожидание ограничивает только ctx вызывающего.
type Adapter struct {
	cfg    Config
	runner Runner
}

// NewAdapter создаёт адаптер; runner == nil: ExecRunner
func NewAdapter(cfg Config, runner Runner) *Adapter {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Adapter{cfg: cfg, runner: runner}
}

// Charge выполняет одну попытку оплаты и всегда возвращает классифицированный результат
func (a *Adapter) Charge(ctx context.Context, host, amountCode string) Outcome {
	args := make([]string, 0, len(a.cfg.Args)+2)
	args = append(args, a.cfg.Args...)
	args = append(args, host, amountCode)

	a.logf("%s -> %s: %s %s", StateIdle, StateInvoked, a.cfg.Executable, strings.Join(args, " "))

	stdout, stderr, err := a.runner.Run(ctx, a.cfg.Executable, args...)
	if err != nil {
		invErr := &InvocationError{Executable: a.cfg.Executable, Err: err}
		msg := invErr.Error()
		out := Outcome{Status: StatusError, Reason: ReasonInvocation, Message: &msg, Err: invErr}
		a.logf("%s -> %s: %v", StateInvoked, out.State(), err)
		return out
	}

	errText := decodeOutput(a.cfg.OutputCharset, stderr)
	if strings.TrimSpace(errText) != "" {
		a.logf("%s -> %s: stderr: %s", StateInvoked, StateError, errText)
		return Outcome{Status: StatusError, Reason: ReasonStderr, Output: errText}
	}

	out := Classify(decodeOutput(a.cfg.OutputCharset, stdout))
	if out.Reason == ReasonUnrecognized {
		a.logf("%s -> %s: вывод без известных маркеров: %q", StateInvoked, out.State(), out.Output)
	} else {
		a.logf("%s -> %s (%s)", StateInvoked, out.State(), out.MessageText())
	}
	return out
}

// Classify классифицирует stdout по маркерам в порядке приоритета:
// одобрение, отмена, ошибка, нераспознанный вывод.
func Classify(stdout string) Outcome {
	switch {
	case strings.Contains(stdout, MarkerApprovalCode) && strings.Contains(stdout, MarkerApprovalPhrase):
		tx := ParseTransaction(stdout)
		return Outcome{Status: StatusSuccess, Transaction: &tx, Output: stdout}

	case strings.Contains(stdout, MarkerCancelled):
		tx := ParseTransaction(stdout)
		return Outcome{Status: StatusCancelled, Transaction: &tx, Output: stdout}

	case strings.Contains(stdout, MarkerErrorResult):
		out := Outcome{Status: StatusError, Reason: ReasonDeclined, Output: stdout}
		// сообщение берётся только до конца строки MENSAJE:, а не весь остаток вывода
		if msg := Extract(stdout, LabelErrorMessage); msg != "" {
			out.Message = &msg
		}
		return out

	default:
		return Outcome{Status: StatusError, Reason: ReasonUnrecognized, Output: stdout}
	}
}

func (a *Adapter) logf(format string, args ...interface{}) {
	if a.cfg.Logger != nil {
		a.cfg.Logger(fmt.Sprintf(format, args...))
	}
}
