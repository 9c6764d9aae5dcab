package serialline

import (
	"errors"
	"fmt"
	"os"

	"go.bug.st/serial"
)

var (
	ErrPortClosed  = errors.New("serialline: port is closed")
	ErrNoDevice    = errors.New("serialline: device name is empty")
	ErrInvalidBaud = errors.New("serialline: baud rate must be positive")
)

// IOError описывает сбой чтения или записи в последовательный порт
type IOError struct {
	Op     string // "read" или "write"
	Device string
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("serialline: %s %s: %v", e.Op, e.Device, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// isTimeout сообщает, является ли ошибка чтения истечением таймаута.
// go.bug.st/serial при таймауте возвращает (0, nil), но обёртки над портом
// могут возвращать ошибку дедлайна.
func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) {
		return te.Timeout()
	}
	return false
}

// isClosed сообщает, что порт был закрыт (обычно при остановке приложения)
func isClosed(err error) bool {
	if errors.Is(err, ErrPortClosed) || errors.Is(err, os.ErrClosed) {
		return true
	}
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		return portErr.Code() == serial.PortClosed
	}
	return false
}
