package pinpad

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"golang.org/x/net/html/charset"
)

// Runner запускает внешний процесс и возвращает его stdout и stderr.
// Ошибка означает, что процесс не удалось запустить; ненулевой код выхода
// ошибкой не считается.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner запускает процесс через os/exec.
// ctx проверяется только до запуска: начатая транзакция на терминале
// не прерывается, Run ждёт завершения процесса.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}
	err := cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		err = nil
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

// decodeOutput переводит вывод консоли в UTF-8.
// Пустая метка: вывод уже в UTF-8, некорректные байты заменяются.
func decodeOutput(label string, data []byte) string {
	if label != "" {
		r, err := charset.NewReaderLabel(label, bytes.NewReader(data))
		if err == nil {
			if decoded, err := io.ReadAll(r); err == nil {
				return string(decoded)
			}
		}
	}
	return strings.ToValidUTF8(string(data), "�")
}

// InvocationError процесс терминала не удалось запустить
type InvocationError struct {
	Executable string
	Err        error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("Error al ejecutar la aplicación de consola %s: %v", e.Executable, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
