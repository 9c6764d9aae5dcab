//go:build !windows

package spooler

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// LPSpooler отправляет задания в CUPS через утилиту lp
type LPSpooler struct {
	Command string // по умолчанию "lp"
}

// Default возвращает спулер текущей платформы
func Default() Spooler {
	return LPSpooler{}
}

func (s LPSpooler) Open(printer string) (Job, error) {
	name := s.Command
	if name == "" {
		name = "lp"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("lp недоступен: %w", err)
	}
	return &lpJob{path: path, printer: printer}, nil
}

// lpJob: документ = один процесс lp, данные идут в stdin
type lpJob struct {
	path    string
	printer string
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stderr  bytes.Buffer
	failed  bool
}

func (j *lpJob) StartDocument(name, dataType string) error {
	if j.cmd != nil {
		return ErrJobState
	}
	args := []string{"-d", j.printer, "-t", name}
	if strings.EqualFold(dataType, DataTypeRaw) {
		args = append(args, "-o", "raw")
	}
	args = append(args, "-")

	cmd := exec.Command(j.path, args...)
	cmd.Stderr = &j.stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	j.cmd = cmd
	j.stdin = stdin
	return nil
}

func (j *lpJob) StartPage() error {
	if j.cmd == nil {
		return ErrJobState
	}
	return nil
}

func (j *lpJob) Write(p []byte) (int, error) {
	if j.stdin == nil {
		return 0, ErrJobState
	}
	n, err := j.stdin.Write(p)
	if err != nil {
		j.failed = true
	}
	return n, err
}

func (j *lpJob) EndPage() error {
	return nil
}

// EndDocument закрывает stdin и ждёт lp. Если запись не удалась,
// задание прерывается, чтобы не печатать обрывок чека.
func (j *lpJob) EndDocument() error {
	if j.cmd == nil {
		return ErrJobState
	}
	cmd := j.cmd
	j.cmd = nil

	if j.failed {
		_ = cmd.Process.Kill()
	}
	_ = j.stdin.Close()
	j.stdin = nil

	if err := cmd.Wait(); err != nil && !j.failed {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(j.stderr.String()))
	}
	return nil
}

func (j *lpJob) Close() error {
	if j.cmd == nil {
		return nil
	}
	// документ не был завершён
	if j.stdin != nil {
		_ = j.stdin.Close()
	}
	_ = j.cmd.Process.Kill()
	_ = j.cmd.Wait()
	j.cmd = nil
	return nil
}
