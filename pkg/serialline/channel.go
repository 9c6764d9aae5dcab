package serialline

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.bug.st/serial"
)

const (
	DefaultBaudRate      = 9600
	DefaultReadTimeout   = 2 * time.Second
	DefaultPollInterval  = 100 * time.Millisecond
	DefaultBufferSize    = 1024
	DefaultMaxLineLength = 4096 // предел строки без '\n', после него хвост отбрасывается
)

// Port минимальный интерфейс последовательного порта.
// serial.Port из go.bug.st/serial ему удовлетворяет.
type Port interface {
	io.ReadWriteCloser
}

// Config определяет параметры канала
type Config struct {
	Device        string           `json:"device"`
	BaudRate      int              `json:"baudRate"`
	ReadTimeout   time.Duration    `json:"readTimeout"`
	PollInterval  time.Duration    `json:"pollInterval"`
	BufferSize    int              `json:"bufferSize"`
	MaxLineLength int              `json:"maxLineLength"`
	Logger        func(msg string) `json:"-"`
}

func (c Config) withDefaults() Config {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.MaxLineLength <= 0 {
		c.MaxLineLength = DefaultMaxLineLength
	}
	return c
}

// Channel владеет единственным дескриптором порта.
// Чтение (Run) и запись (Send) разделяют один мьютекс, который берётся
// на каждую попытку чтения и на каждый вызов записи.
type Channel struct {
	cfg       Config
	mu        sync.Mutex
	port      Port
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Open открывает порт в режиме 8N1 с заданной скоростью и таймаутом чтения
func Open(cfg Config) (*Channel, error) {
	cfg = cfg.withDefaults()
	if cfg.Device == "" {
		return nil, ErrNoDevice
	}
	if cfg.BaudRate < 0 {
		return nil, ErrInvalidBaud
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия порта %s: %w", cfg.Device, err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("ошибка установки таймаута чтения: %w", err)
	}

	ch := New(port, cfg)
	ch.logf("Порт %s открыт (%d бод, таймаут %s)", cfg.Device, cfg.BaudRate, cfg.ReadTimeout)
	return ch, nil
}

// New оборачивает уже открытый порт
func New(port Port, cfg Config) *Channel {
	return &Channel{
		cfg:  cfg.withDefaults(),
		port: port,
	}
}

// Device возвращает имя устройства
func (c *Channel) Device() string {
	return c.cfg.Device
}

// Send записывает все байты под блокировкой. Повторов нет.
func (c *Channel) Send(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return &IOError{Op: "write", Device: c.cfg.Device, Err: ErrPortClosed}
	}

	for rest := p; len(rest) > 0; {
		n, err := c.port.Write(rest)
		if err != nil {
			return &IOError{Op: "write", Device: c.cfg.Device, Err: err}
		}
		if n == 0 {
			return &IOError{Op: "write", Device: c.cfg.Device, Err: io.ErrShortWrite}
		}
		rest = rest[n:]
	}

	c.logf(">> TX: %q", p)
	return nil
}

// Run выполняет цикл приёма до отмены ctx или фатальной ошибки чтения.
// Каждая завершённая строка передаётся в onLine без удержания блокировки.
func (c *Channel) Run(ctx context.Context, onLine func(line string)) error {
	buf := make([]byte, c.cfg.BufferSize)
	lines := lineBuffer{max: c.cfg.MaxLineLength}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := c.readOnce(buf)
		switch {
		case err == nil:
		case isTimeout(err):
			n = 0
		case ctx.Err() != nil && isClosed(err):
			return ctx.Err()
		default:
			c.logf("Ошибка чтения порта %s: %v", c.cfg.Device, err)
			return &IOError{Op: "read", Device: c.cfg.Device, Err: err}
		}

		if n > 0 {
			for _, line := range lines.push(buf[:n]) {
				c.logf("<< RX: %s", line)
				onLine(line)
			}
			if lines.overflowed() {
				c.logf("Строка без перевода строки длиннее %d байт отброшена: %.40q", c.cfg.MaxLineLength, lines.pending())
				lines.reset()
			}
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(c.cfg.PollInterval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Start запускает Run в отдельной горутине. Канал получает результат Run и закрывается.
func (c *Channel) Start(ctx context.Context, onLine func(line string)) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- c.Run(ctx, onLine)
	}()
	return done
}

// readOnce выполняет одну ограниченную по времени попытку чтения под блокировкой
func (c *Channel) readOnce(buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return 0, ErrPortClosed
	}
	return c.port.Read(buf)
}

// Close закрывает порт без блокировки: ожидающее чтение прерывается.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.port.Close()
		c.logf("Порт %s закрыт", c.cfg.Device)
	})
	return c.closeErr
}

func (c *Channel) logf(format string, args ...interface{}) {
	if c.cfg.Logger != nil {
		c.cfg.Logger(fmt.Sprintf(format, args...))
	}
}

// ListPorts возвращает список доступных в системе последовательных портов
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
