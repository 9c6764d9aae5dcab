// Package app собирает киоск из конфигурации: устройства, сервисы, события и API.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"lavadero/internal/api"
	"lavadero/internal/config"
	"lavadero/internal/domain/ports"
	"lavadero/internal/events"
	"lavadero/internal/infrastructure/logger"
	"lavadero/internal/infrastructure/storage"
	"lavadero/internal/service/kiosk"
	"lavadero/pkg/escpos"
	"lavadero/pkg/pinpad"
	"lavadero/pkg/serialline"
	"lavadero/pkg/spooler"
)

const (
	identityFile    = "device.json"
	shutdownTimeout = 5 * time.Second
)

// Devices позволяет подменить устройства; пустые поля создаются из конфигурации
type Devices struct {
	Line    ports.SerialLine
	Spooler spooler.Spooler
	Runner  pinpad.Runner
}

// App контекст процесса киоска, создаётся один раз при старте
type App struct {
	Config   config.Config
	Logger   ports.Logger
	DeviceID string

	Events   *events.Hub
	Serial   *kiosk.SerialService
	Tickets  *kiosk.PrintService
	Payments *kiosk.PaymentService
	Router   http.Handler

	line ports.SerialLine
}

// New создаёт приложение. Ошибка открытия порта возвращается вызывающему,
// который считает её фатальной.
func New(cfg config.Config, log ports.Logger, dev Devices) (*App, error) {
	identity, created, err := storage.LoadOrCreate(
		storage.NewFileIdentityRepository(filepath.Join(cfg.DataDir, identityFile)))
	if err != nil {
		return nil, fmt.Errorf("идентификатор устройства: %w", err)
	}
	if created {
		log.Info("создан идентификатор устройства %s", identity.ID)
	}

	line := dev.Line
	if line == nil {
		ch, err := serialline.Open(serialline.Config{
			Device:       cfg.Serial.Port,
			BaudRate:     cfg.Serial.BaudRate,
			ReadTimeout:  cfg.Serial.ReadTimeout(),
			PollInterval: cfg.Serial.PollInterval(),
			Logger:       logger.Sink(log.Named("serial")),
		})
		if err != nil {
			return nil, err
		}
		line = ch
	}

	encoder, err := escpos.NewEncoder(escpos.Options{CodePage: cfg.Printer.CodePage})
	if err != nil {
		closeLine(line)
		return nil, fmt.Errorf("принтер: %w", err)
	}
	sp := dev.Spooler
	if sp == nil {
		sp = spooler.Default()
	}
	transmitter := spooler.NewTransmitter(sp, spooler.Options{
		DocumentName: cfg.Printer.DocumentName,
		Logger:       logger.Sink(log.Named("printer")),
	})

	adapter := pinpad.NewAdapter(pinpad.Config{
		Executable:    cfg.Terminal.Executable,
		Args:          cfg.Terminal.Args,
		OutputCharset: cfg.Terminal.OutputCharset,
		Logger:        logger.Sink(log.Named("pinpad")),
	}, dev.Runner)

	hub := events.NewHub(log.Named("events"), cfg.AllowedOrigins.Allow)

	a := &App{
		Config:   cfg,
		Logger:   log,
		DeviceID: identity.ID,
		Events:   hub,
		Serial:   kiosk.NewSerialService(line, hub, log.Named("serial")),
		Tickets:  kiosk.NewPrintService(encoder, transmitter, cfg.Printer.Name, log.Named("printer")),
		Payments: kiosk.NewPaymentService(adapter, hub, kiosk.PaymentConfig{
			Host:          cfg.Terminal.Host,
			DefaultAmount: cfg.Terminal.DefaultAmount,
		}, log.Named("payments")),
		line: line,
	}

	a.Router = api.NewRouter(&api.Handler{
		Serial:    a.Serial,
		Tickets:   a.Tickets,
		Payments:  a.Payments,
		DeviceID:  a.DeviceID,
		ListPorts: serialline.ListPorts,
		Logger:    log.Named("api"),
	}, hub, cfg.AllowedOrigins, log.Named("http"))

	return a, nil
}

// Run слушает cfg.HTTPAddr и работает до отмены ctx
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config.HTTPAddr)
	if err != nil {
		a.Close()
		return fmt.Errorf("listen %s: %w", a.Config.HTTPAddr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve запускает цикл приёма порта и API на ln. После отмены ctx
// останавливает сервер и закрывает порт.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	serialDone := a.Serial.Start(ctx)

	srv := &http.Server{Handler: a.Router, ReadHeaderTimeout: 10 * time.Second}
	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Serve(ln)
	}()
	a.Logger.Info("киоск %s: API на %s, порт %s", a.DeviceID, ln.Addr(), a.Config.Serial.Port)

	var runErr error
	for ctx.Err() == nil && runErr == nil {
		select {
		case <-ctx.Done():
		case err := <-serialDone:
			// цикл приёма остановлен навсегда, API продолжает работать
			if err != nil && ctx.Err() == nil {
				a.Logger.Error("приём с микроконтроллера остановлен: %v", err)
			}
			serialDone = nil
		case err := <-srvErr:
			if !errors.Is(err, http.ErrServerClosed) {
				runErr = err
			}
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.Events.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warn("остановка HTTP сервера: %v", err)
	}
	a.Close()
	a.Logger.Info("киоск остановлен")
	return runErr
}

// Close освобождает порт
func (a *App) Close() {
	closeLine(a.line)
}

func closeLine(line ports.SerialLine) {
	if c, ok := line.(io.Closer); ok {
		_ = c.Close()
	}
}
