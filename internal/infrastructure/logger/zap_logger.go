package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lavadero/internal/domain/ports"
)

// ZapLogger реализует интерфейс ports.Logger поверх zap.SugaredLogger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// Options параметры логгера
type Options struct {
	Level string // debug, info, warn, error
	JSON  bool   // JSON для службы, консольный формат для отладки
}

// New создает логгер с заданным уровнем и форматом.
func New(opts Options) (*ZapLogger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("неизвестный уровень логирования %q: %w", opts.Level, err)
		}
	}

	var cfg zap.Config
	if opts.JSON {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: z.Sugar()}, nil
}

// Wrap оборачивает существующий zap.Logger (например, zaptest в тестах)
func Wrap(z *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: z.Sugar()}
}

// Nop логгер без вывода
func Nop() *ZapLogger {
	return Wrap(zap.NewNop())
}

// Debug выводит отладочную информацию.
func (l *ZapLogger) Debug(msg string, args ...interface{}) {
	l.sugar.Debugf(msg, args...)
}

// Info выводит информационные сообщения.
func (l *ZapLogger) Info(msg string, args ...interface{}) {
	l.sugar.Infof(msg, args...)
}

// Warn выводит предупреждения.
func (l *ZapLogger) Warn(msg string, args ...interface{}) {
	l.sugar.Warnf(msg, args...)
}

// Error выводит ошибки.
func (l *ZapLogger) Error(msg string, args ...interface{}) {
	l.sugar.Errorf(msg, args...)
}

// Fatal выводит критические ошибки и завершает программу.
func (l *ZapLogger) Fatal(msg string, args ...interface{}) {
	l.sugar.Fatalf(msg, args...)
}

// Named возвращает дочерний логгер подсистемы.
func (l *ZapLogger) Named(name string) ports.Logger {
	return &ZapLogger{sugar: l.sugar.Named(name)}
}

// Sync сбрасывает буферы
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

// Sink превращает логгер в func(msg string) для пакетов pkg/*,
// которые принимают простой callback в Config.Logger.
func Sink(l ports.Logger) func(msg string) {
	return func(msg string) {
		l.Debug("%s", msg)
	}
}
