package ports

// Logger определяет интерфейс для абстракции логирования.
// Реализация на zap находится в infrastructure/logger.
type Logger interface {
	// Debug выводит отладочную информацию
	Debug(msg string, args ...interface{})

	// Info выводит информационные сообщения
	Info(msg string, args ...interface{})

	// Warn выводит предупреждения
	Warn(msg string, args ...interface{})

	// Error выводит ошибки
	Error(msg string, args ...interface{})

	// Fatal выводит критические ошибки и завершает программу
	Fatal(msg string, args ...interface{})

	// Named возвращает логгер подсистемы (serial, printer, pinpad...)
	Named(name string) Logger
}
