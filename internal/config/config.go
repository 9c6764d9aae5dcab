package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SerialConfig параметры порта микроконтроллера
type SerialConfig struct {
	Port           string `json:"port"`
	BaudRate       int    `json:"baudRate"`
	ReadTimeoutMs  int    `json:"readTimeoutMs"`
	PollIntervalMs int    `json:"pollIntervalMs"`
}

func (s SerialConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutMs) * time.Millisecond
}

func (s SerialConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMs) * time.Millisecond
}

// PrinterConfig параметры чекового принтера
type PrinterConfig struct {
	Name         string `json:"name"`
	DocumentName string `json:"documentName"`
	CodePage     string `json:"codePage,omitempty"`
}

// TerminalConfig параметры консольного приложения платёжного терминала
type TerminalConfig struct {
	Executable    string   `json:"executable"`
	Args          []string `json:"args"`
	Host          string   `json:"host"`
	OutputCharset string   `json:"outputCharset,omitempty"`
	DefaultAmount float64  `json:"defaultAmount"`
}

// Origins разрешённые Origin оболочки. Шаблон может содержать один '*':
// "http://localhost:*" разрешает любой порт.
type Origins []string

// Allow проверяет заголовок Origin. Пустой Origin (не браузер) разрешён.
func (o Origins) Allow(origin string) bool {
	if origin == "" {
		return true
	}
	for _, pattern := range o {
		prefix, suffix, wildcard := strings.Cut(pattern, "*")
		if !wildcard {
			if strings.EqualFold(origin, pattern) {
				return true
			}
			continue
		}
		if len(origin) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}

// Config конфигурация киоска
type Config struct {
	Serial         SerialConfig   `json:"serial"`
	Printer        PrinterConfig  `json:"printer"`
	Terminal       TerminalConfig `json:"terminal"`
	HTTPAddr       string         `json:"httpAddr"`
	AllowedOrigins Origins        `json:"allowedOrigins"`
	DataDir        string         `json:"dataDir"`
	LogLevel       string         `json:"logLevel"`
	LogJSON        bool           `json:"logJson"`
}

// Default значения по умолчанию для киоска автомойки
func Default() Config {
	return Config{
		Serial: SerialConfig{
			Port:           "COM7",
			BaudRate:       9600,
			ReadTimeoutMs:  2000,
			PollIntervalMs: 100,
		},
		Printer: PrinterConfig{
			Name:         "POS-80",
			DocumentName: "Ticket de Compra",
		},
		Terminal: TerminalConfig{
			Executable:    "dotnet",
			Args:          []string{"run", "--project", "DatafastConnection/DatafastConnection.csproj", "pago"},
			Host:          "192.168.0.105",
			DefaultAmount: 1.00,
		},
		HTTPAddr: "127.0.0.1:8787",
		AllowedOrigins: Origins{
			"tauri://localhost",
			"http://tauri.localhost",
			"http://localhost:*",
			"http://127.0.0.1:*",
		},
		DataDir:  "data",
		LogLevel: "info",
	}
}

// Load собирает конфигурацию: значения по умолчанию, затем JSON-файл
// (если есть), затем .env и переменные окружения KIOSK_*.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("ошибка разбора JSON файла конфигурации %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return cfg, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
	}

	// .env необязателен
	_ = godotenv.Load()

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate проверяет обязательные параметры
func (c Config) Validate() error {
	var errs []error
	if c.Serial.Port == "" {
		errs = append(errs, errors.New("serial.port is empty"))
	}
	if c.Serial.BaudRate <= 0 {
		errs = append(errs, errors.New("serial.baudRate must be positive"))
	}
	if c.Serial.ReadTimeoutMs <= 0 {
		errs = append(errs, errors.New("serial.readTimeoutMs must be positive"))
	}
	if c.Serial.PollIntervalMs <= 0 {
		errs = append(errs, errors.New("serial.pollIntervalMs must be positive"))
	}
	if c.Printer.Name == "" {
		errs = append(errs, errors.New("printer.name is empty"))
	}
	if c.Terminal.Executable == "" {
		errs = append(errs, errors.New("terminal.executable is empty"))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("httpAddr is empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("некорректная конфигурация: %w", errors.Join(errs...))
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Serial.Port = getEnv("KIOSK_SERIAL_PORT", cfg.Serial.Port)
	cfg.Printer.Name = getEnv("KIOSK_PRINTER_NAME", cfg.Printer.Name)
	cfg.Printer.CodePage = getEnv("KIOSK_PRINTER_CODEPAGE", cfg.Printer.CodePage)
	cfg.Terminal.Executable = getEnv("KIOSK_TERMINAL_EXE", cfg.Terminal.Executable)
	cfg.Terminal.Host = getEnv("KIOSK_TERMINAL_HOST", cfg.Terminal.Host)
	cfg.Terminal.OutputCharset = getEnv("KIOSK_TERMINAL_CHARSET", cfg.Terminal.OutputCharset)
	cfg.HTTPAddr = getEnv("KIOSK_HTTP_ADDR", cfg.HTTPAddr)
	cfg.DataDir = getEnv("KIOSK_DATA_DIR", cfg.DataDir)
	cfg.LogLevel = getEnv("KIOSK_LOG_LEVEL", cfg.LogLevel)

	if v := os.Getenv("KIOSK_TERMINAL_ARGS"); v != "" {
		cfg.Terminal.Args = strings.Fields(v)
	}
	if v := os.Getenv("KIOSK_HTTP_ORIGINS"); v != "" {
		var origins Origins
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.AllowedOrigins = origins
	}

	var err error
	if cfg.Serial.BaudRate, err = getEnvInt("KIOSK_SERIAL_BAUD", cfg.Serial.BaudRate); err != nil {
		return err
	}
	if cfg.Serial.ReadTimeoutMs, err = getEnvInt("KIOSK_SERIAL_TIMEOUT", cfg.Serial.ReadTimeoutMs); err != nil {
		return err
	}
	if v := os.Getenv("KIOSK_LOG_JSON"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("KIOSK_LOG_JSON: %w", err)
		}
		cfg.LogJSON = b
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
