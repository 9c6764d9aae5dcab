package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"lavadero/internal/app"
	"lavadero/internal/config"
	"lavadero/internal/infrastructure/logger"
)

func main() {
	configPath := flag.String("config", "kiosk.json", "путь к JSON файлу конфигурации")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(logger.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// без порта микроконтроллера киоск не работает
	a, err := app.New(cfg, zl, app.Devices{})
	if err != nil {
		zl.Fatal("Failed to start kiosk: %v", err)
	}

	if err := a.Run(ctx); err != nil {
		zl.Fatal("Kiosk stopped with error: %v", err)
	}
}
