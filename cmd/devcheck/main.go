// devcheck проверяет устройства киоска без оболочки: порты, микроконтроллер,
// принтер и разбор вывода платёжного терминала.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"lavadero/internal/config"
	"lavadero/pkg/escpos"
	"lavadero/pkg/pinpad"
	"lavadero/pkg/serialline"
	"lavadero/pkg/spooler"
)

func main() {
	configPath := flag.String("config", "kiosk.json", "путь к JSON файлу конфигурации")
	send := flag.String("send", "", "отправить строку микроконтроллеру и слушать ответ")
	listen := flag.Duration("listen", 5*time.Second, "сколько слушать порт после -send")
	printTest := flag.Bool("print", false, "напечатать тестовый чек")
	parse := flag.String("parse", "", "классифицировать сохранённый вывод терминала из файла")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Fatal: %v", err)
	}

	// Вспомогательная функция для вывода
	printSection := func(name string, data interface{}, err error) {
		fmt.Printf("\n--- [%s] ---\n", name)
		if err != nil {
			fmt.Printf("ОШИБКА: %v\n", err)
			return
		}
		switch v := data.(type) {
		case string, int, bool:
			fmt.Printf("Результат: %v\n", v)
		default:
			b, _ := json.MarshalIndent(data, "", "  ")
			fmt.Println(string(b))
		}
	}

	// 1. Порты
	portsList, err := serialline.ListPorts()
	printSection("Порты", portsList, err)

	// 2. Микроконтроллер
	if *send != "" {
		lines, err := exchange(cfg, *send, *listen)
		printSection("Ответ микроконтроллера", lines, err)
	}

	// 3. Принтер
	if *printTest {
		err := printTestTicket(cfg)
		printSection("Тестовый чек", cfg.Printer.Name, err)
	}

	// 4. Разбор вывода терминала
	if *parse != "" {
		data, err := os.ReadFile(*parse)
		if err != nil {
			printSection("Вывод терминала", nil, err)
		} else {
			printSection("Вывод терминала", pinpad.Classify(string(data)), nil)
		}
	}
}

func exchange(cfg config.Config, text string, listen time.Duration) ([]string, error) {
	ch, err := serialline.Open(serialline.Config{
		Device:       cfg.Serial.Port,
		BaudRate:     cfg.Serial.BaudRate,
		ReadTimeout:  cfg.Serial.ReadTimeout(),
		PollInterval: cfg.Serial.PollInterval(),
		Logger:       func(msg string) { log.Printf("[serial] %s", msg) },
	})
	if err != nil {
		return nil, err
	}
	defer ch.Close()

	ctx, cancel := context.WithTimeout(context.Background(), listen)
	defer cancel()

	var lines []string
	done := ch.Start(ctx, func(line string) { lines = append(lines, line) })
	if err := ch.Send([]byte(text)); err != nil {
		return nil, err
	}
	if err := <-done; err != nil && ctx.Err() == nil {
		return lines, err
	}
	return lines, nil
}

func printTestTicket(cfg config.Config) error {
	enc, err := escpos.NewEncoder(escpos.Options{CodePage: cfg.Printer.CodePage})
	if err != nil {
		return err
	}
	doc := enc.Encode(escpos.Invoice{
		Number: "0000",
		Card:   "TEST",
		Auth:   "000000",
		Name:   "Prueba de impresora",
		Amount: 0,
	})
	t := spooler.NewTransmitter(spooler.Default(), spooler.Options{
		DocumentName: cfg.Printer.DocumentName,
		Logger:       func(msg string) { log.Printf("[printer] %s", msg) },
	})
	return t.Transmit(doc.Bytes(), cfg.Printer.Name)
}
