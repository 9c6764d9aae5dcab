// Package escpos формирует чеки для термопринтеров в протоколе ESC/POS.
package escpos

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout формат даты на чеке (DD/MM/YYYY HH:MM:SS)
const DateLayout = "02/01/2006 15:04:05"

var ErrUnknownCodePage = errors.New("escpos: unknown code page")

// Invoice данные одного чека. Значения вставляются в документ как есть,
// вызывающий код отвечает за отсутствие управляющих байтов.
type Invoice struct {
	Number string  `json:"numero"`
	Card   string  `json:"card"`
	Auth   string  `json:"auth"`
	Name   string  `json:"nombre"`
	Amount float64 `json:"monto"`
}

// Validate проверяет сумму
func (inv Invoice) Validate() error {
	if math.IsNaN(inv.Amount) || math.IsInf(inv.Amount, 0) {
		return errors.New("monto no es un número válido")
	}
	if inv.Amount < 0 {
		return errors.New("monto no puede ser negativo")
	}
	return nil
}

// Document готовая последовательность байтов для принтера
type Document struct {
	data []byte
}

// Bytes возвращает копию содержимого
func (d Document) Bytes() []byte {
	out := make([]byte, len(d.data))
	copy(out, d.data)
	return out
}

// Len длина документа в байтах
func (d Document) Len() int {
	return len(d.data)
}

// Layout постоянные части чека
type Layout struct {
	Titles    []string
	Separator string
	Footer    []string
}

// DefaultLayout оформление чека автомойки
func DefaultLayout() Layout {
	return Layout{
		Titles:    []string{"FACTURA", "AUTOLAVAGGIO"},
		Separator: "-----------------------------",
		Footer: []string{
			"Este documento no tiene ninguna validez tributaria. Su factura electronica llegara a su correo electronico.",
			"Gracias por su compra!",
		},
	}
}

// Options параметры кодировщика
type Options struct {
	// CodePage таблица символов принтера; пусто: текст уходит в UTF-8 без перекодировки
	CodePage string
	Layout   *Layout
	Clock    func() time.Time
}

// Encoder формирует Document из Invoice
type Encoder struct {
	layout   Layout
	codePage *codePage
	clock    func() time.Time
}

// NewEncoder создаёт кодировщик
func NewEncoder(opts Options) (*Encoder, error) {
	cp, err := lookupCodePage(opts.CodePage)
	if err != nil {
		return nil, err
	}
	layout := DefaultLayout()
	if opts.Layout != nil {
		layout = *opts.Layout
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Encoder{layout: layout, codePage: cp, clock: clock}, nil
}

// Encode строит чек. Начинается с CmdReset и заканчивается CmdFullCut.
func (e *Encoder) Encode(inv Invoice) Document {
	var b strings.Builder

	b.WriteString(CmdReset)
	if e.codePage != nil {
		b.WriteString(selectCodePage(e.codePage.table))
	}
	b.WriteString(CmdAlignCenter)
	b.WriteString(CmdDoubleSize)
	for _, title := range e.layout.Titles {
		b.WriteString(title)
		b.WriteByte('\n')
	}
	b.WriteString(CmdNormalSize)
	b.WriteByte('\n')

	b.WriteString(CmdAlignLeft)
	fmt.Fprintf(&b, "Cliente: %s\n", inv.Number)
	fmt.Fprintf(&b, "Producto: %s\n", inv.Name)
	fmt.Fprintf(&b, "Precio: %s\n", FormatPrice(inv.Amount))
	fmt.Fprintf(&b, "card: %s\n", inv.Card)
	fmt.Fprintf(&b, "Autorización: %s\n", inv.Auth)
	fmt.Fprintf(&b, "Fecha: %s\n", e.clock().Format(DateLayout))
	b.WriteString("\n\n")

	b.WriteString(CmdNormalSize)
	b.WriteString(e.layout.Separator)
	b.WriteByte('\n')
	for _, line := range e.layout.Footer {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	body := b.String()
	var data []byte
	if e.codePage != nil {
		data = e.codePage.encode(body)
	} else {
		data = []byte(body)
	}
	data = append(data, CmdFullCut...)
	return Document{data: data}
}

// FormatPrice форматирует сумму с двумя знаками после точки: 1.5 -> "$1.50"
func FormatPrice(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
