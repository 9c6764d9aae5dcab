package kiosk

import "fmt"

// ParseError некорректный JSON или значения от оболочки киоска
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Error al parsear JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
