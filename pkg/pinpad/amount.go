package pinpad

import (
	"errors"
	"fmt"
	"math"
)

// AmountCodeWidth ширина кода суммы (в центах, с ведущими нулями)
const AmountCodeWidth = 12

const maxAmountCents = 999999999999

var ErrInvalidAmount = errors.New("pinpad: invalid amount")

// AmountCode кодирует сумму для терминала: 1.00 -> "000000000100"
func AmountCode(amount float64) (string, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return "", fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	cents := math.Round(amount * 100)
	if cents > maxAmountCents {
		return "", fmt.Errorf("%w: %v exceeds %d digits", ErrInvalidAmount, amount, AmountCodeWidth)
	}
	return fmt.Sprintf("%0*d", AmountCodeWidth, int64(cents)), nil
}
