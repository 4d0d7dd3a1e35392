package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the only currency the storefront sells in.
const Currency = "EGP"

// MaxFractionDigits bounds the precision accepted for a price (piasters).
const MaxFractionDigits = 2

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAmountTooPrecise = errors.New("amount has more than two fractional digits")
)

// Money is a fixed-point amount in EGP.
type Money struct {
	amount decimal.Decimal
}

func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.Exponent() < -MaxFractionDigits && !d.Equal(d.Round(MaxFractionDigits)) {
		return Money{}, ErrAmountTooPrecise
	}
	return Money{amount: d.Round(MaxFractionDigits)}, nil
}

func MoneyFromInt(v int64) Money {
	return Money{amount: decimal.NewFromInt(v)}
}

func (m Money) Mul(quantity int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(quantity)))}
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// String renders whole amounts without a fractional part and everything
// else with exactly two digits.
func (m Money) String() string {
	if m.amount.IsInteger() {
		return m.amount.StringFixed(0)
	}
	return m.amount.StringFixed(MaxFractionDigits)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	parsed, err := ParseMoney(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
