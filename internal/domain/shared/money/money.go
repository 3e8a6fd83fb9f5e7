package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"rentbook/internal/domain/shared/apperr"
)

var (
	ErrInvalidCurrency  = apperr.Validation("money: invalid currency code")
	ErrCurrencyMismatch = apperr.Validation("money: currency mismatch")
	ErrInvalidAmount    = apperr.Validation("money: invalid decimal amount")
	ErrAmountOverflow   = apperr.Validation("money: amount out of range")
)

// minorUnits is the number of fractional digits kept for every currency.
const minorUnits = 2

// Money keeps amounts in integer minor units to avoid floating point issues.
type Money struct {
	Amount   int64
	Currency string
}

// New constructs a Money value validating minimal invariants.
func New(amount int64, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	currency = strings.ToUpper(currency)
	return Money{Amount: amount, Currency: currency}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Parse reads a decimal string such as "900", "900.5" or "900.00".
// More than two fractional digits is rejected rather than rounded.
func Parse(raw, currency string) (Money, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Money{}, ErrInvalidAmount
	}
	negative := false
	if strings.HasPrefix(value, "-") {
		negative = true
		value = value[1:]
	}
	whole, frac, hasFrac := strings.Cut(value, ".")
	if !digitsOnly(whole) || (hasFrac && (!digitsOnly(frac) || len(frac) > minorUnits)) {
		return Money{}, ErrInvalidAmount
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return Money{}, ErrInvalidAmount
	}
	var cents int64
	if hasFrac {
		for len(frac) < minorUnits {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || cents < 0 {
			return Money{}, ErrInvalidAmount
		}
	}
	if units > (math.MaxInt64-cents)/100 {
		return Money{}, ErrAmountOverflow
	}
	amount := units*100 + cents
	if negative {
		amount = -amount
	}
	return New(amount, currency)
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MustParse is Parse that panics; used by fixtures and tests.
func MustParse(raw, currency string) Money {
	m, err := Parse(raw, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal renders the amount with two fractional digits.
func (m Money) Decimal() string {
	amount := m.Amount
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}

func (m Money) String() string {
	return m.Decimal() + " " + m.Currency
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	sum := m.Amount + other.Amount
	if (other.Amount > 0 && sum < m.Amount) || (other.Amount < 0 && sum > m.Amount) {
		return Money{}, ErrAmountOverflow
	}
	return Money{Amount: sum, Currency: m.Currency}, nil
}

// Sub subtracts other from the receiver.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	diff := m.Amount - other.Amount
	if (other.Amount > 0 && diff > m.Amount) || (other.Amount < 0 && diff < m.Amount) {
		return Money{}, ErrAmountOverflow
	}
	return Money{Amount: diff, Currency: m.Currency}, nil
}

// Multiply multiplies the amount by the provided factor, failing instead of
// wrapping around when the product leaves the int64 range.
func (m Money) Multiply(times int64) (Money, error) {
	if m.Amount == 0 || times == 0 {
		return Money{Amount: 0, Currency: m.Currency}, nil
	}
	product := m.Amount * times
	if product/times != m.Amount || (m.Amount == -1 && times == math.MinInt64) || (times == -1 && m.Amount == math.MinInt64) {
		return Money{}, ErrAmountOverflow
	}
	return Money{Amount: product, Currency: m.Currency}, nil
}

// Equal is exact: same minor-unit amount and same currency.
func (m Money) Equal(other Money) bool {
	return m.Amount == other.Amount && strings.EqualFold(m.Currency, other.Currency)
}

// IsZero returns true if the amount equals zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return Money{Amount: 0, Currency: strings.ToUpper(currency)}
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if !strings.EqualFold(m.Currency, other.Currency) {
		return ErrCurrencyMismatch
	}
	return nil
}
