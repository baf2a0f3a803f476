package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a non-negative decimal kept in its textual form. It is stored
// as text and only parsed when a value is needed.
type Amount string

// maxExponent bounds the decimal exponent of an amount. Rendering 1e50000000
// writes fifty million digits.
const maxExponent = 32

// ParseAmount validates s and returns it in canonical form ("12.50" -> "12.5").
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: amount is required", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	if !inRange(d) {
		return "", fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return "", fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	return Amount(d.String()), nil
}

// Decimal parses the amount.
func (a Amount) Decimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(string(a))
	if err != nil || !inRange(d) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, string(a))
	}
	return d, nil
}

func inRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= -maxExponent && exp <= maxExponent
}

// Value parses the amount, treating unparseable text as zero.
func (a Amount) Value() decimal.Decimal {
	d, err := a.Decimal()
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Format renders the amount with two decimal places.
func (a Amount) Format() string {
	return a.Value().StringFixed(2)
}

// UnmarshalJSON accepts both the textual form and bare JSON numbers, which
// older data files contain.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, string(data))
	}
	*a = Amount(n.String())
	return nil
}
