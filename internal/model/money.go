package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount that travels as a bare JSON number.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) *Money { return &Money{Decimal: d} }

func ParseMoney(s string) (*Money, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return nil, err
	}
	return &Money{Decimal: d}, nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// Display renders the amount with a currency sign and two decimals.
func (m *Money) Display() string {
	if m == nil {
		return ""
	}
	return "$" + m.StringFixed(2)
}
