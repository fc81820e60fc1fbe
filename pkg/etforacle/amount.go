package etforacle

import (
	"database/sql/driver"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Amount wraps decimal.Decimal for index levels and point changes.
// It is stored as TEXT so seed values round-trip exactly, and marshals
// to JSON as a number.
type Amount struct {
	decimal.Decimal
}

// MarshalJSON outputs a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}

// UnmarshalYAML accepts seed values such as "5,026.61" or "+25.30".
func (a *Amount) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return NewError(ErrCodeInvalidInput, "amount must be a scalar")
	}
	parsed, err := ParseAmount(value.Value)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src any) error {
	if src == nil {
		a.Decimal = decimal.Zero
		return nil
	}
	switch v := src.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return err
		}
		a.Decimal = d
		return nil
	case float64:
		a.Decimal = decimal.NewFromFloat(v)
		return nil
	case int64:
		a.Decimal = decimal.NewFromInt(v)
		return nil
	}
	return a.Decimal.Scan(src)
}

// Value implements driver.Valuer for database writes.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// ParseAmount parses display-formatted numbers, dropping thousands
// separators, a leading plus sign and a trailing percent sign.
func ParseAmount(raw string) (Amount, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimPrefix(cleaned, "+")
	cleaned = strings.TrimSuffix(cleaned, "%")
	if cleaned == "" {
		return Amount{decimal.Zero}, nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Amount{}, WrapError(ErrCodeInvalidInput, "invalid amount "+raw, err)
	}
	return Amount{d}, nil
}

// MustAmount parses s and panics on malformed input. Only for literals.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Signed formats the amount with an explicit sign and fixed places,
// e.g. "+25.30" or "-12.45".
func (a Amount) Signed(places int32) string {
	s := a.StringFixed(places)
	if a.IsPositive() {
		return "+" + s
	}
	return s
}
