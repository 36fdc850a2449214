// Package currency converts canonical USD prices into display strings using a
// fixed exchange rate table. The table is static configuration; the only
// runtime state is each device's selected code, persisted elsewhere.
package currency

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Currency describes one supported display currency. Rate is units per USD.
type Currency struct {
	Code   string  `json:"code"`
	Symbol string  `json:"symbol"`
	Rate   float64 `json:"rate"`
	Label  string  `json:"label"`

	// ZeroDecimal currencies render with no fractional digits.
	ZeroDecimal bool `json:"zero_decimal"`

	// SpacedSymbol separates symbol and amount with a space (UGX style).
	SpacedSymbol bool `json:"-"`
}

// DefaultCode is used when a device has not selected a currency.
const DefaultCode = "UGX"

var table = map[string]Currency{
	"UGX": {Code: "UGX", Symbol: "UGX", Rate: 3850, Label: "Ugandan Shilling", ZeroDecimal: true, SpacedSymbol: true},
	"USD": {Code: "USD", Symbol: "$", Rate: 1, Label: "US Dollar"},
	"EUR": {Code: "EUR", Symbol: "€", Rate: 0.92, Label: "Euro"},
	"JPY": {Code: "JPY", Symbol: "¥", Rate: 150, Label: "Japanese Yen", ZeroDecimal: true},
}

// Lookup returns the currency for code, falling back to USD for unknown codes.
func Lookup(code string) Currency {
	if c, ok := table[strings.ToUpper(code)]; ok {
		return c
	}
	return table["USD"]
}

// Supported returns the configured currencies in a stable order.
func Supported() []Currency {
	return []Currency{table["UGX"], table["USD"], table["EUR"], table["JPY"]}
}

// Known reports whether code is in the table.
func Known(code string) bool {
	_, ok := table[strings.ToUpper(code)]
	return ok
}

// Convert applies the exchange rate to a USD price.
func (c Currency) Convert(priceUSD float64) float64 {
	return priceUSD * c.Rate
}

// Format renders a USD price in this currency: grouped digits, the currency's
// symbol, and no decimal places for zero-decimal currencies.
func (c Currency) Format(priceUSD float64) string {
	converted := c.Convert(priceUSD)
	if c.ZeroDecimal {
		amount := group(strconv.FormatInt(int64(math.Round(converted)), 10))
		if c.SpacedSymbol {
			return fmt.Sprintf("%s %s", c.Symbol, amount)
		}
		return c.Symbol + amount
	}
	whole := math.Floor(converted)
	cents := int(math.Round((converted - whole) * 100))
	if cents == 100 {
		whole++
		cents = 0
	}
	return fmt.Sprintf("%s%s.%02d", c.Symbol, group(strconv.FormatInt(int64(whole), 10)), cents)
}

// group inserts thousand separators into a decimal digit string.
func group(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	var b strings.Builder
	pre := len(digits) % 3
	if pre > 0 {
		b.WriteString(digits[:pre])
	}
	for i := pre; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
