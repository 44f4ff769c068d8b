package web

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders numbers and money for the configured locale.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

func NewFormatter(locale, currencyCode string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parsing locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("parsing currency %q: %w", currencyCode, err)
	}
	return &Formatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
	}, nil
}

// Price formats an amount with the currency symbol, e.g. "R$ 1.234,50".
func (f *Formatter) Price(amount decimal.Decimal) string {
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(amount.InexactFloat64())))
}

// Count formats an integer with the locale's grouping.
func (f *Formatter) Count(n any) string {
	return f.printer.Sprint(n)
}
