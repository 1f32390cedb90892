package exporter

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NotAvailable is shown for absent values in the display rendering
const NotAvailable = "N/A"

var canadianEnglish = language.MustParse("en-CA")

// Formatter renders values for display in Canadian English
type Formatter struct {
	printer *message.Printer
}

// NewFormatter creates an en-CA formatter
func NewFormatter() *Formatter {
	return &Formatter{printer: message.NewPrinter(canadianEnglish)}
}

// Currency renders v as whole Canadian dollars, e.g. "$450,000"
func (f *Formatter) Currency(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	amount := *v
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "$" + f.printer.Sprint(number.Decimal(amount, number.MaxFractionDigits(0)))
}

// Integer renders v with digit grouping, e.g. "1,234"
func (f *Formatter) Integer(v *int64) string {
	if v == nil {
		return NotAvailable
	}
	return f.printer.Sprint(number.Decimal(*v))
}

// Decimal renders v with up to two fraction digits
func (f *Formatter) Decimal(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return f.printer.Sprint(number.Decimal(*v, number.MaxFractionDigits(2)))
}

// Percent appends a percent sign to the stored value, e.g. "98.5%"
func (f *Formatter) Percent(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + "%"
}

func rawFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func rawInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
