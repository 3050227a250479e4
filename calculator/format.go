package calculator

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	PaymentUnpaid  = "UNPAID"
	PaymentPartial = "PARTIAL"
	PaymentPaid    = "PAID"
)

// FormatMoney renders v rounded half-up to 2 decimals with thousands separators,
// e.g. 1234.5 -> "1,234.50".
func FormatMoney(v float64) string {
	rounded := decimal.NewFromFloat(v).Round(2)
	f, _ := rounded.Float64()
	return humanize.FormatFloat("#,###.##", f)
}

// RoundMoney rounds v half-up to 2 decimals.
func RoundMoney(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// PaymentStatus derives the invoice payment state from the amount paid so far.
// Comparison happens on cent-rounded values so 0.1+0.2 style drift does not leave an
// invoice PARTIAL.
func PaymentStatus(paid, total float64) string {
	p := decimal.NewFromFloat(paid).Round(2)
	t := decimal.NewFromFloat(total).Round(2)
	switch {
	case p.LessThanOrEqual(decimal.Zero):
		return PaymentUnpaid
	case p.GreaterThanOrEqual(t):
		return PaymentPaid
	default:
		return PaymentPartial
	}
}
