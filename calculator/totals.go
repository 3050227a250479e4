// Package calculator holds the pricing rules shared by estimates and invoices:
// line amounts, subtotal/tax/total and the human readable estimate identifier.
package calculator

import (
	"fmt"
	"math"
)

// Amounted is anything that carries a precomputed line amount.
type Amounted interface {
	LineAmount() float64
}

// Line is the value shape of a single billable row.
type Line struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Amount      float64 `json:"amount"`
}

func (l Line) LineAmount() float64 { return l.Amount }

// Recompute returns a copy of the line with Amount derived from quantity and unit price.
func (l Line) Recompute() Line {
	l.Amount = LineItemAmount(l.Quantity, l.UnitPrice)
	return l
}

// Totals is the computed money summary of a set of lines.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// LineItemAmount returns quantity * unitPrice.
func LineItemAmount(quantity, unitPrice float64) float64 {
	return quantity * unitPrice
}

// ComputeTotals sums the line amounts and applies taxRate, a percentage (8.25 means 8.25%).
// Values keep full precision; rounding belongs to FormatMoney.
func ComputeTotals[L Amounted](lines []L, taxRate float64) Totals {
	var subtotal float64
	for _, l := range lines {
		subtotal += l.LineAmount()
	}
	tax := subtotal * taxRate / 100
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

// FieldError is a boundary validation failure tied to one input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateLine rejects quantities that are not strictly positive and negative unit prices.
func ValidateLine(quantity, unitPrice float64) error {
	if !isFinite(quantity) || quantity <= 0 {
		return &FieldError{Field: "quantity", Message: "Quantity must be greater than 0"}
	}
	if !isFinite(unitPrice) {
		return &FieldError{Field: "unitPrice", Message: "Unit price must be a number"}
	}
	if unitPrice < 0 {
		return &FieldError{Field: "unitPrice", Message: "Unit price cannot be negative"}
	}
	return nil
}

// ValidateTaxRate accepts any finite, non-negative percentage.
func ValidateTaxRate(rate float64) error {
	if !isFinite(rate) {
		return &FieldError{Field: "taxRate", Message: "Tax rate must be a number"}
	}
	if rate < 0 {
		return &FieldError{Field: "taxRate", Message: "Tax rate cannot be negative"}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
