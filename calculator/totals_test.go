package calculator

import (
	"errors"
	"math"
	"testing"
)

func TestLineItemAmount(t *testing.T) {
	tests := []struct {
		quantity, unitPrice, want float64
	}{
		{2, 50, 100},
		{1, 25, 25},
		{0, 10, 0},
		{3, 0, 0},
		{1.5, 19.99, 29.985},
	}
	for _, tt := range tests {
		if got := LineItemAmount(tt.quantity, tt.unitPrice); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("LineItemAmount(%v, %v) = %v, want %v", tt.quantity, tt.unitPrice, got, tt.want)
		}
	}
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name    string
		lines   []Line
		taxRate float64
		want    Totals
	}{
		{
			name: "two lines ten percent",
			lines: []Line{
				{Description: "Framing", Quantity: 2, UnitPrice: 50, Amount: 100},
				{Description: "Paint", Quantity: 1, UnitPrice: 25, Amount: 25},
			},
			taxRate: 10,
			want:    Totals{Subtotal: 125, Tax: 12.5, Total: 137.5},
		},
		{
			name:    "empty collection",
			lines:   nil,
			taxRate: 8.25,
			want:    Totals{},
		},
		{
			name:    "zero tax",
			lines:   []Line{{Quantity: 4, UnitPrice: 12.5, Amount: 50}},
			taxRate: 0,
			want:    Totals{Subtotal: 50, Tax: 0, Total: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.lines, tt.taxRate)
			if math.Abs(got.Subtotal-tt.want.Subtotal) > 1e-9 {
				t.Errorf("subtotal = %v, want %v", got.Subtotal, tt.want.Subtotal)
			}
			if math.Abs(got.Tax-tt.want.Tax) > 1e-9 {
				t.Errorf("tax = %v, want %v", got.Tax, tt.want.Tax)
			}
			if math.Abs(got.Total-tt.want.Total) > 1e-9 {
				t.Errorf("total = %v, want %v", got.Total, tt.want.Total)
			}
		})
	}
}

func TestComputeTotalsRelations(t *testing.T) {
	lines := []Line{
		{Quantity: 3, UnitPrice: 19.99}, {Quantity: 0.5, UnitPrice: 120}, {Quantity: 7, UnitPrice: 3.33},
	}
	var sum float64
	for i := range lines {
		lines[i] = lines[i].Recompute()
		sum += lines[i].Amount
	}

	for _, rate := range []float64{0, 5, 8.25, 13, 100} {
		got := ComputeTotals(lines, rate)
		if got.Subtotal != sum {
			t.Errorf("rate %v: subtotal = %v, want %v", rate, got.Subtotal, sum)
		}
		if math.Abs(got.Tax-got.Subtotal*rate/100) > 1e-9 {
			t.Errorf("rate %v: tax = %v, want %v", rate, got.Tax, got.Subtotal*rate/100)
		}
		if got.Total != got.Subtotal+got.Tax {
			t.Errorf("rate %v: total = %v, want %v", rate, got.Total, got.Subtotal+got.Tax)
		}
		if again := ComputeTotals(lines, rate); again != got {
			t.Errorf("rate %v: second call = %+v, first = %+v", rate, again, got)
		}
		if empty := ComputeTotals([]Line{}, rate); empty != (Totals{}) {
			t.Errorf("rate %v: empty totals = %+v", rate, empty)
		}
	}
}

func TestRecomputeAfterQuantityEdit(t *testing.T) {
	lines := []Line{
		Line{Description: "Labor", Quantity: 2, UnitPrice: 50}.Recompute(),
		Line{Description: "Nails", Quantity: 1, UnitPrice: 25}.Recompute(),
	}
	before := ComputeTotals(lines, 10)

	lines[0].Quantity = 3
	lines[0] = lines[0].Recompute()
	after := ComputeTotals(lines, 10)

	if lines[0].Amount != 150 {
		t.Fatalf("amount = %v, want 150", lines[0].Amount)
	}
	if after.Subtotal-before.Subtotal != 50 {
		t.Errorf("subtotal grew by %v, want 50", after.Subtotal-before.Subtotal)
	}

	lines[1].Description = "Screws"
	if lines[1].Recompute().Amount != 25 {
		t.Errorf("description edit changed amount")
	}
}

func TestValidateLine(t *testing.T) {
	tests := []struct {
		name      string
		quantity  float64
		unitPrice float64
		field     string
		message   string
	}{
		{"valid", 1, 0, "", ""},
		{"zero quantity", 0, 10, "quantity", "Quantity must be greater than 0"},
		{"negative quantity", -1, 10, "quantity", "Quantity must be greater than 0"},
		{"nan quantity", math.NaN(), 10, "quantity", "Quantity must be greater than 0"},
		{"negative price", 2, -0.01, "unitPrice", "Unit price cannot be negative"},
		{"infinite price", 2, math.Inf(1), "unitPrice", "Unit price must be a number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLine(tt.quantity, tt.unitPrice)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FieldError, got %v", err)
			}
			if fe.Field != tt.field || fe.Message != tt.message {
				t.Errorf("got %s/%q, want %s/%q", fe.Field, fe.Message, tt.field, tt.message)
			}
		})
	}
}

func TestValidateTaxRate(t *testing.T) {
	if err := ValidateTaxRate(8.25); err != nil {
		t.Errorf("8.25: unexpected error %v", err)
	}
	if err := ValidateTaxRate(-1); err == nil {
		t.Error("-1: expected error")
	}
	if err := ValidateTaxRate(math.NaN()); err == nil {
		t.Error("NaN: expected error")
	}
}
