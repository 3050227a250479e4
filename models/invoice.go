package models

import (
	"time"

	"jobsbreeze-backend/calculator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Invoice struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`

	InvoiceNumber string     `gorm:"uniqueIndex;not null" json:"invoiceNumber"`
	ClientID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"clientId"`
	Client        *Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	EstimateID    *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"estimateId,omitempty"`
	InvoiceDate   time.Time  `gorm:"not null" json:"invoiceDate"`
	DueDate       *time.Time `json:"dueDate,omitempty"`

	TaxRate  float64 `gorm:"not null" json:"taxRate"`
	Subtotal float64 `gorm:"not null" json:"subtotal"`
	Tax      float64 `gorm:"not null" json:"tax"`
	Total    float64 `gorm:"not null" json:"total"`

	PaymentStatus string  `gorm:"type:varchar(20);not null" json:"paymentStatus"`
	PaidAmount    float64 `gorm:"not null" json:"paidAmount"`
	PaymentMethod string  `json:"paymentMethod"`
	Notes         string  `gorm:"type:text" json:"notes"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (inv *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	return
}

// Recalculate refreshes line amounts, totals and the payment status.
func (inv *Invoice) Recalculate() {
	for i := range inv.Items {
		inv.Items[i].Amount = calculator.LineItemAmount(inv.Items[i].Quantity, inv.Items[i].UnitPrice)
	}
	t := calculator.ComputeTotals(inv.Items, inv.TaxRate)
	inv.Subtotal = t.Subtotal
	inv.Tax = t.Tax
	inv.Total = t.Total
	inv.PaymentStatus = calculator.PaymentStatus(inv.PaidAmount, inv.Total)
}

type InvoiceItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID `gorm:"type:uuid;index;not null" json:"invoiceId"`
	Description string    `gorm:"not null" json:"description"`
	Quantity    float64   `gorm:"not null" json:"quantity"`
	UnitPrice   float64   `gorm:"not null" json:"unitPrice"`
	Amount      float64   `gorm:"not null" json:"amount"`
}

func (it *InvoiceItem) BeforeCreate(tx *gorm.DB) (err error) {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return
}

func (it InvoiceItem) LineAmount() float64 { return it.Amount }
