package models

import (
	"time"

	"jobsbreeze-backend/calculator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Estimate struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`

	// Human readable identifier (#RR-YYYYMMDD). Never changes once stored.
	EstimateID string    `gorm:"uniqueIndex;not null" json:"estimateId"`
	ClientID   uuid.UUID `gorm:"type:uuid;index;not null" json:"clientId"`
	Client     *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	Status  string `gorm:"type:varchar(20);not null" json:"status"`
	IsDraft bool   `gorm:"not null" json:"isDraft"`

	TaxRate  float64 `gorm:"not null" json:"taxRate"`
	Subtotal float64 `gorm:"not null" json:"subtotal"`
	Tax      float64 `gorm:"not null" json:"tax"`
	Amount   float64 `gorm:"not null" json:"amount"`

	Date       time.Time  `gorm:"not null" json:"date"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
	Notes      string     `gorm:"type:text" json:"notes"`
	Terms      string     `gorm:"type:text" json:"terms"`

	// Set once the estimate has been turned into an invoice.
	InvoiceID *uuid.UUID `gorm:"type:uuid" json:"invoiceId,omitempty"`

	LineItems []LineItem `gorm:"foreignKey:EstimateID" json:"lineItems"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (e *Estimate) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}

// Recalculate refreshes every line amount and the estimate totals.
func (e *Estimate) Recalculate() {
	for i := range e.LineItems {
		e.LineItems[i].Amount = calculator.LineItemAmount(e.LineItems[i].Quantity, e.LineItems[i].UnitPrice)
	}
	t := calculator.ComputeTotals(e.LineItems, e.TaxRate)
	e.Subtotal = t.Subtotal
	e.Tax = t.Tax
	e.Amount = t.Total
}

// Totals returns the stored money summary.
func (e *Estimate) Totals() calculator.Totals {
	return calculator.Totals{Subtotal: e.Subtotal, Tax: e.Tax, Total: e.Amount}
}

type LineItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EstimateID  uuid.UUID `gorm:"type:uuid;index;not null" json:"estimateId"`
	Description string    `gorm:"not null" json:"description"`
	Quantity    float64   `gorm:"not null" json:"quantity"`
	UnitPrice   float64   `gorm:"not null" json:"unitPrice"`
	Amount      float64   `gorm:"not null" json:"amount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (l *LineItem) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}

func (l LineItem) LineAmount() float64 { return l.Amount }
