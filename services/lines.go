package services

import (
	"errors"
	"fmt"
	"strings"

	"jobsbreeze-backend/calculator"
	"jobsbreeze-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LineItemInput is one billable row as submitted by the dashboard. When ItemID points
// at a catalog item, a blank description and a missing unit price are taken from it.
type LineItemInput struct {
	ItemID      *uuid.UUID `json:"itemId"`
	Description string     `json:"description"`
	Quantity    float64    `json:"quantity"`
	UnitPrice   *float64   `json:"unitPrice"`
}

// LineItemPatch edits a single stored line.
type LineItemPatch struct {
	Description *string  `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unitPrice"`
}

func (p LineItemPatch) apply(l calculator.Line) calculator.Line {
	if p.Description != nil {
		l.Description = strings.TrimSpace(*p.Description)
	}
	if p.Quantity != nil {
		l.Quantity = *p.Quantity
	}
	if p.UnitPrice != nil {
		l.UnitPrice = *p.UnitPrice
	}
	return l.Recompute()
}

// buildLines validates the inputs and returns them with amounts computed.
func buildLines(db *gorm.DB, owner uuid.UUID, inputs []LineItemInput) ([]calculator.Line, error) {
	verr := &ValidationError{}
	lines := make([]calculator.Line, 0, len(inputs))

	for i, in := range inputs {
		line, err := buildLine(db, owner, in)
		if err != nil {
			if errors.Is(err, ErrItemNotFound) {
				return nil, fmt.Errorf("line %d: %w", i, err)
			}
			var fe *calculator.FieldError
			if !errors.As(err, &fe) {
				return nil, err
			}
			verr.addField(linePrefix(i), fe)
			continue
		}
		lines = append(lines, line)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return lines, nil
}

func buildLine(db *gorm.DB, owner uuid.UUID, in LineItemInput) (calculator.Line, error) {
	line := calculator.Line{
		Description: strings.TrimSpace(in.Description),
		Quantity:    in.Quantity,
	}
	if in.UnitPrice != nil {
		line.UnitPrice = *in.UnitPrice
	}

	if in.ItemID != nil {
		var item models.Item
		if err := db.Where("user_id = ? AND id = ?", owner, *in.ItemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return line, ErrItemNotFound
			}
			return line, err
		}
		if line.Description == "" {
			line.Description = item.Name
		}
		if in.UnitPrice == nil {
			line.UnitPrice = item.Price
		}
	}

	if err := validateLine(line); err != nil {
		return line, err
	}
	return line.Recompute(), nil
}

func validateLine(line calculator.Line) error {
	if line.Description == "" {
		return &calculator.FieldError{Field: "description", Message: "Description is required"}
	}
	return calculator.ValidateLine(line.Quantity, line.UnitPrice)
}

func toLineItems(estimateID uuid.UUID, lines []calculator.Line) []models.LineItem {
	items := make([]models.LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.LineItem{
			EstimateID:  estimateID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Amount:      l.Amount,
		})
	}
	return items
}

func toInvoiceItems(invoiceID uuid.UUID, lines []calculator.Line) []models.InvoiceItem {
	items := make([]models.InvoiceItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.InvoiceItem{
			InvoiceID:   invoiceID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Amount:      l.Amount,
		})
	}
	return items
}

func lineOf(l models.LineItem) calculator.Line {
	return calculator.Line{Description: l.Description, Quantity: l.Quantity, UnitPrice: l.UnitPrice, Amount: l.Amount}
}

// ownedClient loads a client that belongs to owner.
func ownedClient(db *gorm.DB, owner, clientID uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := db.Where("user_id = ? AND id = ?", owner, clientID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

// profileOf returns the owner's business profile, or a zero profile when none exists.
func profileOf(db *gorm.DB, owner uuid.UUID) (models.BusinessProfile, error) {
	var profile models.BusinessProfile
	err := db.Where("user_id = ?", owner).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return profile, err
	}
	return profile, nil
}
