package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BusinessProfile carries the issuing company details printed on estimates and invoices.
type BusinessProfile struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	Name    string    `gorm:"not null" json:"name"`
	Address string    `json:"address"`
	Phone   string    `json:"phone"`
	Email   string    `json:"email"`

	DefaultTaxRate float64 `gorm:"default:0" json:"defaultTaxRate"`
	DefaultTerms   string  `gorm:"type:text" json:"defaultTerms"`
	// Days an estimate stays valid when no expiry date is given. Zero means no expiry.
	EstimateValidityDays int `json:"estimateValidityDays"`

	// Logo, colors and footer text used by the dashboard when rendering documents.
	Branding datatypes.JSONMap `json:"branding"`

	SMSNotifications bool `json:"smsNotifications"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *BusinessProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Branding == nil {
		p.Branding = datatypes.JSONMap{}
	}
	return
}
