package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Catalog item categories.
const (
	CategoryMaterials = "materials"
	CategoryLabor     = "labor"
	CategoryEquipment = "equipment"
	CategoryOther     = "other"
)

// Item is a reusable catalog entry. Line items may be prefilled from it but never
// reference it after creation.
type Item struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Category    string    `gorm:"type:varchar(20);not null;default:'other'" json:"category"`
	Price       float64   `gorm:"not null" json:"price"`
	Taxable     bool      `json:"taxable"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
