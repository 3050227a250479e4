package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Client struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_owner_email,priority:1" json:"userId"`

	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"not null;uniqueIndex:idx_owner_email,priority:2" json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `gorm:"type:text" json:"notes"`

	Estimates []Estimate `gorm:"foreignKey:ClientID" json:"estimates,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
