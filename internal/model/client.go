package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// clients
type Client struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	FirstName string `gorm:"type:varchar(255);not null" json:"first_name"`
	LastName  string `gorm:"type:varchar(255);not null;index" json:"last_name"`

	// Контакты необязательны.
	Email *string `gorm:"type:varchar(255)" json:"email"`
	Phone *string `gorm:"type:varchar(32)" json:"phone"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (c *Client) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Client) EntityID() uuid.UUID { return c.ID }
