package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// rooms
type Room struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name string `gorm:"type:varchar(255);not null;index" json:"name"`

	// Вместимость хранится, но в проверке пересечений не участвует.
	Capacity int `gorm:"not null;default:1" json:"capacity"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (r *Room) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Capacity == 0 {
		r.Capacity = 1
	}
	return nil
}

func (r *Room) EntityID() uuid.UUID { return r.ID }
