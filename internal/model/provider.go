package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Provider — специалист, к которому записываются клиенты (врач, мастер и т.п.).
type Provider struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// Имя/отображаемое название в интерфейсе.
	Name string `gorm:"type:varchar(255);not null;index" json:"name"`

	// Специализация, необязательное поле.
	Specialization *string `gorm:"type:varchar(255)" json:"specialization"`

	// Цвет для отображения в календаре, например "#34d399".
	Color *string `gorm:"type:varchar(32)" json:"color"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (p *Provider) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Provider) EntityID() uuid.UUID { return p.ID }
