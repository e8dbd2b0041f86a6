package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Тип события аудита.
type EventType string

const (
	EventTypeAppointmentCreated EventType = "appointment_created"
	EventTypeAppointmentUpdated EventType = "appointment_updated"
	EventTypeAppointmentDeleted EventType = "appointment_deleted"
)

// events — события аудита по записям.
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	EventType EventType `gorm:"type:varchar(64);not null;index" json:"event_type"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`

	// Без внешнего ключа: событие удаления должно пережить саму запись.
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"appointment_id"`

	// Произвольные детали, например список изменённых полей.
	Details datatypes.JSON `json:"details"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
