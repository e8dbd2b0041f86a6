package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Статус записи. Набор открытый: неизвестные значения сохраняются как есть,
// особый смысл для проверки пересечений имеет только canceled.
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCanceled  AppointmentStatus = "canceled"
)

// Active сообщает, участвует ли запись в проверке двойного бронирования.
// Сравнение точное, с учётом регистра.
func (s AppointmentStatus) Active() bool {
	return s != AppointmentStatusCanceled
}

// Приоритет записи.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Числовые коды приоритета, как их принимал старый API (0..2).
var priorityCodes = []Priority{PriorityNormal, PriorityHigh, PriorityUrgent}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// UnmarshalJSON принимает как строку ("high"), так и числовой код (1).
// Неизвестная строка не отвергается здесь: её валидирует допуск записи.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = Priority(s)
		return nil
	}
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return fmt.Errorf("priority must be a string or an integer code: %w", err)
	}
	if code < 0 || code >= len(priorityCodes) {
		return fmt.Errorf("priority code %d out of range 0..%d", code, len(priorityCodes)-1)
	}
	*p = priorityCodes[code]
	return nil
}

// appointments
type Appointment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ClientID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	ProviderID uuid.UUID  `gorm:"type:uuid;not null;index" json:"provider_id"`
	RoomID     *uuid.UUID `gorm:"type:uuid;index" json:"room_id"`

	// Полуоткрытый интервал [StartTime, EndTime).
	StartTime time.Time `gorm:"not null;index" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	AppointmentType *string `gorm:"type:varchar(255)" json:"appointment_type"`

	Priority Priority          `gorm:"type:varchar(16);not null;default:'normal'" json:"priority"`
	Status   AppointmentStatus `gorm:"type:varchar(32);not null;default:'scheduled';index" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	// Навигационные поля. Удаление клиента или провайдера удаляет его записи,
	// удаление комнаты только обнуляет ссылку.
	Client   *Client   `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Provider *Provider `gorm:"foreignKey:ProviderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Room     *Room     `gorm:"foreignKey:RoomID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}

func (a *Appointment) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *Appointment) EntityID() uuid.UUID { return a.ID }
