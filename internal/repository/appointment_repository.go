package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-scheduler/internal/model"
)

// AppointmentFilter — необязательные фильтры списка записей.
type AppointmentFilter struct {
	ClientID   *uuid.UUID
	ProviderID *uuid.UUID
	RoomID     *uuid.UUID
	Status     *model.AppointmentStatus
	// Записи, пересекающие [From, To).
	From *time.Time
	To   *time.Time
}

// AppointmentRepository — чтение и удаление записей. Создание и изменение
// идут только через допуск (calendar.Admitter).
type AppointmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	// Список записей по времени начала.
	List(ctx context.Context, filter AppointmentFilter, page PageRequest) (Page[model.Appointment], error)
	// Удалить запись и записать событие appointment_deleted.
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormAppointmentRepository struct {
	db *gorm.DB
}

func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

func (r *GormAppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var a model.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *GormAppointmentRepository) List(
	ctx context.Context,
	filter AppointmentFilter,
	page PageRequest,
) (Page[model.Appointment], error) {
	page = page.normalize()

	var (
		items []model.Appointment
		total int64
	)

	q := r.db.WithContext(ctx).Model(&model.Appointment{})
	if filter.ClientID != nil {
		q = q.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ProviderID != nil {
		q = q.Where("provider_id = ?", *filter.ProviderID)
	}
	if filter.RoomID != nil {
		q = q.Where("room_id = ?", *filter.RoomID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		q = q.Where("end_time > ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("start_time < ?", filter.To.UTC())
	}

	if err := q.Count(&total).Error; err != nil {
		return Page[model.Appointment]{}, translate(err)
	}
	if err := q.Order("start_time ASC").Limit(page.PageSize).Offset(page.offset()).Find(&items).Error; err != nil {
		return Page[model.Appointment]{}, translate(err)
	}
	return newPage(items, total, page), nil
}

func (r *GormAppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.Appointment
		if err := tx.First(&a, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Appointment{}, "id = ?", id).Error; err != nil {
			return err
		}

		details, err := json.Marshal(map[string]any{
			"client_id":   a.ClientID,
			"provider_id": a.ProviderID,
			"start_time":  a.StartTime,
			"end_time":    a.EndTime,
		})
		if err != nil {
			return err
		}
		return tx.Create(&model.Event{
			EventType:     model.EventTypeAppointmentDeleted,
			AppointmentID: id,
			Details:       datatypes.JSON(details),
		}).Error
	}))
}
