package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/booking-scheduler/internal/calendar"
	"github.com/Leganyst/booking-scheduler/internal/model"
)

// StoreObserver получает длительность и результат каждого обращения к базе.
type StoreObserver interface {
	ObserveStoreCall(op string, elapsed time.Duration, err error)
}

// GormStore реализует calendar.Store поверх GORM.
type GormStore struct {
	db           *gorm.DB
	timeout      time.Duration
	serializable bool
	inTx         bool
	observer     StoreObserver
}

var _ calendar.Store = (*GormStore)(nil)

type StoreOption func(*GormStore)

// WithStoreTimeout ограничивает каждое обращение к базе.
func WithStoreTimeout(d time.Duration) StoreOption {
	return func(s *GormStore) { s.timeout = d }
}

// WithSerializable включает SERIALIZABLE для транзакций допуска.
// На sqlite игнорируется: там запись и так единственная.
func WithSerializable(on bool) StoreOption {
	return func(s *GormStore) { s.serializable = on }
}

func WithStoreObserver(o StoreObserver) StoreOption {
	return func(s *GormStore) { s.observer = o }
}

func NewGormStore(db *gorm.DB, opts ...StoreOption) *GormStore {
	s := &GormStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// call выполняет fn с таймаутом и отчитывается наблюдателю.
func (s *GormStore) call(ctx context.Context, op string, fn func(db *gorm.DB) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	err := translate(fn(s.db.WithContext(ctx)))
	if s.observer != nil {
		s.observer.ObserveStoreCall(op, time.Since(started), err)
	}
	return err
}

func (s *GormStore) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var c model.Client
	if err := s.call(ctx, "get_client", func(db *gorm.DB) error {
		return db.First(&c, "id = ?", id).Error
	}); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	var p model.Provider
	if err := s.call(ctx, "get_provider", func(db *gorm.DB) error {
		return db.First(&p, "id = ?", id).Error
	}); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) GetRoom(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var rm model.Room
	if err := s.call(ctx, "get_room", func(db *gorm.DB) error {
		return db.First(&rm, "id = ?", id).Error
	}); err != nil {
		return nil, err
	}
	return &rm, nil
}

func (s *GormStore) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var a model.Appointment
	if err := s.call(ctx, "get_appointment", func(db *gorm.DB) error {
		return db.First(&a, "id = ?", id).Error
	}); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAppointmentsByParty сужает выборку окном: записи, которые кончаются
// до начала окна или начинаются после его конца, пересечься не могут.
func (s *GormStore) ListAppointmentsByParty(
	ctx context.Context,
	party calendar.Party,
	partyID uuid.UUID,
	window calendar.TimeRange,
) ([]model.Appointment, error) {
	column, err := partyColumn(party)
	if err != nil {
		return nil, err
	}

	var items []model.Appointment
	err = s.call(ctx, "list_"+party.String()+"_appointments", func(db *gorm.DB) error {
		return db.
			Where(column+" = ?", partyID).
			Where("start_time < ? AND end_time > ?", window.End.UTC(), window.Start.UTC()).
			Where("status <> ?", model.AppointmentStatusCanceled).
			Order("start_time ASC").
			Find(&items).
			Error
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func partyColumn(party calendar.Party) (string, error) {
	switch party {
	case calendar.PartyClient:
		return "client_id", nil
	case calendar.PartyProvider:
		return "provider_id", nil
	default:
		return "", errors.New("unknown party " + party.String())
	}
}

func (s *GormStore) InsertAppointment(ctx context.Context, a *model.Appointment) error {
	return s.call(ctx, "insert_appointment", func(db *gorm.DB) error {
		return db.Omit(clause.Associations).Create(a).Error
	})
}

// UpdateAppointment перезаписывает изменяемые поля, включая обнуление room_id
// и appointment_type.
func (s *GormStore) UpdateAppointment(ctx context.Context, a *model.Appointment) error {
	return s.call(ctx, "update_appointment", func(db *gorm.DB) error {
		res := db.Model(&model.Appointment{}).
			Where("id = ?", a.ID).
			Select(
				"client_id", "provider_id", "room_id",
				"start_time", "end_time",
				"appointment_type", "priority", "status", "updated_at",
			).
			Updates(a)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (s *GormStore) RecordEvent(ctx context.Context, e *model.Event) error {
	return s.call(ctx, "record_event", func(db *gorm.DB) error {
		return db.Create(e).Error
	})
}

// Atomic выполняет fn в транзакции. Вложенный вызов переиспользует текущую.
func (s *GormStore) Atomic(ctx context.Context, fn func(ctx context.Context, tx calendar.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	var opts []*sql.TxOptions
	if s.serializable && s.db.Dialector.Name() == "postgres" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := *s
		txStore.db = tx
		txStore.inTx = true
		return fn(ctx, &txStore)
	}, opts...)
	return translate(err)
}
