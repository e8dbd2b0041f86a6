package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/Leganyst/booking-scheduler/internal/model"
)

const tracerName = "github.com/Leganyst/booking-scheduler/internal/calendar"

// Исходы допуска для метрик.
const (
	OutcomeAdmitted       = "admitted"
	OutcomeInfrastructure = "infrastructure_error"
)

// AdmissionObserver получает результат каждой попытки допуска.
type AdmissionObserver interface {
	ObserveAdmission(op, outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveAdmission(string, string, time.Duration) {}

// Field — значение для nullable-поля в частичном обновлении:
// Set=false — поле не передано, Set=true и Value=nil — поле очищается.
type Field[T any] struct {
	Set   bool
	Value *T
}

// SetField задаёт новое значение.
func SetField[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// ClearField очищает значение.
func ClearField[T any]() Field[T] {
	return Field[T]{Set: true}
}

// CreateRequest — предлагаемая новая запись.
// Пустые Priority и Status заменяются на normal и scheduled.
type CreateRequest struct {
	ClientID        uuid.UUID
	ProviderID      uuid.UUID
	RoomID          *uuid.UUID
	StartTime       time.Time
	EndTime         time.Time
	AppointmentType *string
	Priority        model.Priority
	Status          model.AppointmentStatus
}

// UpdateRequest — частичное изменение записи. nil означает «не передано».
type UpdateRequest struct {
	ClientID        *uuid.UUID
	ProviderID      *uuid.UUID
	RoomID          Field[uuid.UUID]
	StartTime       *time.Time
	EndTime         *time.Time
	AppointmentType Field[string]
	Priority        *model.Priority
	Status          *model.AppointmentStatus
}

func (r UpdateRequest) IsEmpty() bool {
	return r.ClientID == nil &&
		r.ProviderID == nil &&
		!r.RoomID.Set &&
		r.StartTime == nil &&
		r.EndTime == nil &&
		!r.AppointmentType.Set &&
		r.Priority == nil &&
		r.Status == nil
}

// Admitter принимает решение о допуске записи и сохраняет её.
// Состояния между вызовами не хранит, безопасен для конкурентного использования.
type Admitter struct {
	store      Store
	log        *zap.Logger
	observer   AdmissionObserver
	tracer     trace.Tracer
	maxRetries int
	now        func() time.Time
}

type AdmitterOption func(*Admitter)

func WithLogger(log *zap.Logger) AdmitterOption {
	return func(a *Admitter) {
		if log != nil {
			a.log = log
		}
	}
}

func WithObserver(o AdmissionObserver) AdmitterOption {
	return func(a *Admitter) {
		if o != nil {
			a.observer = o
		}
	}
}

// WithMaxRetries — сколько раз повторять транзакцию после ошибки сериализации.
func WithMaxRetries(n int) AdmitterOption {
	return func(a *Admitter) {
		if n >= 0 {
			a.maxRetries = n
		}
	}
}

func WithClock(now func() time.Time) AdmitterOption {
	return func(a *Admitter) {
		if now != nil {
			a.now = now
		}
	}
}

func NewAdmitter(store Store, opts ...AdmitterOption) *Admitter {
	a := &Admitter{
		store:      store,
		log:        zap.NewNop(),
		observer:   nopObserver{},
		tracer:     otel.Tracer(tracerName),
		maxRetries: 2,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AdmitCreate проверяет и сохраняет новую запись.
// Порядок проверок: интервал и приоритет, клиент, провайдер, комната,
// пересечения клиента, пересечения провайдера. Побеждает первый отказ.
func (a *Admitter) AdmitCreate(ctx context.Context, req CreateRequest) (*model.Appointment, error) {
	ctx, span := a.tracer.Start(ctx, "calendar.AdmitCreate", trace.WithAttributes(
		attribute.String("client_id", req.ClientID.String()),
		attribute.String("provider_id", req.ProviderID.String()),
	))
	defer span.End()

	started := time.Now()
	appt, err := a.admitCreate(ctx, req)
	return appt, a.finish(span, "create", started, err)
}

func (a *Admitter) admitCreate(ctx context.Context, req CreateRequest) (*model.Appointment, error) {
	window, err := NewTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, Reject(RejectInvalidInterval)
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}
	if !priority.IsValid() {
		return nil, Reject(RejectInvalidPriority)
	}

	status := req.Status
	if status == "" {
		status = model.AppointmentStatusScheduled
	}

	var created *model.Appointment
	err = a.atomic(ctx, func(ctx context.Context, tx Store) error {
		res := NewResolver(tx)
		if _, err := res.Resolve(ctx, EntityClient, req.ClientID); err != nil {
			return err
		}
		if _, err := res.Resolve(ctx, EntityProvider, req.ProviderID); err != nil {
			return err
		}
		if _, err := res.ResolveOptional(ctx, EntityRoom, req.RoomID); err != nil {
			return err
		}

		// Отменённая запись не может участвовать в двойном бронировании.
		if status.Active() {
			if err := checkParty(ctx, tx, PartyClient, req.ClientID, window, nil); err != nil {
				return err
			}
			if err := checkParty(ctx, tx, PartyProvider, req.ProviderID, window, nil); err != nil {
				return err
			}
		}

		now := a.now()
		appt := &model.Appointment{
			ID:              uuid.New(),
			ClientID:        req.ClientID,
			ProviderID:      req.ProviderID,
			RoomID:          req.RoomID,
			StartTime:       window.Start.UTC(),
			EndTime:         window.End.UTC(),
			AppointmentType: req.AppointmentType,
			Priority:        priority,
			Status:          status,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.InsertAppointment(ctx, appt); err != nil {
			return infraErr("insert appointment", err)
		}
		if err := a.recordEvent(ctx, tx, model.EventTypeAppointmentCreated, appt.ID, map[string]any{
			"client_id":   appt.ClientID,
			"provider_id": appt.ProviderID,
			"start_time":  appt.StartTime,
			"end_time":    appt.EndTime,
			"status":      appt.Status,
		}); err != nil {
			return err
		}
		created = appt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AdmitUpdate применяет частичное изменение к записи id.
// Перепроверяется только то, что действительно изменилось; сама запись
// при проверке пересечений не учитывается.
func (a *Admitter) AdmitUpdate(ctx context.Context, id uuid.UUID, req UpdateRequest) (*model.Appointment, error) {
	ctx, span := a.tracer.Start(ctx, "calendar.AdmitUpdate", trace.WithAttributes(
		attribute.String("appointment_id", id.String()),
	))
	defer span.End()

	started := time.Now()
	appt, err := a.admitUpdate(ctx, id, req)
	return appt, a.finish(span, "update", started, err)
}

func (a *Admitter) admitUpdate(ctx context.Context, id uuid.UUID, req UpdateRequest) (*model.Appointment, error) {
	if req.IsEmpty() {
		return nil, Reject(RejectEmptyUpdate)
	}
	if req.Priority != nil && !req.Priority.IsValid() {
		return nil, Reject(RejectInvalidPriority)
	}

	var updated *model.Appointment
	err := a.atomic(ctx, func(ctx context.Context, tx Store) error {
		current, err := tx.GetAppointment(ctx, id)
		if errors.Is(err, ErrNotFound) || (err == nil && current == nil) {
			return Reject(RejectAppointmentNotFound)
		}
		if err != nil {
			return infraErr("get appointment", err)
		}

		next, diff := applyUpdate(*current, req)
		if len(diff.fields) == 0 {
			updated = current
			return nil
		}

		window := TimeRange{Start: next.StartTime, End: next.EndTime}
		if diff.interval {
			if window, err = NewTimeRange(next.StartTime, next.EndTime); err != nil {
				return Reject(RejectInvalidInterval)
			}
		}

		res := NewResolver(tx)
		if diff.client {
			if _, err := res.Resolve(ctx, EntityClient, next.ClientID); err != nil {
				return err
			}
		}
		if diff.provider {
			if _, err := res.Resolve(ctx, EntityProvider, next.ProviderID); err != nil {
				return err
			}
		}
		if diff.room {
			if _, err := res.ResolveOptional(ctx, EntityRoom, next.RoomID); err != nil {
				return err
			}
		}

		if next.Status.Active() {
			reactivated := !current.Status.Active()
			if diff.client || diff.interval || reactivated {
				if err := checkParty(ctx, tx, PartyClient, next.ClientID, window, &id); err != nil {
					return err
				}
			}
			if diff.provider || diff.interval || reactivated {
				if err := checkParty(ctx, tx, PartyProvider, next.ProviderID, window, &id); err != nil {
					return err
				}
			}
		}

		next.UpdatedAt = a.now()
		if err := tx.UpdateAppointment(ctx, &next); err != nil {
			if errors.Is(err, ErrNotFound) {
				return Reject(RejectAppointmentNotFound)
			}
			return infraErr("update appointment", err)
		}
		if err := a.recordEvent(ctx, tx, model.EventTypeAppointmentUpdated, id, map[string]any{
			"changed": diff.fields,
		}); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// updateDiff — что именно поменялось относительно сохранённой записи.
type updateDiff struct {
	client   bool
	provider bool
	room     bool
	interval bool
	fields   []string
}

// applyUpdate накладывает патч на копию записи. Поле считается изменённым,
// только если оно передано и отличается от сохранённого значения.
func applyUpdate(a model.Appointment, req UpdateRequest) (model.Appointment, updateDiff) {
	var d updateDiff

	if req.ClientID != nil && *req.ClientID != a.ClientID {
		a.ClientID = *req.ClientID
		d.client = true
		d.fields = append(d.fields, "client_id")
	}
	if req.ProviderID != nil && *req.ProviderID != a.ProviderID {
		a.ProviderID = *req.ProviderID
		d.provider = true
		d.fields = append(d.fields, "provider_id")
	}
	if req.RoomID.Set && !equalPtr(req.RoomID.Value, a.RoomID) {
		a.RoomID = clonePtr(req.RoomID.Value)
		d.room = true
		d.fields = append(d.fields, "room_id")
	}
	if req.StartTime != nil && !req.StartTime.Equal(a.StartTime) {
		a.StartTime = req.StartTime.UTC()
		d.interval = true
		d.fields = append(d.fields, "start_time")
	}
	if req.EndTime != nil && !req.EndTime.Equal(a.EndTime) {
		a.EndTime = req.EndTime.UTC()
		d.interval = true
		d.fields = append(d.fields, "end_time")
	}
	if req.AppointmentType.Set && !equalPtr(req.AppointmentType.Value, a.AppointmentType) {
		a.AppointmentType = clonePtr(req.AppointmentType.Value)
		d.fields = append(d.fields, "appointment_type")
	}
	if req.Priority != nil && *req.Priority != a.Priority {
		a.Priority = *req.Priority
		d.fields = append(d.fields, "priority")
	}
	if req.Status != nil && *req.Status != a.Status {
		a.Status = *req.Status
		d.fields = append(d.fields, "status")
	}

	// Навигационные поля могли остаться от загрузки, они не сохраняются.
	a.Client, a.Provider, a.Room = nil, nil, nil
	return a, d
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (a *Admitter) recordEvent(ctx context.Context, tx Store, typ model.EventType, apptID uuid.UUID, details map[string]any) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return infraErr("encode event details", err)
	}
	ev := &model.Event{
		ID:            uuid.New(),
		EventType:     typ,
		AppointmentID: apptID,
		CreatedAt:     a.now(),
		Details:       datatypes.JSON(raw),
	}
	if err := tx.RecordEvent(ctx, ev); err != nil {
		return infraErr("record event", err)
	}
	return nil
}

// atomic выполняет fn в транзакции и повторяет её при ошибке сериализации.
// Нарушение ограничения исключения превращается в отказ DoubleBooked.
func (a *Admitter) atomic(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = a.store.Atomic(ctx, fn)
		if err == nil {
			return nil
		}
		if _, ok := AsRejection(err); ok {
			return err
		}
		var ov *OverlapViolation
		if errors.As(err, &ov) {
			return Reject(doubleBookedKind(ov.Party))
		}
		if !errors.Is(err, ErrSerialization) || attempt >= a.maxRetries || ctx.Err() != nil {
			break
		}
		a.log.Debug("retrying admission after serialization failure",
			zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return infraErr("admission transaction", err)
}

func (a *Admitter) finish(span trace.Span, op string, started time.Time, err error) error {
	elapsed := time.Since(started)
	if err == nil {
		a.observer.ObserveAdmission(op, OutcomeAdmitted, elapsed)
		span.SetStatus(codes.Ok, "")
		return nil
	}

	if rej, ok := AsRejection(err); ok {
		a.observer.ObserveAdmission(op, rej.Kind.String(), elapsed)
		span.SetAttributes(attribute.String("rejection", rej.Kind.String()))
		a.log.Info("appointment rejected",
			zap.String("op", op), zap.String("kind", rej.Kind.String()), zap.Duration("elapsed", elapsed))
		return err
	}

	a.observer.ObserveAdmission(op, OutcomeInfrastructure, elapsed)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	a.log.Error("appointment admission failed", zap.String("op", op), zap.Error(err))
	if !IsInfrastructure(err) {
		err = infraErr(op+" appointment", err)
	}
	return err
}
