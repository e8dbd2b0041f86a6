package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Leganyst/booking-scheduler/internal/model"
)

var (
	// ErrNotFound возвращается хранилищем, когда строка с таким id отсутствует.
	ErrNotFound = errors.New("not found")

	// ErrSerialization — транзакция не смогла сериализоваться и может быть повторена.
	ErrSerialization = errors.New("transaction serialization failure")
)

// EntityKind — тип сущности, на которую ссылается запись.
type EntityKind int

const (
	EntityClient EntityKind = iota + 1
	EntityProvider
	EntityRoom
)

func (k EntityKind) String() string {
	switch k {
	case EntityClient:
		return "client"
	case EntityProvider:
		return "provider"
	case EntityRoom:
		return "room"
	default:
		return fmt.Sprintf("entity(%d)", int(k))
	}
}

// Party — сторона записи, для которой действует запрет пересечений.
type Party int

const (
	PartyClient Party = iota + 1
	PartyProvider
)

func (p Party) String() string {
	switch p {
	case PartyClient:
		return "client"
	case PartyProvider:
		return "provider"
	default:
		return fmt.Sprintf("party(%d)", int(p))
	}
}

// Entity — любая сущность, найденная по id.
type Entity interface {
	EntityID() uuid.UUID
}

// OverlapViolation сообщает, что хранилище само отвергло запись из-за
// пересечения (ограничение исключения в БД).
type OverlapViolation struct {
	Party Party
	Err   error
}

func (e *OverlapViolation) Error() string {
	return fmt.Sprintf("%s overlap constraint violated: %v", e.Party, e.Err)
}

func (e *OverlapViolation) Unwrap() error { return e.Err }

// Store — источник данных для допуска записей.
// Реализация на GORM живёт в repository, в тестах — фейк в памяти.
type Store interface {
	GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error)
	GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*model.Room, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error)

	// ListAppointmentsByParty возвращает записи клиента или провайдера.
	// Хранилище вправе сузить выборку окном window, но фильтрация по статусу
	// и проверка пересечения всё равно выполняются здесь.
	ListAppointmentsByParty(ctx context.Context, party Party, partyID uuid.UUID, window TimeRange) ([]model.Appointment, error)

	InsertAppointment(ctx context.Context, a *model.Appointment) error
	UpdateAppointment(ctx context.Context, a *model.Appointment) error
	RecordEvent(ctx context.Context, e *model.Event) error

	// Atomic выполняет fn в одной транзакции; fn получает хранилище,
	// привязанное к этой транзакции.
	Atomic(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
