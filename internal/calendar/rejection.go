package calendar

import (
	"errors"
	"fmt"
)

// RejectionKind — закрытый набор причин отказа в допуске записи.
// Транспортный слой обязан сопоставить каждому значению свой код ответа.
type RejectionKind int

const (
	RejectClientNotFound RejectionKind = iota + 1
	RejectProviderNotFound
	RejectRoomNotFound
	RejectClientDoubleBooked
	RejectProviderDoubleBooked
	RejectAppointmentNotFound
	RejectInvalidInterval
	RejectInvalidPriority
	RejectEmptyUpdate
)

// Kinds перечисляет все причины отказа.
var Kinds = []RejectionKind{
	RejectClientNotFound,
	RejectProviderNotFound,
	RejectRoomNotFound,
	RejectClientDoubleBooked,
	RejectProviderDoubleBooked,
	RejectAppointmentNotFound,
	RejectInvalidInterval,
	RejectInvalidPriority,
	RejectEmptyUpdate,
}

// String возвращает стабильный код причины, пригодный для API.
func (k RejectionKind) String() string {
	switch k {
	case RejectClientNotFound:
		return "CLIENT_NOT_FOUND"
	case RejectProviderNotFound:
		return "PROVIDER_NOT_FOUND"
	case RejectRoomNotFound:
		return "ROOM_NOT_FOUND"
	case RejectClientDoubleBooked:
		return "CLIENT_DOUBLE_BOOKED"
	case RejectProviderDoubleBooked:
		return "PROVIDER_DOUBLE_BOOKED"
	case RejectAppointmentNotFound:
		return "APPOINTMENT_NOT_FOUND"
	case RejectInvalidInterval:
		return "INVALID_INTERVAL"
	case RejectInvalidPriority:
		return "INVALID_PRIORITY"
	case RejectEmptyUpdate:
		return "EMPTY_UPDATE"
	default:
		return fmt.Sprintf("REJECTION_%d", int(k))
	}
}

// IsNotFound — ссылка на несуществующую сущность.
func (k RejectionKind) IsNotFound() bool {
	switch k {
	case RejectClientNotFound, RejectProviderNotFound, RejectRoomNotFound, RejectAppointmentNotFound:
		return true
	}
	return false
}

// IsDoubleBooking — пересечение с активной записью той же стороны.
func (k RejectionKind) IsDoubleBooking() bool {
	return k == RejectClientDoubleBooked || k == RejectProviderDoubleBooked
}

func (k RejectionKind) defaultMessage() string {
	switch k {
	case RejectClientNotFound:
		return "client not found"
	case RejectProviderNotFound:
		return "provider not found"
	case RejectRoomNotFound:
		return "room not found"
	case RejectClientDoubleBooked:
		return "client is double-booked"
	case RejectProviderDoubleBooked:
		return "provider is double-booked"
	case RejectAppointmentNotFound:
		return "appointment not found"
	case RejectInvalidInterval:
		return "start_time must be before end_time"
	case RejectInvalidPriority:
		return "priority must be one of normal, high, urgent"
	case RejectEmptyUpdate:
		return "no fields to update"
	default:
		return "appointment rejected"
	}
}

// Rejection — результат проверки, а не сбой: запрос некорректен или
// нарушает инвариант расписания.
type Rejection struct {
	Kind    RejectionKind
	Message string
}

func Reject(kind RejectionKind) *Rejection {
	return &Rejection{Kind: kind, Message: kind.defaultMessage()}
}

func (r *Rejection) Error() string {
	return r.Message
}

// Is сравнивает отказы по виду, чтобы работало errors.Is(err, ErrClientNotFound).
func (r *Rejection) Is(target error) bool {
	var t *Rejection
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == r.Kind
}

var (
	ErrClientNotFound       = Reject(RejectClientNotFound)
	ErrProviderNotFound     = Reject(RejectProviderNotFound)
	ErrRoomNotFound         = Reject(RejectRoomNotFound)
	ErrClientDoubleBooked   = Reject(RejectClientDoubleBooked)
	ErrProviderDoubleBooked = Reject(RejectProviderDoubleBooked)
	ErrAppointmentNotFound  = Reject(RejectAppointmentNotFound)
	ErrInvalidInterval      = Reject(RejectInvalidInterval)
	ErrInvalidPriority      = Reject(RejectInvalidPriority)
	ErrEmptyUpdate          = Reject(RejectEmptyUpdate)
)

// AsRejection извлекает отказ из цепочки ошибок.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// InfrastructureError — хранилище недоступно или вернуло неожиданную ошибку.
// Это не отказ: вызывающий может повторить запрос или сообщить о сбое сервера.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

func infraErr(op string, err error) error {
	var ie *InfrastructureError
	if errors.As(err, &ie) {
		return err
	}
	return &InfrastructureError{Op: op, Err: err}
}

// IsInfrastructure сообщает, что err — сбой хранилища, а не отказ.
func IsInfrastructure(err error) bool {
	var ie *InfrastructureError
	return errors.As(err, &ie)
}
