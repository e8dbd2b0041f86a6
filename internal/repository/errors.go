package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-scheduler/internal/calendar"
	"github.com/Leganyst/booking-scheduler/internal/model"
)

// ErrNotFound — строка с таким id отсутствует.
var ErrNotFound = calendar.ErrNotFound

// Коды SQLSTATE, которые имеют смысл для допуска записей.
const (
	sqlStateExclusionViolation  = "23P01"
	sqlStateSerializationFailed = "40001"
	sqlStateDeadlockDetected    = "40P01"
)

// translate приводит ошибки драйверов к ошибкам пакета calendar:
//   - строка не найдена -> calendar.ErrNotFound;
//   - нарушение ограничения исключения -> *calendar.OverlapViolation;
//   - сбой сериализации или deadlock -> calendar.ErrSerialization.
//
// Остальные ошибки возвращаются как есть.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return calendar.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateExclusionViolation:
			switch pgErr.ConstraintName {
			case model.ConstraintClientNoOverlap:
				return &calendar.OverlapViolation{Party: calendar.PartyClient, Err: err}
			case model.ConstraintProviderNoOverlap:
				return &calendar.OverlapViolation{Party: calendar.PartyProvider, Err: err}
			}
		case sqlStateSerializationFailed, sqlStateDeadlockDetected:
			return fmt.Errorf("%w: %v", calendar.ErrSerialization, err)
		}
		return err
	}

	// sqlite блокирует базу целиком; занятая база — тот же конфликт транзакций.
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked {
			return fmt.Errorf("%w: %v", calendar.ErrSerialization, err)
		}
	}
	return err
}
