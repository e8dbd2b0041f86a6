package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-scheduler/internal/config"
	"github.com/Leganyst/booking-scheduler/internal/db"
	"github.com/Leganyst/booking-scheduler/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.NewGormDB(&config.DBConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err, "open sqlite")
	require.NoError(t, model.AutoMigrate(gdb), "migrate")

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// at — время в фиксированный тестовый день, UTC.
func at(hh, mm int) time.Time {
	return time.Date(2024, 5, 20, hh, mm, 0, 0, time.UTC)
}

type fixture struct {
	client   *model.Client
	provider *model.Provider
	room     *model.Room
}

func seed(t *testing.T, gdb *gorm.DB) fixture {
	t.Helper()
	ctx := context.Background()

	f := fixture{
		client:   &model.Client{FirstName: "Anna", LastName: "Petrova"},
		provider: &model.Provider{Name: "Dr. Ivanov"},
		room:     &model.Room{Name: "Room 1"},
	}
	require.NoError(t, NewGormClientRepository(gdb).Create(ctx, f.client))
	require.NoError(t, NewGormProviderRepository(gdb).Create(ctx, f.provider))
	require.NoError(t, NewGormRoomRepository(gdb).Create(ctx, f.room))
	return f
}

func insertAppointment(t *testing.T, s *GormStore, a model.Appointment) *model.Appointment {
	t.Helper()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = model.AppointmentStatusScheduled
	}
	if a.Priority == "" {
		a.Priority = model.PriorityNormal
	}
	require.NoError(t, s.InsertAppointment(context.Background(), &a))
	return &a
}
