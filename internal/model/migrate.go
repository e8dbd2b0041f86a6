package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Имена ограничений исключения. По ним хранилище понимает, чья сторона
// оказалась забронирована дважды.
const (
	ConstraintClientNoOverlap   = "appointments_client_no_overlap"
	ConstraintProviderNoOverlap = "appointments_provider_no_overlap"
	ConstraintValidInterval     = "appointments_valid_interval"
)

// AutoMigrate выполняет миграцию всех сущностей планировщика.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Provider{},
		&Client{},
		&Room{},
		&Appointment{},
		&Event{},
	); err != nil {
		return err
	}

	if db.Dialector.Name() == "postgres" {
		if err := migratePostgresConstraints(db); err != nil {
			return fmt.Errorf("postgres constraints: %w", err)
		}
	}
	return nil
}

// Ограничения на уровне БД закрывают гонку check-then-write: даже если две
// транзакции одновременно пройдут проверку в приложении, вторая вставка упадёт.
func migratePostgresConstraints(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		return fmt.Errorf("btree_gist: %w", err)
	}

	constraints := []struct {
		name string
		def  string
	}{
		{
			name: ConstraintValidInterval,
			def:  "CHECK (start_time < end_time)",
		},
		{
			name: ConstraintClientNoOverlap,
			def:  "EXCLUDE USING gist (client_id WITH =, tstzrange(start_time, end_time, '[)') WITH &&) WHERE (status <> 'canceled')",
		},
		{
			name: ConstraintProviderNoOverlap,
			def:  "EXCLUDE USING gist (provider_id WITH =, tstzrange(start_time, end_time, '[)') WITH &&) WHERE (status <> 'canceled')",
		},
	}

	for _, c := range constraints {
		stmt := fmt.Sprintf(`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
		ALTER TABLE appointments ADD CONSTRAINT %s %s;
	END IF;
END $$`, c.name, c.name, c.def)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
	}
	return nil
}
