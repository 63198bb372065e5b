package database

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/meetsync/scheduler/internal/models"
)

func NewPostgresDB(dsn string) *gorm.DB {
	// time_slots and bookings reference each other, so inlined FK clauses
	// cannot be created in either table order. The one-live-booking-per-slot
	// invariant is guarded by the partial index below instead.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := db.AutoMigrate(&models.TimeSlot{}, &models.Booking{}); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Backstop for the one-live-booking-per-slot invariant
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_booking_active_slot
		ON bookings (slot_id)
		WHERE status <> 'cancelled'
	`)

	return db
}
