package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/meetsync/scheduler/internal/models"
)

// ErrBookingCancelled reports a status write that lost to an earlier
// cancellation; cancelled is terminal at the row level.
var ErrBookingCancelled = errors.New("booking is already cancelled")

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	FindByOwner(ctx context.Context, ownerID string) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID string, status models.BookingStatus) error
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByOwner lists every booking whose slot belongs to the owner, most
// recent first. Equal timestamps are ordered by id so the dashboard order
// is stable.
func (r *bookingRepository) FindByOwner(ctx context.Context, ownerID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Joins("JOIN time_slots ON time_slots.id = bookings.slot_id").
		Where("time_slots.owner_id = ?", ownerID).
		Order("bookings.created_at DESC, bookings.id ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// UpdateStatus writes the new status unless the row is already cancelled,
// so racing cancellations collapse to a single winner.
func (r *bookingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID string, status models.BookingStatus) error {
	if tx == nil {
		tx = r.db
	}
	res := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status <> ?", bookingID, models.StatusCancelled).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBookingCancelled
	}
	return nil
}
