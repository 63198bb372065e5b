package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/meetsync/scheduler/internal/models"
)

// Typed failures for the reserve path. The service layer decides which of
// these are visible to callers.
var (
	ErrSlotNotFound    = errors.New("slot not found")
	ErrSlotTaken       = errors.New("slot already holds an active booking")
	ErrVersionConflict = errors.New("slot version conflict")
)

type SlotRepository interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Create(ctx context.Context, slot *models.TimeSlot) error
	FindByID(ctx context.Context, tx *gorm.DB, id string) (*models.TimeSlot, error)
	FindByOwner(ctx context.Context, ownerID, from, to string) ([]models.TimeSlot, error)
	UpdateAvailability(ctx context.Context, id string, availability models.SlotAvailability) (*models.TimeSlot, error)
	TryReserve(ctx context.Context, tx *gorm.DB, slotID string, expectedVersion int64, bookingID string) error
	Release(ctx context.Context, tx *gorm.DB, slotID, bookingID string) error
	Delete(ctx context.Context, id string) error
}

type slotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) SlotRepository {
	return &slotRepository{db: db}
}

func (r *slotRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *slotRepository) Create(ctx context.Context, slot *models.TimeSlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *slotRepository) FindByID(ctx context.Context, tx *gorm.DB, id string) (*models.TimeSlot, error) {
	if tx == nil {
		tx = r.db
	}
	var slot models.TimeSlot
	if err := tx.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepository) FindByOwner(ctx context.Context, ownerID, from, to string) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		q = q.Where("date <= ?", to)
	}
	if err := q.Preload("Booking").Order("date ASC, start_time ASC").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *slotRepository) UpdateAvailability(ctx context.Context, id string, availability models.SlotAvailability) (*models.TimeSlot, error) {
	res := r.db.WithContext(ctx).
		Model(&models.TimeSlot{}).
		Where("id = ?", id).
		Update("availability", availability)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrSlotNotFound
	}
	return r.FindByID(ctx, nil, id)
}

// TryReserve is the single mutation point for claiming a slot. The guard
// condition and the assignment happen in one UPDATE; when no row matches,
// the row is re-read inside the same transaction to classify the failure.
func (r *slotRepository) TryReserve(ctx context.Context, tx *gorm.DB, slotID string, expectedVersion int64, bookingID string) error {
	res := tx.WithContext(ctx).
		Model(&models.TimeSlot{}).
		Where("id = ? AND availability = ? AND booking_id IS NULL AND version = ?",
			slotID, models.SlotAvailable, expectedVersion).
		Updates(map[string]interface{}{
			"booking_id": bookingID,
			"version":    gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var slot models.TimeSlot
	err := tx.WithContext(ctx).First(&slot, "id = ?", slotID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrSlotNotFound
	case err != nil:
		return err
	case slot.BookingID != nil:
		return ErrSlotTaken
	case slot.Availability != models.SlotAvailable:
		return ErrSlotTaken
	default:
		return ErrVersionConflict
	}
}

// Release clears the occupant reference only while bookingID still owns the
// slot; otherwise it is a no-op. Availability is never touched here.
func (r *slotRepository) Release(ctx context.Context, tx *gorm.DB, slotID, bookingID string) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Model(&models.TimeSlot{}).
		Where("id = ? AND booking_id = ?", slotID, bookingID).
		Updates(map[string]interface{}{
			"booking_id": nil,
			"version":    gorm.Expr("version + 1"),
		}).Error
}

// Delete removes the slot only while no booking holds it; the guard makes
// it safe against a reservation landing after the caller's occupancy check.
func (r *slotRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND booking_id IS NULL", id).
		Delete(&models.TimeSlot{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	err := r.db.WithContext(ctx).First(&models.TimeSlot{}, "id = ?", id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrSlotNotFound
	case err != nil:
		return err
	default:
		return ErrSlotTaken
	}
}
