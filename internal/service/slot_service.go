package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/meetsync/scheduler/internal/models"
	"github.com/meetsync/scheduler/internal/repository"
)

var (
	ErrSlotNotFound    = errors.New("slot not found")
	ErrInvalidInterval = errors.New("end time must be after start time")
	ErrDuplicateSlot   = errors.New("slot already exists for this owner, date and start time")
	ErrSlotBooked      = errors.New("slot has an active booking")
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type SlotService interface {
	CreateSlot(ctx context.Context, ownerID, date, startTime, endTime string) (*models.TimeSlot, error)
	GetSlot(ctx context.Context, id string) (*models.TimeSlot, error)
	ListSlots(ctx context.Context, ownerID, from, to string) ([]models.TimeSlot, error)
	SetAvailability(ctx context.Context, id string, available bool) (*models.TimeSlot, error)
	DeleteSlot(ctx context.Context, id string) error
}

type slotService struct {
	slotRepo    repository.SlotRepository
	bookingRepo repository.BookingRepository
}

func NewSlotService(slotRepo repository.SlotRepository, bookingRepo repository.BookingRepository) SlotService {
	return &slotService{slotRepo: slotRepo, bookingRepo: bookingRepo}
}

func (s *slotService) CreateSlot(ctx context.Context, ownerID, date, startTime, endTime string) (*models.TimeSlot, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if _, err := time.Parse(timeLayout, startTime); err != nil {
		return nil, fmt.Errorf("%w: start_time must be HH:MM", ErrInvalidInput)
	}
	if _, err := time.Parse(timeLayout, endTime); err != nil {
		return nil, fmt.Errorf("%w: end_time must be HH:MM", ErrInvalidInput)
	}
	if endTime <= startTime {
		return nil, ErrInvalidInterval
	}

	slot := &models.TimeSlot{
		ID:           models.SlotID(ownerID, date, startTime),
		OwnerID:      ownerID,
		Date:         date,
		StartTime:    startTime,
		EndTime:      endTime,
		Availability: models.SlotAvailable,
	}
	if err := s.slotRepo.Create(ctx, slot); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSlot
		}
		return nil, fmt.Errorf("create slot: %w", err)
	}
	return slot, nil
}

func (s *slotService) GetSlot(ctx context.Context, id string) (*models.TimeSlot, error) {
	slot, err := s.slotRepo.FindByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	s.maskStaleOccupant(ctx, slot)
	return slot, nil
}

func (s *slotService) ListSlots(ctx context.Context, ownerID, from, to string) ([]models.TimeSlot, error) {
	slots, err := s.slotRepo.FindByOwner(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if slots[i].Booking != nil && slots[i].Booking.Status == models.StatusCancelled {
			slots[i].BookingID = nil
			slots[i].Booking = nil
		}
	}
	return slots, nil
}

// SetAvailability toggles future bookability only. An existing booking is
// never affected: occupancy and availability are independent.
func (s *slotService) SetAvailability(ctx context.Context, id string, available bool) (*models.TimeSlot, error) {
	availability := models.SlotUnavailable
	if available {
		availability = models.SlotAvailable
	}
	slot, err := s.slotRepo.UpdateAvailability(ctx, id, availability)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return slot, nil
}

// DeleteSlot removes an unoccupied slot. A stale cancelled occupant is
// released first; the delete itself is conditional on the slot still being
// free, so a reservation landing after the occupancy check wins and the
// delete reports the conflict.
func (s *slotService) DeleteSlot(ctx context.Context, id string) error {
	slot, err := s.slotRepo.FindByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSlotNotFound
		}
		return err
	}
	if slot.BookingID != nil {
		if s.hasLiveOccupant(ctx, slot) {
			return ErrSlotBooked
		}
		if err := s.slotRepo.Release(ctx, nil, slot.ID, *slot.BookingID); err != nil {
			return err
		}
	}
	if err := s.slotRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotNotFound):
			return ErrSlotNotFound
		case errors.Is(err, repository.ErrSlotTaken):
			return ErrSlotBooked
		default:
			return err
		}
	}
	return nil
}

// hasLiveOccupant reports whether the slot's booking reference points at a
// pending or confirmed booking. A reference left behind by a crashed
// cancellation counts as free.
func (s *slotService) hasLiveOccupant(ctx context.Context, slot *models.TimeSlot) bool {
	if slot.BookingID == nil {
		return false
	}
	booking, err := s.bookingRepo.FindByID(ctx, *slot.BookingID)
	if err != nil {
		return !errors.Is(err, gorm.ErrRecordNotFound)
	}
	return booking.Status != models.StatusCancelled
}

func (s *slotService) maskStaleOccupant(ctx context.Context, slot *models.TimeSlot) {
	if slot.BookingID != nil && !s.hasLiveOccupant(ctx, slot) {
		slot.BookingID = nil
		slot.Booking = nil
	}
}
