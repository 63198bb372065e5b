package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetsync/scheduler/internal/models"
	"github.com/meetsync/scheduler/internal/notify"
	"github.com/meetsync/scheduler/internal/repository"
)

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrSlotUnavailable  = errors.New("slot is not available")
	ErrInvalidInput     = errors.New("invalid input")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrInvalidState     = errors.New("booking cannot be cancelled in its current state")
)

// GuestInfo is what a guest supplies to claim a slot. Validation runs
// before any slot state is read or written.
type GuestInfo struct {
	GuestName          string `validate:"required"`
	GuestEmail         string `validate:"required,email"`
	MeetingTitle       string `validate:"required"`
	MeetingDescription string
}

type BookingService interface {
	Reserve(ctx context.Context, slotID string, guest GuestInfo) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID string) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Booking, error)
}

type bookingService struct {
	slotRepo    repository.SlotRepository
	bookingRepo repository.BookingRepository
	dispatcher  *notify.Dispatcher
	validate    *validator.Validate
}

func NewBookingService(slotRepo repository.SlotRepository, bookingRepo repository.BookingRepository, dispatcher *notify.Dispatcher) BookingService {
	return &bookingService{
		slotRepo:    slotRepo,
		bookingRepo: bookingRepo,
		dispatcher:  dispatcher,
		validate:    validator.New(),
	}
}

// Reserve claims the slot for the guest. The slot update and the booking
// insert commit as one transaction; losing the version race surfaces as
// ErrSlotUnavailable, the same answer a caller gets when the slot was taken
// before they looked.
func (s *bookingService) Reserve(ctx context.Context, slotID string, guest GuestInfo) (*models.Booking, error) {
	if err := s.validate.Struct(guest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var (
		result *models.Booking
		slot   *models.TimeSlot
	)
	err := s.slotRepo.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		slot, err = s.slotRepo.FindByID(ctx, tx, slotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return err
		}
		if slot.Availability != models.SlotAvailable {
			return ErrSlotUnavailable
		}
		if slot.BookingID != nil {
			freed, err := s.healStaleOccupant(ctx, tx, slot)
			if err != nil {
				return err
			}
			if !freed {
				return ErrSlotUnavailable
			}
			// The heal bumped the version; reserve against the fresh row.
			slot, err = s.slotRepo.FindByID(ctx, tx, slotID)
			if err != nil {
				return err
			}
		}

		booking := &models.Booking{
			ID:                 uuid.NewString(),
			SlotID:             slot.ID,
			GuestName:          guest.GuestName,
			GuestEmail:         guest.GuestEmail,
			MeetingTitle:       guest.MeetingTitle,
			MeetingDescription: guest.MeetingDescription,
			Status:             models.StatusPending,
		}

		// The booking row goes in first so the slot's occupant reference
		// always points at an existing row; losing the claim below rolls
		// the insert back with the rest of the transaction.
		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// The live-booking index caught a concurrent claim first.
				return ErrSlotUnavailable
			}
			return fmt.Errorf("persist booking: %w", err)
		}

		if err := s.slotRepo.TryReserve(ctx, tx, slot.ID, slot.Version, booking.ID); err != nil {
			switch {
			case errors.Is(err, repository.ErrSlotNotFound):
				return ErrSlotNotFound
			case errors.Is(err, repository.ErrSlotTaken), errors.Is(err, repository.ErrVersionConflict):
				return ErrSlotUnavailable
			default:
				return err
			}
		}

		if err := s.bookingRepo.UpdateStatus(ctx, tx, booking.ID, models.StatusConfirmed); err != nil {
			return fmt.Errorf("confirm booking: %w", err)
		}
		booking.Status = models.StatusConfirmed
		booking.UpdatedAt = time.Now()
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(notify.BookingConfirmed, notify.NewPayload(result, slot))
	return result, nil
}

// healStaleOccupant clears a booking reference whose booking is already
// cancelled (left behind by a cancellation that stopped between its two
// writes). Returns true when the slot is free afterwards.
func (s *bookingService) healStaleOccupant(ctx context.Context, tx *gorm.DB, slot *models.TimeSlot) (bool, error) {
	occupant, err := s.bookingRepo.FindByID(ctx, *slot.BookingID)
	if err != nil {
		return false, err
	}
	if occupant.Status != models.StatusCancelled {
		return false, nil
	}
	if err := s.slotRepo.Release(ctx, tx, slot.ID, occupant.ID); err != nil {
		return false, err
	}
	return true, nil
}

// Cancel flips the booking to cancelled and then releases the slot. The
// booking write commits first; if the release never runs, the read paths
// treat a cancelled occupant as free until someone rebooks the slot.
func (s *bookingService) Cancel(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	switch booking.Status {
	case models.StatusCancelled:
		return nil, ErrAlreadyCancelled
	case models.StatusPending:
		// A pending booking only exists inside an open reservation.
		return nil, ErrInvalidState
	}

	if err := s.bookingRepo.UpdateStatus(ctx, nil, bookingID, models.StatusCancelled); err != nil {
		if errors.Is(err, repository.ErrBookingCancelled) {
			// Another cancel won the race between our read and this write.
			return nil, ErrAlreadyCancelled
		}
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	booking.Status = models.StatusCancelled
	booking.UpdatedAt = time.Now()

	if err := s.slotRepo.Release(ctx, nil, booking.SlotID, booking.ID); err != nil {
		// The cancellation is durable; a stale slot reference self-heals on read.
		log.Printf("[booking] release slot %s after cancelling %s failed: %v", booking.SlotID, booking.ID, err)
	}

	slot, err := s.slotRepo.FindByID(ctx, nil, booking.SlotID)
	if err != nil {
		slot = nil
	}
	s.dispatcher.Dispatch(notify.BookingCancelled, notify.NewPayload(booking, slot))
	return booking, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) ListByOwner(ctx context.Context, ownerID string) ([]models.Booking, error) {
	return s.bookingRepo.FindByOwner(ctx, ownerID)
}
