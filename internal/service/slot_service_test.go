package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/meetsync/scheduler/internal/models"
	"github.com/meetsync/scheduler/internal/repository"
)

func TestCreateSlot_Success(t *testing.T) {
	var saved *models.TimeSlot
	slotRepo := &mockSlotRepo{
		createFn: func(ctx context.Context, slot *models.TimeSlot) error {
			saved = slot
			return nil
		},
	}
	svc := NewSlotService(slotRepo, &mockBookingRepo{})

	slot, err := svc.CreateSlot(context.Background(), "owner-1", "2024-01-08", "09:00", "10:00")
	require.NoError(t, err)
	assert.Equal(t, models.SlotID("owner-1", "2024-01-08", "09:00"), slot.ID)
	assert.Equal(t, models.SlotAvailable, slot.Availability)
	assert.Nil(t, slot.BookingID)
	assert.Equal(t, saved, slot)
}

func TestCreateSlot_DeterministicID(t *testing.T) {
	assert.Equal(t,
		models.SlotID("owner-1", "2024-01-08", "09:00"),
		models.SlotID("owner-1", "2024-01-08", "09:00"))
	assert.NotEqual(t,
		models.SlotID("owner-1", "2024-01-08", "09:00"),
		models.SlotID("owner-1", "2024-01-08", "09:30"))
}

func TestCreateSlot_InvalidInterval(t *testing.T) {
	created := false
	slotRepo := &mockSlotRepo{
		createFn: func(ctx context.Context, slot *models.TimeSlot) error {
			created = true
			return nil
		},
	}
	svc := NewSlotService(slotRepo, &mockBookingRepo{})

	_, err := svc.CreateSlot(context.Background(), "owner-1", "2024-01-08", "10:00", "09:00")
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = svc.CreateSlot(context.Background(), "owner-1", "2024-01-08", "10:00", "10:00")
	assert.ErrorIs(t, err, ErrInvalidInterval)

	assert.False(t, created, "no slot may be created for an invalid interval")
}

func TestCreateSlot_MalformedInput(t *testing.T) {
	svc := NewSlotService(&mockSlotRepo{}, &mockBookingRepo{})

	_, err := svc.CreateSlot(context.Background(), "owner-1", "08-01-2024", "09:00", "10:00")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateSlot(context.Background(), "owner-1", "2024-01-08", "9am", "10:00")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateSlot(context.Background(), "", "2024-01-08", "09:00", "10:00")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateSlot_Duplicate(t *testing.T) {
	slotRepo := &mockSlotRepo{
		createFn: func(ctx context.Context, slot *models.TimeSlot) error {
			return gorm.ErrDuplicatedKey
		},
	}
	svc := NewSlotService(slotRepo, &mockBookingRepo{})

	_, err := svc.CreateSlot(context.Background(), "owner-1", "2024-01-08", "09:00", "10:00")
	assert.ErrorIs(t, err, ErrDuplicateSlot)
}

func TestSetAvailability_NotFound(t *testing.T) {
	slotRepo := &mockSlotRepo{
		updateAvailFn: func(ctx context.Context, id string, availability models.SlotAvailability) (*models.TimeSlot, error) {
			return nil, repository.ErrSlotNotFound
		},
	}
	svc := NewSlotService(slotRepo, &mockBookingRepo{})

	_, err := svc.SetAvailability(context.Background(), "missing", false)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestSetAvailability_KeepsExistingBooking(t *testing.T) {
	occupant := "booking-1"
	slotRepo := &mockSlotRepo{
		updateAvailFn: func(ctx context.Context, id string, availability models.SlotAvailability) (*models.TimeSlot, error) {
			assert.Equal(t, models.SlotUnavailable, availability)
			slot := availableSlot()
			slot.Availability = availability
			slot.BookingID = &occupant
			return slot, nil
		},
	}
	svc := NewSlotService(slotRepo, &mockBookingRepo{})

	slot, err := svc.SetAvailability(context.Background(), "slot-1", false)
	require.NoError(t, err)
	assert.Equal(t, models.SlotUnavailable, slot.Availability)
	require.NotNil(t, slot.BookingID, "disabling a slot must not detach its booking")
	assert.Equal(t, occupant, *slot.BookingID)
}

func TestListSlots_OrderPassthroughAndMasking(t *testing.T) {
	stale := "booking-cancelled"
	live := "booking-live"
	slotRepo := &mockSlotRepo{
		findByOwnerFn: func(ctx context.Context, ownerID, from, to string) ([]models.TimeSlot, error) {
			return []models.TimeSlot{
				{ID: "s1", Date: "2024-01-08", StartTime: "09:00", BookingID: &stale,
					Booking: &models.Booking{ID: stale, Status: models.StatusCancelled}},
				{ID: "s2", Date: "2024-01-08", StartTime: "10:00", BookingID: &live,
					Booking: &models.Booking{ID: live, Status: models.StatusConfirmed}},
			}, nil
		},
	}
	svc := NewSlotService(slotRepo, &mockBookingRepo{})

	slots, err := svc.ListSlots(context.Background(), "owner-1", "", "")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Nil(t, slots[0].BookingID, "a cancelled occupant reads as free")
	require.NotNil(t, slots[1].BookingID)
	assert.Equal(t, live, *slots[1].BookingID)
}

func TestGetSlot_MasksCancelledOccupant(t *testing.T) {
	stale := "booking-cancelled"
	slot := availableSlot()
	slot.BookingID = &stale

	slotRepo := &mockSlotRepo{
		findByIDFn: func(ctx context.Context, tx *gorm.DB, id string) (*models.TimeSlot, error) {
			return slot, nil
		},
	}
	bookingRepo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*models.Booking, error) {
			return &models.Booking{ID: stale, Status: models.StatusCancelled}, nil
		},
	}
	svc := NewSlotService(slotRepo, bookingRepo)

	got, err := svc.GetSlot(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Nil(t, got.BookingID)
}

func TestGetSlot_NotFound(t *testing.T) {
	slotRepo := &mockSlotRepo{
		findByIDFn: func(ctx context.Context, tx *gorm.DB, id string) (*models.TimeSlot, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewSlotService(slotRepo, &mockBookingRepo{})

	_, err := svc.GetSlot(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestDeleteSlot_RejectedWhileBooked(t *testing.T) {
	occupant := "booking-live"
	slot := availableSlot()
	slot.BookingID = &occupant

	deleted := false
	slotRepo := &mockSlotRepo{
		findByIDFn: func(ctx context.Context, tx *gorm.DB, id string) (*models.TimeSlot, error) {
			return slot, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	bookingRepo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*models.Booking, error) {
			return &models.Booking{ID: occupant, Status: models.StatusConfirmed}, nil
		},
	}
	svc := NewSlotService(slotRepo, bookingRepo)

	err := svc.DeleteSlot(context.Background(), slot.ID)
	assert.ErrorIs(t, err, ErrSlotBooked)
	assert.False(t, deleted)
}

func TestDeleteSlot_CancelledOccupantDoesNotBlock(t *testing.T) {
	stale := "booking-cancelled"
	slot := availableSlot()
	slot.BookingID = &stale

	released := false
	slotRepo := &mockSlotRepo{
		findByIDFn: func(ctx context.Context, tx *gorm.DB, id string) (*models.TimeSlot, error) {
			return slot, nil
		},
		releaseFn: func(ctx context.Context, tx *gorm.DB, slotID, bookingID string) error {
			released = true
			assert.Equal(t, stale, bookingID)
			return nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			return nil
		},
	}
	bookingRepo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*models.Booking, error) {
			return &models.Booking{ID: stale, Status: models.StatusCancelled}, nil
		},
	}
	svc := NewSlotService(slotRepo, bookingRepo)

	assert.NoError(t, svc.DeleteSlot(context.Background(), slot.ID))
	assert.True(t, released, "stale reference must be cleared so the guarded delete can match")
}

func TestDeleteSlot_ConcurrentReservationWins(t *testing.T) {
	slotRepo := &mockSlotRepo{
		findByIDFn: func(ctx context.Context, tx *gorm.DB, id string) (*models.TimeSlot, error) {
			return availableSlot(), nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			// A guest reserved the slot after the occupancy check; the
			// guarded delete matches no row and finds it occupied.
			return repository.ErrSlotTaken
		},
	}
	svc := NewSlotService(slotRepo, &mockBookingRepo{})

	assert.ErrorIs(t, svc.DeleteSlot(context.Background(), "slot-1"), ErrSlotBooked)
}

func TestDeleteSlot_NotFound(t *testing.T) {
	slotRepo := &mockSlotRepo{
		findByIDFn: func(ctx context.Context, tx *gorm.DB, id string) (*models.TimeSlot, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewSlotService(slotRepo, &mockBookingRepo{})

	assert.ErrorIs(t, svc.DeleteSlot(context.Background(), "missing"), ErrSlotNotFound)
}
