package dto

import (
	"time"

	"github.com/meetsync/scheduler/internal/models"
)

type SlotResponse struct {
	ID           string                  `json:"id"`
	OwnerID      string                  `json:"owner_id"`
	Date         string                  `json:"date"`
	StartTime    string                  `json:"start_time"`
	EndTime      string                  `json:"end_time"`
	Availability models.SlotAvailability `json:"availability"`
	BookingID    *string                 `json:"booking_id,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

type BookingResponse struct {
	ID                 string               `json:"id"`
	SlotID             string               `json:"slot_id"`
	GuestName          string               `json:"guest_name"`
	GuestEmail         string               `json:"guest_email"`
	MeetingTitle       string               `json:"meeting_title"`
	MeetingDescription string               `json:"meeting_description,omitempty"`
	Status             models.BookingStatus `json:"status"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToSlotResponse(s *models.TimeSlot) SlotResponse {
	return SlotResponse{
		ID:           s.ID,
		OwnerID:      s.OwnerID,
		Date:         s.Date,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		Availability: s.Availability,
		BookingID:    s.BookingID,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:                 b.ID,
		SlotID:             b.SlotID,
		GuestName:          b.GuestName,
		GuestEmail:         b.GuestEmail,
		MeetingTitle:       b.MeetingTitle,
		MeetingDescription: b.MeetingDescription,
		Status:             b.Status,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}
