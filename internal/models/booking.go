package models

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID                 string        `gorm:"primaryKey" json:"id"`
	SlotID             string        `gorm:"not null;index" json:"slot_id"`
	GuestName          string        `gorm:"not null" json:"guest_name"`
	GuestEmail         string        `gorm:"not null" json:"guest_email"`
	MeetingTitle       string        `gorm:"not null" json:"meeting_title"`
	MeetingDescription string        `json:"meeting_description,omitempty"`
	Status             BookingStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	Slot *TimeSlot `gorm:"foreignKey:SlotID" json:"slot,omitempty"`
}
