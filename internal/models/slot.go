package models

import (
	"time"

	"github.com/google/uuid"
)

type SlotAvailability string

const (
	SlotAvailable   SlotAvailability = "available"
	SlotUnavailable SlotAvailability = "unavailable"
)

// TimeSlot is an owner-published time window. Date and times are stored as
// plain strings ("2006-01-02" / "15:04"); lexical order matches
// chronological order for both formats.
type TimeSlot struct {
	ID           string           `gorm:"primaryKey" json:"id"`
	OwnerID      string           `gorm:"not null;index:idx_slots_owner_date,priority:1" json:"owner_id"`
	Date         string           `gorm:"type:varchar(10);not null;index:idx_slots_owner_date,priority:2" json:"date"`
	StartTime    string           `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime      string           `gorm:"type:varchar(5);not null" json:"end_time"`
	Availability SlotAvailability `gorm:"type:varchar(20);not null;default:'available'" json:"availability"`
	BookingID    *string          `json:"booking_id,omitempty"`
	Version      int64            `gorm:"not null;default:0" json:"version"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}

// SlotID derives the slot's identifier from its natural key, so publishing
// the same window twice collides on the primary key instead of creating a
// duplicate row.
func SlotID(ownerID, date, startTime string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(ownerID+"/"+date+"/"+startTime)).String()
}
