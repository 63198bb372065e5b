package notify

import (
	"log"

	"github.com/meetsync/scheduler/internal/models"
)

type Event string

const (
	BookingConfirmed Event = "booking.confirmed"
	BookingCancelled Event = "booking.cancelled"
)

// Payload carries what the notification transport needs to render a
// confirmation or cancellation message.
type Payload struct {
	BookingID    string `json:"booking_id"`
	SlotID       string `json:"slot_id"`
	OwnerID      string `json:"owner_id"`
	GuestName    string `json:"guest_name"`
	GuestEmail   string `json:"guest_email"`
	MeetingTitle string `json:"meeting_title"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Status       string `json:"status"`
}

func NewPayload(b *models.Booking, slot *models.TimeSlot) Payload {
	p := Payload{
		BookingID:    b.ID,
		SlotID:       b.SlotID,
		GuestName:    b.GuestName,
		GuestEmail:   b.GuestEmail,
		MeetingTitle: b.MeetingTitle,
		Status:       string(b.Status),
	}
	if slot != nil {
		p.OwnerID = slot.OwnerID
		p.Date = slot.Date
		p.StartTime = slot.StartTime
		p.EndTime = slot.EndTime
	}
	return p
}

// Publisher is the notification transport. Delivery failures are its
// concern; the dispatcher only logs them.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

type Dispatcher struct {
	publisher Publisher
}

func NewDispatcher(publisher Publisher) *Dispatcher {
	return &Dispatcher{publisher: publisher}
}

// Dispatch hands the event to the transport off the caller's path. It never
// blocks beyond spawning the send and never returns an error: a booking or
// cancellation is already committed by the time this runs.
func (d *Dispatcher) Dispatch(event Event, payload Payload) {
	if d == nil || d.publisher == nil {
		log.Printf("[notify] no transport configured, dropping %s for booking %s", event, payload.BookingID)
		return
	}
	go func() {
		if err := d.publisher.Publish(string(event), payload); err != nil {
			log.Printf("[notify] dispatch %s for booking %s failed: %v", event, payload.BookingID, err)
		}
	}()
}
