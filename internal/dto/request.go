package dto

type CreateSlotRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type SetAvailabilityRequest struct {
	Available *bool `json:"available"`
}

type CreateBookingRequest struct {
	GuestName          string `json:"guest_name"`
	GuestEmail         string `json:"guest_email"`
	MeetingTitle       string `json:"meeting_title"`
	MeetingDescription string `json:"meeting_description,omitempty"`
}
