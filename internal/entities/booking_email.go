package entities

import (
	"fmt"
	"time"

	"garagerent/internal/db"
)

// BookingEmailData is the flattened view of a booking sent in notification
// messages.
type BookingEmailData struct {
	EventType          string
	BookingID          int64
	SpaceID            int64
	RenterID           int64
	Status             string
	StartDateFormatted string
	EndDateFormatted   string
	TotalPrice         int64
}

func NewBookingEmailData(eventType string, b *db.Booking) BookingEmailData {
	return BookingEmailData{
		EventType:          eventType,
		BookingID:          b.ID,
		SpaceID:            b.SpaceID,
		RenterID:           b.RenterID,
		Status:             string(b.Status),
		StartDateFormatted: b.StartDate.Format(time.RFC3339),
		EndDateFormatted:   b.EndDate.Format(time.RFC3339),
		TotalPrice:         b.TotalPrice,
	}
}

func (d BookingEmailData) Subject() string {
	return fmt.Sprintf("Booking #%d: %s", d.BookingID, d.EventType)
}

func (d BookingEmailData) PlainText() string {
	return fmt.Sprintf(
		"Event: %s\nBooking: %d\nSpace: %d\nRenter: %d\nFrom: %s\nTo: %s\nTotal: %d\nStatus: %s\n",
		d.EventType, d.BookingID, d.SpaceID, d.RenterID,
		d.StartDateFormatted, d.EndDateFormatted, d.TotalPrice, d.Status,
	)
}
