package entities

type BookingsList struct {
	Total    int64             `json:"total"`
	Bookings []BookingResponse `json:"bookings"`
}
