package schedule

import (
	"fmt"

	"github.com/codr1/roombook/internal/booking"
)

// PageData feeds the dashboard.
type PageData struct {
	Title        string
	Date         string
	Schedule     booking.Schedule
	Reservations []booking.Reservation
	Form         FormData
	CanReset     bool
}

// FormData pre-fills the booking form.
type FormData struct {
	Rooms  []booking.Room
	Values booking.BookingRequest
}

// NewFormData defaults the form to the first room and a one hour slot at
// opening time on date.
func NewFormData(rooms []booking.Room, date string, openHour int) FormData {
	values := booking.BookingRequest{
		Date:  date,
		Start: hourLabel(openHour),
		End:   hourLabel(openHour + 1),
	}
	if len(rooms) > 0 {
		values.Room = rooms[0].String()
	}
	return FormData{Rooms: rooms, Values: values}
}

func hourLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}
