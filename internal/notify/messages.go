package notify

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/codr1/roombook/internal/booking"
)

const displayDateLayout = "Monday, Jan 2, 2006"

func displayDate(date string) string {
	parsed, err := time.Parse(booking.DateLayout, date)
	if err != nil {
		return date
	}
	return parsed.Format(displayDateLayout)
}

// scheduleURL points at the dashboard opened on date.
func scheduleURL(baseURL, date string) string {
	return baseURL + "/?" + url.Values{"date": {date}}.Encode()
}

func withScheduleLink(msg Message, baseURL, date string) Message {
	if baseURL == "" {
		return msg
	}
	body := strings.TrimRight(msg.Body, "\n")
	msg.Body = body + "\n\nView the schedule: " + scheduleURL(baseURL, date) + "\n"
	return msg
}

func BookingCreatedMessage(r booking.Reservation) Message {
	return Message{
		Subject: fmt.Sprintf("%s booked for %s", r.Room, displayDate(r.Date)),
		Body: fmt.Sprintf(
			"%s reserved the %s on %s from %s to %s.",
			r.Name, r.Room, displayDate(r.Date), r.Start, r.End,
		),
	}
}

// AgendaMessage lists the day's reservations per room, ordered by start.
func AgendaMessage(s booking.Schedule, reservations []booking.Reservation) Message {
	byRoom := make(map[booking.Room][]booking.Reservation, len(s.Rooms))
	for _, r := range reservations {
		if r.Date != s.Date {
			continue
		}
		room := booking.CanonicalRoom(string(r.Room))
		byRoom[room] = append(byRoom[room], r)
	}

	var b strings.Builder
	for i, room := range s.Rooms {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(room.String())
		b.WriteString("\n")

		entries := byRoom[room]
		if len(entries) == 0 {
			b.WriteString("  free all day\n")
			continue
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Start < entries[j].Start
		})
		for _, r := range entries {
			fmt.Fprintf(&b, "  %s  %s\n", r.TimeRange(), r.Name)
		}
	}

	return Message{
		Subject: "Room agenda for " + displayDate(s.Date),
		Body:    b.String(),
	}
}
