package schedule

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/codr1/roombook/internal/booking"
)

// RefreshEvent is fired after a write so the grid and list reload.
const RefreshEvent = "refreshSchedule"

type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

func (hw *htmlWriter) attr(name, value string) {
	hw.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (hw *htmlWriter) component(ctx context.Context, c templ.Component) {
	if hw.err != nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

func scheduleURL(date string) string {
	return "/api/v1/schedule?" + url.Values{"date": {date}}.Encode()
}

// Dashboard is the single page: form, day grid, full list.
func Dashboard(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<header class="page-header"><h1>`)
		hw.text(data.Title)
		hw.raw(`</h1></header>`)

		hw.raw(`<section class="panel"><h2>Book a room</h2>`)
		hw.component(ctx, BookingForm(data.Form))
		hw.raw(`</section>`)

		hw.raw(`<section class="panel"><div class="panel-header"><h2>Schedule</h2>`)
		hw.raw(`<input type="date" name="date" hx-get="/api/v1/schedule" hx-target="#schedule" hx-swap="outerHTML" hx-trigger="change"`)
		hw.attr("value", data.Date)
		hw.raw(`></div>`)
		hw.component(ctx, Grid(data.Schedule))
		hw.raw(`</section>`)

		hw.raw(`<section class="panel"><h2>All reservations</h2>`)
		hw.component(ctx, ReservationList(data.Reservations))
		if data.CanReset {
			hw.raw(`<form method="post" action="/api/v1/bookings/reset" hx-post="/api/v1/bookings/reset" hx-target="#reset-feedback" hx-confirm="Delete every reservation?">`)
			hw.raw(`<button type="submit" class="button button-danger">Clear all reservations</button></form>`)
			hw.raw(`<div id="reset-feedback" aria-live="polite"></div>`)
		}
		hw.raw(`</section>`)
		return hw.err
	})
}

// BookingForm posts to the bookings endpoint; htmx swaps the feedback box.
func BookingForm(data FormData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<form id="booking-form" class="booking-form" method="post" action="/api/v1/bookings" hx-post="/api/v1/bookings" hx-target="#booking-feedback" hx-swap="innerHTML">`)

		hw.raw(`<label>Name<input type="text" name="name" required`)
		hw.attr("value", data.Values.Name)
		hw.raw(`></label>`)

		hw.raw(`<label>Room<select name="room">`)
		for _, room := range data.Rooms {
			hw.raw(`<option`)
			hw.attr("value", room.String())
			if room.String() == data.Values.Room {
				hw.raw(` selected`)
			}
			hw.raw(`>`)
			hw.text(room.String())
			hw.raw(`</option>`)
		}
		hw.raw(`</select></label>`)

		hw.raw(`<label>Date<input type="date" name="date" required`)
		hw.attr("value", data.Values.Date)
		hw.raw(`></label>`)

		hw.raw(`<label>Start<input type="time" name="start" step="60" required`)
		hw.attr("value", data.Values.Start)
		hw.raw(`></label>`)

		hw.raw(`<label>End<input type="time" name="end" step="60" required`)
		hw.attr("value", data.Values.End)
		hw.raw(`></label>`)

		hw.raw(`<button type="submit" class="button">Book</button>`)
		hw.raw(`<div id="booking-feedback" aria-live="polite"></div></form>`)
		return hw.err
	})
}

// Grid renders the hour-by-room table. The wrapper reloads itself on RefreshEvent.
func Grid(s booking.Schedule) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<div id="schedule" hx-swap="outerHTML" hx-trigger="` + RefreshEvent + ` from:body"`)
		hw.attr("hx-get", scheduleURL(s.Date))
		hw.raw(`><table class="schedule"><caption>`)
		hw.text(s.Date)
		hw.raw(`</caption><thead><tr><th scope="col">Hour</th>`)
		for _, room := range s.Rooms {
			hw.raw(`<th scope="col">`)
			hw.text(room.String())
			hw.raw(`</th>`)
		}
		hw.raw(`</tr></thead><tbody>`)
		for _, row := range s.Rows {
			hw.raw(`<tr><th scope="row">`)
			hw.text(hourLabel(row.Hour))
			hw.raw(`</th>`)
			for _, cell := range row.Cells {
				if cell.Occupied {
					hw.raw(`<td class="cell cell-occupied">`)
				} else {
					hw.raw(`<td class="cell cell-free">`)
				}
				hw.text(cell.Label)
				hw.raw(`</td>`)
			}
			hw.raw(`</tr>`)
		}
		hw.raw(`</tbody></table></div>`)
		return hw.err
	})
}

// ReservationList shows every stored record in store order, dirty rows included.
func ReservationList(reservations []booking.Reservation) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<div id="reservations" hx-get="/api/v1/bookings" hx-swap="outerHTML" hx-trigger="` + RefreshEvent + ` from:body">`)
		if len(reservations) == 0 {
			hw.raw(`<p class="empty">No reservations yet.</p></div>`)
			return hw.err
		}
		hw.raw(`<table class="reservations"><thead><tr><th>#</th><th>Name</th><th>Room</th><th>Date</th><th>Start</th><th>End</th></tr></thead><tbody>`)
		for i, r := range reservations {
			hw.raw(`<tr><td>`)
			hw.text(strconv.Itoa(i + 1))
			for _, field := range r.Fields() {
				hw.raw(`</td><td>`)
				hw.text(field)
			}
			hw.raw(`</td></tr>`)
		}
		hw.raw(`</tbody></table></div>`)
		return hw.err
	})
}

// ErrorState replaces the whole dashboard when the store is unreachable.
func ErrorState(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section class="panel panel-error" role="alert"><h2>Reservations are unavailable</h2><p>`)
		hw.text(message)
		hw.raw(`</p><p><a href="/">Try again</a></p></section>`)
		return hw.err
	})
}
