// internal/api/bookings/handlers.go
package bookings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/roombook/internal/api/apiutil"
	"github.com/codr1/roombook/internal/api/htmx"
	"github.com/codr1/roombook/internal/booking"
	"github.com/codr1/roombook/internal/scheduler"
	"github.com/codr1/roombook/internal/templates/components/schedule"
	"github.com/codr1/roombook/internal/templates/layouts"
)

const bookingsQueryTimeout = 5 * time.Second

// HealthReporter exposes the latest backend probe.
type HealthReporter interface {
	Last() (scheduler.ProbeResult, bool)
}

type Options struct {
	Title   string
	Backend string
	Health  HealthReporter
}

var (
	service     *booking.Service
	options     Options
	serviceOnce sync.Once

	now = time.Now
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *booking.Service, opts Options) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
		options = opts
	})
}

func loadService() *booking.Service {
	return service
}

// GET /
func HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Booking service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingsQueryTimeout)
	defer cancel()

	date := requestedDate(r)
	if _, err := booking.NormalizeDate(date); err != nil {
		logger.Debug().Str("date", date).Msg("Ignoring unparsable dashboard date")
		date = now().Format(booking.DateLayout)
	}
	day, existing, err := svc.DaySchedule(ctx, date)
	if err != nil {
		herr := handlerError(err)
		logHandlerError(r, err, herr, "Failed to load dashboard")
		page := layouts.Base(pageTitle(), schedule.ErrorState(herr.Message))
		apiutil.RenderHTMLComponentStatus(r.Context(), w, herr.Status, page, nil, "Failed to render error state", "Failed to render page")
		return
	}

	openHour, _ := svc.Hours()
	data := schedule.PageData{
		Title:        pageTitle(),
		Date:         day.Date,
		Schedule:     day,
		Reservations: existing,
		Form:         schedule.NewFormData(svc.Rooms(), day.Date, openHour),
		CanReset:     svc.CanReset(),
	}
	page := layouts.Base(pageTitle(), schedule.Dashboard(data))
	apiutil.RenderHTMLComponent(r.Context(), w, page, nil, "Failed to render dashboard", "Failed to render page")
}

// GET /api/v1/schedule?date=YYYY-MM-DD
func HandleSchedule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Booking service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingsQueryTimeout)
	defer cancel()

	day, _, err := svc.DaySchedule(ctx, requestedDate(r))
	if err != nil {
		writeError(w, r, err, "Failed to load schedule")
		return
	}

	if apiutil.IsJSONRequest(r) {
		if err := apiutil.WriteJSON(w, http.StatusOK, day); err != nil {
			logger.Error().Err(err).Str("date", day.Date).Msg("Failed to write schedule response")
		}
		return
	}
	apiutil.RenderHTMLComponent(r.Context(), w, schedule.Grid(day), nil, "Failed to render schedule", "Failed to render schedule")
}

// GET /api/v1/bookings
func HandleBookingsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Booking service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingsQueryTimeout)
	defer cancel()

	reservations, err := svc.List(ctx)
	if err != nil {
		writeError(w, r, err, "Failed to list reservations")
		return
	}

	if apiutil.IsJSONRequest(r) {
		if reservations == nil {
			reservations = []booking.Reservation{}
		}
		if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"reservations": reservations}); err != nil {
			logger.Error().Err(err).Msg("Failed to write reservations response")
		}
		return
	}
	apiutil.RenderHTMLComponent(r.Context(), w, schedule.ReservationList(reservations), nil, "Failed to render reservation list", "Failed to render reservations")
}

// POST /api/v1/bookings
func HandleBookingCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Booking service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	req, err := decodeBookingRequest(r)
	if err != nil {
		writeError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid request body", Err: err}, "Failed to decode booking request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingsQueryTimeout)
	defer cancel()

	created, err := svc.Submit(ctx, req)
	if err != nil {
		writeError(w, r, err, "Failed to create booking")
		return
	}

	switch {
	case apiutil.IsJSONRequest(r):
		if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
			logger.Error().Err(err).Msg("Failed to write booking response")
		}
	case htmx.IsRequest(r):
		htmx.Trigger(w, schedule.RefreshEvent)
		apiutil.WriteHTMLFeedback(w, http.StatusCreated, fmt.Sprintf(
			"Booked the %s on %s from %s to %s for %s.",
			created.Room, created.Date, created.Start, created.End, created.Name,
		))
	default:
		http.Redirect(w, r, "/?"+url.Values{"date": {created.Date}}.Encode(), http.StatusSeeOther)
	}
}

// POST /api/v1/bookings/reset
func HandleBookingsReset(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Booking service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingsQueryTimeout)
	defer cancel()

	if err := svc.Reset(ctx); err != nil {
		writeError(w, r, err, "Failed to reset reservations")
		return
	}

	switch {
	case apiutil.IsJSONRequest(r):
		if err := apiutil.WriteJSON(w, http.StatusOK, map[string]bool{"reset": true}); err != nil {
			logger.Error().Err(err).Msg("Failed to write reset response")
		}
	case htmx.IsRequest(r):
		htmx.Trigger(w, schedule.RefreshEvent)
		apiutil.WriteHTMLFeedback(w, http.StatusOK, "All reservations cleared.")
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

type healthResponse struct {
	Status    string                 `json:"status"`
	Backend   string                 `json:"backend,omitempty"`
	LastProbe *scheduler.ProbeResult `json:"last_probe,omitempty"`
}

// GET /health
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Backend: options.Backend}
	status := http.StatusOK

	if options.Health != nil {
		if last, ok := options.Health.Last(); ok {
			resp.LastProbe = &last
			if !last.Healthy() {
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
			}
		}
	}

	if err := apiutil.WriteJSON(w, status, resp); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write health response")
	}
}

func decodeBookingRequest(r *http.Request) (booking.BookingRequest, error) {
	var req booking.BookingRequest
	if apiutil.IsJSONRequest(r) && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			return booking.BookingRequest{}, err
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return booking.BookingRequest{}, err
	}
	req.Name = r.PostForm.Get("name")
	req.Room = r.PostForm.Get("room")
	req.Date = r.PostForm.Get("date")
	req.Start = r.PostForm.Get("start")
	req.End = r.PostForm.Get("end")
	return req, nil
}

func requestedDate(r *http.Request) string {
	if date := strings.TrimSpace(r.URL.Query().Get("date")); date != "" {
		return date
	}
	return now().Format(booking.DateLayout)
}

func pageTitle() string {
	if options.Title != "" {
		return options.Title
	}
	return "Room Booking"
}

// handlerError maps service errors onto HTTP statuses and user-facing text.
func handlerError(err error) apiutil.HandlerError {
	var (
		herr     apiutil.HandlerError
		verr     booking.ValidationError
		occupied booking.RoomOccupiedError
		ferr     booking.FormatError
		berr     *booking.BackendError
	)
	switch {
	case errors.As(err, &herr):
		return herr
	case errors.As(err, &verr):
		return apiutil.HandlerError{
			Status:  http.StatusUnprocessableEntity,
			Message: capitalize(verr.Error()),
			Err:     apiutil.FieldError{Field: verr.Field, Reason: verr.Reason},
		}
	case errors.As(err, &occupied):
		return apiutil.HandlerError{Status: http.StatusConflict, Message: fmt.Sprintf(
			"The %s is already booked on %s from %s to %s. Please choose a different time or room.",
			occupied.Room, occupied.Conflict.Date, occupied.Conflict.Start, occupied.Conflict.End,
		), Err: err}
	case errors.As(err, &ferr):
		return apiutil.HandlerError{Status: http.StatusBadRequest, Message: fmt.Sprintf("Invalid date or time %q.", ferr.Value), Err: err}
	case errors.Is(err, booking.ErrResetUnsupported):
		return apiutil.HandlerError{Status: http.StatusNotImplemented, Message: "This storage backend does not support clearing reservations.", Err: err}
	case errors.As(err, &berr):
		return apiutil.HandlerError{Status: http.StatusServiceUnavailable, Message: "Could not reach the reservation store. Please try again shortly.", Err: err}
	default:
		return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Internal Server Error", Err: err}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	herr := handlerError(err)
	logHandlerError(r, err, herr, logMsg)

	if apiutil.IsJSONRequest(r) {
		payload := map[string]string{"error": herr.Message}
		var ferr apiutil.FieldError
		if errors.As(herr, &ferr) {
			payload["field"] = ferr.Field
		}
		if werr := apiutil.WriteJSON(w, herr.Status, payload); werr != nil {
			log.Ctx(r.Context()).Error().Err(werr).Msg("Failed to write error response")
		}
		return
	}
	apiutil.WriteHTMLFeedback(w, herr.Status, herr.Message)
}

// Rejected input logs at info, store and server failures at error.
func logHandlerError(r *http.Request, err error, herr apiutil.HandlerError, msg string) {
	logger := log.Ctx(r.Context())
	var event *zerolog.Event
	switch {
	case booking.IsUserError(err):
		event = logger.Info()
	case herr.Status >= http.StatusInternalServerError && herr.Status != http.StatusNotImplemented:
		event = logger.Error()
	default:
		event = logger.Warn()
	}
	event.Err(herr.Err).Int("status", herr.Status).Msg(msg)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
