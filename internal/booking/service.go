package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	DefaultOpenHour  = 9
	DefaultCloseHour = 18
)

// BookingRequest is raw form input.
type BookingRequest struct {
	Name  string `json:"name"`
	Room  string `json:"room"`
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type Options struct {
	OpenHour  int
	CloseHour int
	Label     Labeler
	Notifier  Notifier
}

// Service runs the load-check-append cycle against a Store. Mutations are
// serialized so two submits in one process cannot both pass the overlap
// check for the same slot.
type Service struct {
	store     Store
	rooms     []Room
	openHour  int
	closeHour int
	label     Labeler
	notifier  Notifier

	mu sync.Mutex
}

func NewService(store Store, opts Options) *Service {
	if opts.OpenHour == 0 && opts.CloseHour == 0 {
		opts.OpenHour = DefaultOpenHour
		opts.CloseHour = DefaultCloseHour
	}
	if opts.Label == nil {
		opts.Label = NameLabel
	}
	return &Service{
		store:     store,
		rooms:     Rooms(),
		openHour:  opts.OpenHour,
		closeHour: opts.CloseHour,
		label:     opts.Label,
		notifier:  opts.Notifier,
	}
}

// Rooms returns a copy of the grid's column set.
func (s *Service) Rooms() []Room {
	out := make([]Room, len(s.rooms))
	copy(out, s.rooms)
	return out
}

func (s *Service) Hours() (int, int) {
	return s.openHour, s.closeHour
}

// Validate checks and normalizes raw input into a candidate reservation.
func Validate(req BookingRequest) (Reservation, error) {
	start, err := NormalizeTime(req.Start)
	if err != nil {
		return Reservation{}, err
	}
	end, err := NormalizeTime(req.End)
	if err != nil {
		return Reservation{}, err
	}
	// HH:MM strings order lexically.
	if start >= end {
		return Reservation{}, ValidationError{Field: "end", Reason: "must be after start"}
	}

	room, err := ParseRoom(req.Room)
	if err != nil {
		return Reservation{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Reservation{}, ValidationError{Field: "name", Reason: "is required"}
	}
	date, err := NormalizeDate(req.Date)
	if err != nil {
		return Reservation{}, err
	}

	return Reservation{Name: name, Room: room, Date: date, Start: start, End: end}, nil
}

// Submit validates req, rejects it if the room is taken, and appends it.
func (s *Service) Submit(ctx context.Context, req BookingRequest) (Reservation, error) {
	candidate, err := Validate(req)
	if err != nil {
		return Reservation{}, err
	}

	logger := log.Ctx(ctx).With().
		Str("room", candidate.Room.String()).
		Str("date", candidate.Date).
		Str("start", candidate.Start).
		Str("end", candidate.End).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx)
	if err != nil {
		return Reservation{}, err
	}

	conflict, found, err := FindConflict(candidate, existing)
	if err != nil {
		return Reservation{}, err
	}
	if found {
		logger.Info().Str("conflict_name", conflict.Name).Msg("Booking rejected: room occupied")
		return Reservation{}, RoomOccupiedError{Room: candidate.Room, Conflict: conflict}
	}

	if err := s.store.Append(ctx, candidate); err != nil {
		return Reservation{}, &BackendError{Op: "append", Err: err}
	}
	logger.Info().Msg("Booking stored")

	if s.notifier != nil {
		s.notifier.BookingCreated(ctx, candidate)
	}
	return candidate, nil
}

// Reset clears every reservation when the store supports it.
func (s *Service) Reset(ctx context.Context) error {
	resetter, ok := s.store.(Resetter)
	if !ok {
		return ErrResetUnsupported
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := resetter.ResetAll(ctx); err != nil {
		return &BackendError{Op: "reset", Err: err}
	}
	log.Ctx(ctx).Warn().Msg("All reservations cleared")
	return nil
}

func (s *Service) CanReset() bool {
	_, ok := s.store.(Resetter)
	return ok
}

// List returns every stored record, dirty rows included.
func (s *Service) List(ctx context.Context) ([]Reservation, error) {
	return s.load(ctx)
}

// DaySchedule reloads the store and builds the grid for date.
func (s *Service) DaySchedule(ctx context.Context, date string) (Schedule, []Reservation, error) {
	normalized, err := NormalizeDate(date)
	if err != nil {
		return Schedule{}, nil, err
	}
	existing, err := s.load(ctx)
	if err != nil {
		return Schedule{}, nil, err
	}
	return s.Build(normalized, existing), existing, nil
}

// Build renders the grid for date from an already loaded record list.
func (s *Service) Build(date string, existing []Reservation) Schedule {
	return BuildDaySchedule(date, s.rooms, existing, s.openHour, s.closeHour, s.label)
}

// Probe loads the store once and reports whether it is reachable.
func (s *Service) Probe(ctx context.Context) (int, error) {
	records, err := s.load(ctx)
	return len(records), err
}

func (s *Service) load(ctx context.Context) ([]Reservation, error) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, &BackendError{Op: "load", Err: err}
	}
	if dirty := DirtyRecords(records); len(dirty) > 0 {
		event := log.Ctx(ctx).Debug().Int("dirty_rows", len(dirty))
		event.Err(errors.Join(dirtyErrs(dirty)...)).Msg("Skipping malformed reservation rows")
	}
	return records, nil
}

func dirtyErrs(dirty []DirtyRecordError) []error {
	errs := make([]error, len(dirty))
	for i, d := range dirty {
		errs[i] = d
	}
	return errs
}

// IsUserError reports errors caused by the submitted input rather than the store.
func IsUserError(err error) bool {
	var verr ValidationError
	var ferr FormatError
	var oerr RoomOccupiedError
	return errors.As(err, &verr) || errors.As(err, &ferr) || errors.As(err, &oerr)
}

func (r Reservation) String() string {
	return fmt.Sprintf("%s: %s %s %s", r.Name, r.Room, r.Date, r.TimeRange())
}
