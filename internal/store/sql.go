package store

import (
	"context"
	"fmt"

	"github.com/codr1/roombook/internal/booking"
	"github.com/codr1/roombook/internal/db"
)

// SQLStore keeps reservations in the SQLite reservations table.
type SQLStore struct {
	queries *db.Queries
}

func NewSQLStore(queries *db.Queries) *SQLStore {
	return &SQLStore{queries: queries}
}

func (s *SQLStore) LoadAll(ctx context.Context) ([]booking.Reservation, error) {
	rows, err := s.queries.ListReservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	records := make([]booking.Reservation, 0, len(rows))
	for _, row := range rows {
		records = append(records, booking.Reservation{
			Name:  row.Name,
			Room:  booking.CanonicalRoom(row.Room),
			Date:  row.Date,
			Start: row.StartTime,
			End:   row.EndTime,
		})
	}
	return records, nil
}

func (s *SQLStore) Append(ctx context.Context, r booking.Reservation) error {
	_, err := s.queries.CreateReservation(ctx, db.CreateReservationParams{
		Name:      r.Name,
		Room:      string(r.Room),
		Date:      r.Date,
		StartTime: r.Start,
		EndTime:   r.End,
	})
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (s *SQLStore) ResetAll(ctx context.Context) error {
	if _, err := s.queries.DeleteAllReservations(ctx); err != nil {
		return fmt.Errorf("delete reservations: %w", err)
	}
	return nil
}
