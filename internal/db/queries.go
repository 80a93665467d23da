package db

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

type ReservationRow struct {
	ID        int64
	Name      string
	Room      string
	Date      string
	StartTime string
	EndTime   string
	CreatedAt time.Time
}

const listReservations = `SELECT id, name, room, date, start_time, end_time, created_at FROM reservations ORDER BY id`

func (q *Queries) ListReservations(ctx context.Context) ([]ReservationRow, error) {
	rows, err := q.db.QueryContext(ctx, listReservations)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ReservationRow
	for rows.Next() {
		var i ReservationRow
		if err := rows.Scan(&i.ID, &i.Name, &i.Room, &i.Date, &i.StartTime, &i.EndTime, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createReservation = `INSERT INTO reservations (name, room, date, start_time, end_time) VALUES (?, ?, ?, ?, ?)`

type CreateReservationParams struct {
	Name      string
	Room      string
	Date      string
	StartTime string
	EndTime   string
}

func (q *Queries) CreateReservation(ctx context.Context, arg CreateReservationParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createReservation, arg.Name, arg.Room, arg.Date, arg.StartTime, arg.EndTime)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const deleteAllReservations = `DELETE FROM reservations`

func (q *Queries) DeleteAllReservations(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAllReservations)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
