package booking

import (
	"errors"
	"fmt"
)

var ErrResetUnsupported = errors.New("store does not support reset")

// ValidationError rejects user input before anything is loaded or written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// RoomOccupiedError reports the existing reservation that blocks a candidate.
type RoomOccupiedError struct {
	Room     Room
	Conflict Reservation
}

func (e RoomOccupiedError) Error() string {
	return fmt.Sprintf("%s is already booked on %s from %s to %s",
		e.Room, e.Conflict.Date, e.Conflict.Start, e.Conflict.End)
}

// FormatError means a candidate date or time could not be parsed.
type FormatError struct {
	Value string
	Err   error
}

func (e FormatError) Error() string {
	return fmt.Sprintf("invalid date/time %q: %v", e.Value, e.Err)
}

func (e FormatError) Unwrap() error {
	return e.Err
}

// DirtyRecordError describes a persisted row that cannot take part in
// overlap checks or the grid.
type DirtyRecordError struct {
	Index  int
	Record Reservation
	Reason string
}

func (e DirtyRecordError) Error() string {
	return fmt.Sprintf("record %d (%s, %s): %s", e.Index, e.Record.Room, e.Record.Date, e.Reason)
}

// BackendError wraps any failure of the record store.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
