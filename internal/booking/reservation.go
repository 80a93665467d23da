package booking

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	slotLayout     = DateLayout + " " + TimeLayout
	timeLayoutSecs = "15:04:05"
)

// Reservation is a persisted booking row. Fields stay as strings so rows
// written by hand into a backend still load.
type Reservation struct {
	Name  string `json:"name" yaml:"name"`
	Room  Room   `json:"room" yaml:"room"`
	Date  string `json:"date" yaml:"date"`
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// Fields returns the record in persisted column order.
func (r Reservation) Fields() []string {
	return []string{r.Name, string(r.Room), r.Date, r.Start, r.End}
}

func (r Reservation) TimeRange() string {
	return r.Start + "-" + r.End
}

// Slot is the parsed [Start, End) interval a reservation occupies.
type Slot struct {
	Room  Room
	Start time.Time
	End   time.Time
}

// Overlaps reports half-open interval intersection; touching slots do not overlap.
func (s Slot) Overlaps(other Slot) bool {
	return s.Start.Before(other.End) && s.End.After(other.Start)
}

// ParseSlot parses a reservation's date and times. Failures are FormatErrors.
func ParseSlot(r Reservation) (Slot, error) {
	start, err := parseSlotTime(r.Date, r.Start)
	if err != nil {
		return Slot{}, err
	}
	end, err := parseSlotTime(r.Date, r.End)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Room: r.Room, Start: start, End: end}, nil
}

func parseSlotTime(date, clock string) (time.Time, error) {
	value := strings.TrimSpace(date) + " " + strings.TrimSpace(clock)
	parsed, err := time.ParseInLocation(slotLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, FormatError{Value: value, Err: err}
	}
	return parsed, nil
}

// storedSlot parses a persisted record for comparison. Rows with a blank
// date or start are dirty, as are rows that do not parse.
func storedSlot(index int, r Reservation) (Slot, error) {
	if strings.TrimSpace(r.Date) == "" || strings.TrimSpace(r.Start) == "" {
		return Slot{}, DirtyRecordError{Index: index, Record: r, Reason: "missing date or start"}
	}
	slot, err := ParseSlot(r)
	if err != nil {
		return Slot{}, DirtyRecordError{Index: index, Record: r, Reason: err.Error()}
	}
	return slot, nil
}

// DirtyRecords lists the rows that overlap checks and the grid skip.
func DirtyRecords(records []Reservation) []DirtyRecordError {
	var dirty []DirtyRecordError
	for i, r := range records {
		if _, err := storedSlot(i, r); err != nil {
			if dre, ok := err.(DirtyRecordError); ok {
				dirty = append(dirty, dre)
			}
		}
	}
	return dirty
}

// NormalizeDate accepts YYYY-MM-DD (optionally with a time suffix from
// datetime inputs) and returns the canonical date string.
func NormalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", FormatError{Value: raw, Err: fmt.Errorf("date is required")}
	}
	if len(raw) > len(DateLayout) && (raw[len(DateLayout)] == 'T' || raw[len(DateLayout)] == ' ') {
		raw = raw[:len(DateLayout)]
	}
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return "", FormatError{Value: raw, Err: err}
	}
	return parsed.Format(DateLayout), nil
}

// NormalizeTime accepts HH:MM or HH:MM:SS and returns HH:MM, dropping seconds.
func NormalizeTime(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{TimeLayout, timeLayoutSecs} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format(TimeLayout), nil
		}
	}
	return "", FormatError{Value: raw, Err: fmt.Errorf("time must be HH:MM")}
}
