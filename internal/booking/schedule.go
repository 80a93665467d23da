package booking

import (
	"fmt"
	"strconv"
	"strings"
)

// FreeLabel marks a grid cell no reservation occupies.
const FreeLabel = "Free"

// Labeler renders the text shown in an occupied cell.
type Labeler func(Reservation) string

func NameLabel(r Reservation) string {
	return r.Name
}

func NameWithTimesLabel(r Reservation) string {
	return fmt.Sprintf("%s (%s)", r.Name, r.TimeRange())
}

type Cell struct {
	Room     Room   `json:"room"`
	Occupied bool   `json:"occupied"`
	Label    string `json:"label"`
}

type Row struct {
	Hour  int    `json:"hour"`
	Cells []Cell `json:"cells"`
}

// Schedule is the hour-by-room occupancy table for one day.
type Schedule struct {
	Date  string `json:"date"`
	Rooms []Room `json:"rooms"`
	Rows  []Row  `json:"rows"`
}

// Cell looks up the cell for an hour and room.
func (s Schedule) Cell(hour int, room Room) (Cell, bool) {
	for _, row := range s.Rows {
		if row.Hour != hour {
			continue
		}
		for _, cell := range row.Cells {
			if cell.Room == room {
				return cell, true
			}
		}
	}
	return Cell{}, false
}

// IsFree reports whether every cell is free.
func (s Schedule) IsFree() bool {
	for _, row := range s.Rows {
		for _, cell := range row.Cells {
			if cell.Occupied {
				return false
			}
		}
	}
	return true
}

// BuildDaySchedule fills an hourly grid for date. Rows run from openHour to
// closeHour inclusive. A reservation marks every whole hour in
// [startHour, endHour); minutes are dropped, so 09:00-11:30 marks 9 and 10.
func BuildDaySchedule(date string, rooms []Room, existing []Reservation, openHour, closeHour int, label Labeler) Schedule {
	if label == nil {
		label = NameLabel
	}

	schedule := Schedule{Date: date, Rooms: rooms}
	rowIndex := make(map[int]int)
	for hour := openHour; hour <= closeHour; hour++ {
		cells := make([]Cell, len(rooms))
		for i, room := range rooms {
			cells[i] = Cell{Room: room, Label: FreeLabel}
		}
		rowIndex[hour] = len(schedule.Rows)
		schedule.Rows = append(schedule.Rows, Row{Hour: hour, Cells: cells})
	}

	colIndex := make(map[Room]int, len(rooms))
	for i, room := range rooms {
		colIndex[room] = i
	}

	for _, r := range existing {
		if strings.TrimSpace(r.Date) != date {
			continue
		}
		col, ok := colIndex[CanonicalRoom(string(r.Room))]
		if !ok {
			continue
		}
		startHour, endHour, err := hourSpan(r)
		if err != nil {
			continue
		}
		text := label(r)
		for hour := startHour; hour < endHour; hour++ {
			idx, ok := rowIndex[hour]
			if !ok {
				continue
			}
			schedule.Rows[idx].Cells[col] = Cell{Room: rooms[col], Occupied: true, Label: text}
		}
	}

	return schedule
}

func hourSpan(r Reservation) (int, int, error) {
	start, err := leadingHour(r.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err := leadingHour(r.End)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func leadingHour(clock string) (int, error) {
	head, _, _ := strings.Cut(strings.TrimSpace(clock), ":")
	return strconv.Atoi(head)
}
