package booking

import "testing"

func TestBuildDayScheduleEmptyDay(t *testing.T) {
	existing := []Reservation{res(BlueRoom, "2024-01-11", "09:00", "10:00")}

	schedule := BuildDaySchedule("2024-01-10", Rooms(), existing, 9, 18, nil)

	if len(schedule.Rows) != 10 {
		t.Fatalf("rows = %d, want 10", len(schedule.Rows))
	}
	if schedule.Rows[0].Hour != 9 || schedule.Rows[9].Hour != 18 {
		t.Fatalf("hour range = %d..%d, want 9..18", schedule.Rows[0].Hour, schedule.Rows[9].Hour)
	}
	for _, row := range schedule.Rows {
		if len(row.Cells) != 2 {
			t.Fatalf("hour %d has %d cells, want 2", row.Hour, len(row.Cells))
		}
		for _, cell := range row.Cells {
			if cell.Occupied || cell.Label != FreeLabel {
				t.Fatalf("hour %d %s = %+v, want free", row.Hour, cell.Room, cell)
			}
		}
	}
	if !schedule.IsFree() {
		t.Fatalf("IsFree() = false")
	}
}

func TestBuildDayScheduleDropsTrailingFraction(t *testing.T) {
	existing := []Reservation{{Name: "Ada", Room: BlueRoom, Date: "2024-01-10", Start: "09:00", End: "11:30"}}

	schedule := BuildDaySchedule("2024-01-10", Rooms(), existing, 9, 18, nil)

	for hour, want := range map[int]bool{9: true, 10: true, 11: false} {
		cell, ok := schedule.Cell(hour, BlueRoom)
		if !ok {
			t.Fatalf("missing cell for hour %d", hour)
		}
		if cell.Occupied != want {
			t.Fatalf("hour %d occupied = %v, want %v", hour, cell.Occupied, want)
		}
	}
	cell, _ := schedule.Cell(9, BlueRoom)
	if cell.Label != "Ada" {
		t.Fatalf("label = %q, want Ada", cell.Label)
	}
	if other, _ := schedule.Cell(9, GreenRoom); other.Occupied {
		t.Fatalf("green room must stay free")
	}
}

func TestBuildDayScheduleClipsToOpeningHours(t *testing.T) {
	existing := []Reservation{
		res(GreenRoom, "2024-01-10", "07:00", "10:00"),
		res(GreenRoom, "2024-01-10", "18:00", "21:00"),
		res(BlueRoom, "2024-01-10", "20:00", "22:00"),
	}

	schedule := BuildDaySchedule("2024-01-10", Rooms(), existing, 9, 18, nil)

	occupied := 0
	for _, row := range schedule.Rows {
		for _, cell := range row.Cells {
			if cell.Occupied {
				occupied++
			}
		}
	}
	// 9 from the morning booking, 18 from the evening one.
	if occupied != 2 {
		t.Fatalf("occupied cells = %d, want 2", occupied)
	}
}

func TestBuildDayScheduleSkipsBadRows(t *testing.T) {
	existing := []Reservation{
		{Name: "no start", Room: BlueRoom, Date: "2024-01-10", Start: "", End: "10:00"},
		{Name: "bad end", Room: BlueRoom, Date: "2024-01-10", Start: "09:00", End: "x"},
		{Name: "unknown room", Room: Room("Attic"), Date: "2024-01-10", Start: "09:00", End: "10:00"},
		{Name: "no date", Room: BlueRoom, Date: "", Start: "09:00", End: "10:00"},
		res(GreenRoom, "2024-01-10", "15:00", "16:00"),
	}

	schedule := BuildDaySchedule("2024-01-10", Rooms(), existing, 9, 18, nil)

	if cell, _ := schedule.Cell(9, BlueRoom); cell.Occupied {
		t.Fatalf("bad rows must not mark cells: %+v", cell)
	}
	if cell, _ := schedule.Cell(15, GreenRoom); !cell.Occupied {
		t.Fatalf("valid row after bad rows must still render")
	}
}

func TestNameWithTimesLabel(t *testing.T) {
	existing := []Reservation{{Name: "Ada", Room: GreenRoom, Date: "2024-01-10", Start: "13:00", End: "14:30"}}

	schedule := BuildDaySchedule("2024-01-10", Rooms(), existing, 9, 18, NameWithTimesLabel)

	cell, _ := schedule.Cell(13, GreenRoom)
	if cell.Label != "Ada (13:00-14:30)" {
		t.Fatalf("label = %q", cell.Label)
	}
}

func TestBuildDayScheduleIgnoresStoredRoomCase(t *testing.T) {
	existing := []Reservation{res(Room("blue room"), "2024-01-10", "09:00", "10:00")}

	schedule := BuildDaySchedule("2024-01-10", Rooms(), existing, 9, 18, nil)

	cell, ok := schedule.Cell(9, BlueRoom)
	if !ok {
		t.Fatalf("missing cell (9, %s)", BlueRoom)
	}
	if !cell.Occupied || cell.Room != BlueRoom || cell.Label != "Ada" {
		t.Fatalf("cell (9, %s) = %+v, want occupied by Ada", BlueRoom, cell)
	}
	if cell, _ := schedule.Cell(10, BlueRoom); cell.Occupied {
		t.Fatalf("cell (10, %s) should be free", BlueRoom)
	}
}
