package booking

import (
	"fmt"
	"strings"
)

// Room is one of the fixed bookable rooms.
type Room string

const (
	BlueRoom  Room = "Blue Room"
	GreenRoom Room = "Green Room"
)

var rooms = []Room{BlueRoom, GreenRoom}

// Rooms returns the fixed room set in display order.
func Rooms() []Room {
	out := make([]Room, len(rooms))
	copy(out, rooms)
	return out
}

// ParseRoom matches a room name case-insensitively.
func ParseRoom(value string) (Room, error) {
	value = strings.TrimSpace(value)
	for _, room := range rooms {
		if strings.EqualFold(string(room), value) {
			return room, nil
		}
	}
	return "", ValidationError{Field: "room", Reason: fmt.Sprintf("must be one of %s", roomList())}
}

// CanonicalRoom maps a stored room value onto the fixed room it names,
// ignoring case and surrounding space. Unknown values come back unchanged.
func CanonicalRoom(value string) Room {
	if room, err := ParseRoom(value); err == nil {
		return room
	}
	return Room(value)
}

func (r Room) String() string {
	return string(r)
}

func roomList() string {
	names := make([]string, len(rooms))
	for i, room := range rooms {
		names[i] = string(room)
	}
	return strings.Join(names, ", ")
}
