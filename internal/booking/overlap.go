package booking

// FindConflict returns the first existing reservation in the candidate's
// room whose slot intersects the candidate's. Only the candidate's parse
// errors are returned; unparsable existing rows are skipped.
func FindConflict(candidate Reservation, existing []Reservation) (Reservation, bool, error) {
	want, err := ParseSlot(candidate)
	if err != nil {
		return Reservation{}, false, err
	}

	room := CanonicalRoom(string(candidate.Room))
	for i, r := range existing {
		if CanonicalRoom(string(r.Room)) != room {
			continue
		}
		slot, err := storedSlot(i, r)
		if err != nil {
			continue
		}
		if want.Overlaps(slot) {
			return r, true, nil
		}
	}
	return Reservation{}, false, nil
}

// IsOverlapping reports whether candidate collides with any existing
// reservation for the same room.
func IsOverlapping(candidate Reservation, existing []Reservation) (bool, error) {
	_, found, err := FindConflict(candidate, existing)
	return found, err
}
