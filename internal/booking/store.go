package booking

import "context"

// Store persists reservations. Implementations live in internal/store.
type Store interface {
	LoadAll(ctx context.Context) ([]Reservation, error)
	Append(ctx context.Context, r Reservation) error
}

// Resetter is implemented by stores that support a bulk clear.
type Resetter interface {
	ResetAll(ctx context.Context) error
}

// Notifier is told about reservations after they are stored.
type Notifier interface {
	BookingCreated(ctx context.Context, r Reservation)
}
