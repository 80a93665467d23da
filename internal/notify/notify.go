// Package notify fans booking events out to chat and e-mail.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/roombook/internal/booking"
)

const defaultSendTimeout = 10 * time.Second

// Message is a channel-neutral notice.
type Message struct {
	Subject string
	Body    string
}

// Channel delivers a message to one destination.
type Channel interface {
	Name() string
	Post(ctx context.Context, msg Message) error
}

// Dispatcher sends to every configured channel. It implements
// booking.Notifier.
type Dispatcher struct {
	channels []Channel
	timeout  time.Duration
	baseURL  string
	wg       sync.WaitGroup
}

func NewDispatcher(timeout time.Duration, channels ...Channel) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	d := &Dispatcher{timeout: timeout}
	for _, ch := range channels {
		if ch != nil {
			d.channels = append(d.channels, ch)
		}
	}
	return d
}

// LinkTo makes every message end with a link to the dashboard for the
// message's day. An empty baseURL leaves messages without a link.
func (d *Dispatcher) LinkTo(baseURL string) *Dispatcher {
	d.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return d
}

// Enabled reports whether any channel is configured.
func (d *Dispatcher) Enabled() bool {
	return d != nil && len(d.channels) > 0
}

// BookingCreated sends asynchronously so a slow channel never delays the
// HTTP response. Failures are logged only.
func (d *Dispatcher) BookingCreated(ctx context.Context, r booking.Reservation) {
	if !d.Enabled() {
		return
	}
	msg := withScheduleLink(BookingCreatedMessage(r), d.baseURL, r.Date)
	logger := log.Ctx(ctx).With().
		Str("room", r.Room.String()).
		Str("date", r.Date).
		Logger()

	for _, ch := range d.channels {
		d.wg.Add(1)
		go func(ch Channel) {
			defer d.wg.Done()
			sendCtx, cancel := newSendContext(ctx, d.timeout)
			defer cancel()
			if err := ch.Post(sendCtx, msg); err != nil {
				logger.Error().Err(err).Str("channel", ch.Name()).Msg("Failed to send booking notification")
				return
			}
			logger.Debug().Str("channel", ch.Name()).Msg("Booking notification sent")
		}(ch)
	}
}

// SendAgenda posts the agenda for one day to every channel and waits for
// all of them.
func (d *Dispatcher) SendAgenda(ctx context.Context, s booking.Schedule, reservations []booking.Reservation) error {
	if !d.Enabled() {
		return nil
	}
	msg := withScheduleLink(AgendaMessage(s, reservations), d.baseURL, s.Date)

	var errs []error
	for _, ch := range d.channels {
		sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
		err := ch.Post(sendCtx, msg)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Wait blocks until in-flight asynchronous sends finish.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
