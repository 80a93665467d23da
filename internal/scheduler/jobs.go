package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/roombook/internal/booking"
)

const (
	healthProbeJobName = "store_health_probe"
	dailyAgendaJobName = "daily_agenda"
	jobTimeout         = 2 * time.Minute
)

// Prober loads the store once and returns the record count.
type Prober interface {
	Probe(ctx context.Context) (int, error)
}

// ProbeResult is the outcome of the most recent backend probe.
type ProbeResult struct {
	CheckedAt time.Time     `json:"checked_at"`
	Duration  time.Duration `json:"duration"`
	Records   int           `json:"records"`
	Error     string        `json:"error,omitempty"`
}

func (r ProbeResult) Healthy() bool {
	return r.Error == ""
}

// HealthProbe runs Prober and keeps the latest result for /health.
type HealthProbe struct {
	prober Prober
	now    func() time.Time

	mu   sync.RWMutex
	last ProbeResult
	ran  bool
}

func NewHealthProbe(prober Prober) *HealthProbe {
	return &HealthProbe{prober: prober, now: time.Now}
}

func (h *HealthProbe) Run(ctx context.Context) ProbeResult {
	start := h.now()
	records, err := h.prober.Probe(ctx)
	result := ProbeResult{
		CheckedAt: start.UTC(),
		Duration:  h.now().Sub(start),
		Records:   records,
	}
	if err != nil {
		result.Error = err.Error()
		log.Ctx(ctx).Warn().Err(err).Msg("Reservation store probe failed")
	}

	h.mu.Lock()
	h.last = result
	h.ran = true
	h.mu.Unlock()
	return result
}

// Last returns the latest result; false until the first run.
func (h *HealthProbe) Last() (ProbeResult, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.ran
}

// RegisterHealthProbe runs the probe on cronExpr.
func RegisterHealthProbe(s *Service, cronExpr string, probe *HealthProbe) error {
	if probe == nil {
		return fmt.Errorf("health probe job requires a probe")
	}
	jobLogger := log.With().Str("component", "health_probe_job").Logger()
	_, err := s.AddJob(healthProbeJobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		probe.Run(jobLogger.WithContext(ctx))
	})
	return err
}

// DaySource builds the grid and record list for a date.
type DaySource interface {
	DaySchedule(ctx context.Context, date string) (booking.Schedule, []booking.Reservation, error)
}

// AgendaSender delivers the agenda for one day.
type AgendaSender interface {
	SendAgenda(ctx context.Context, s booking.Schedule, reservations []booking.Reservation) error
}

// DailyAgenda sends today's reservations. Days without bookings are skipped.
type DailyAgenda struct {
	source DaySource
	sender AgendaSender
	now    func() time.Time
}

func NewDailyAgenda(source DaySource, sender AgendaSender) *DailyAgenda {
	return &DailyAgenda{source: source, sender: sender, now: time.Now}
}

// Run returns whether an agenda was sent.
func (a *DailyAgenda) Run(ctx context.Context) (bool, error) {
	date := a.now().Format(booking.DateLayout)
	logger := log.Ctx(ctx).With().Str("date", date).Logger()

	schedule, existing, err := a.source.DaySchedule(ctx, date)
	if err != nil {
		return false, fmt.Errorf("load agenda for %s: %w", date, err)
	}

	var today []booking.Reservation
	for _, r := range existing {
		if r.Date == date {
			today = append(today, r)
		}
	}
	if len(today) == 0 {
		logger.Debug().Msg("No reservations today, agenda skipped")
		return false, nil
	}

	if err := a.sender.SendAgenda(ctx, schedule, today); err != nil {
		return false, fmt.Errorf("send agenda for %s: %w", date, err)
	}
	logger.Info().Int("reservations", len(today)).Msg("Daily agenda sent")
	return true, nil
}

// RegisterDailyAgenda runs the agenda on cronExpr.
func RegisterDailyAgenda(s *Service, cronExpr string, agenda *DailyAgenda) error {
	if agenda == nil {
		return fmt.Errorf("daily agenda job requires an agenda")
	}
	jobLogger := log.With().Str("component", "daily_agenda_job").Logger()
	_, err := s.AddJob(dailyAgendaJobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if _, err := agenda.Run(jobLogger.WithContext(ctx)); err != nil {
			jobLogger.Error().Err(err).Msg("Daily agenda failed")
		}
	})
	return err
}
