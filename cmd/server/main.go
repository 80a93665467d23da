// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/roombook/internal/api/bookings"
	"github.com/codr1/roombook/internal/booking"
	"github.com/codr1/roombook/internal/config"
	"github.com/codr1/roombook/internal/notify"
	"github.com/codr1/roombook/internal/ratelimit"
	"github.com/codr1/roombook/internal/scheduler"
	"github.com/codr1/roombook/internal/store"
)

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	zerolog.DefaultContextLogger = &log.Logger
}

func main() {
	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reservations, closeStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("Failed to open reservation store")
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error().Err(err).Msg("Failed to close reservation store")
		}
	}()

	dispatcher, err := newDispatcher(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure notifications")
	}

	opts := booking.Options{
		OpenHour:  cfg.Schedule.OpenHour,
		CloseHour: cfg.Schedule.CloseHour,
		Label:     booking.NameLabel,
	}
	if cfg.Schedule.ShowTimes {
		opts.Label = booking.NameWithTimesLabel
	}
	if dispatcher.Enabled() {
		opts.Notifier = dispatcher
	}
	svc := booking.NewService(reservations, opts)

	probe := scheduler.NewHealthProbe(svc)
	sched, err := newScheduler(cfg, svc, probe, dispatcher)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}

	bookings.InitHandlers(svc, bookings.Options{
		Title:   cfg.App.Name,
		Backend: cfg.Store.Backend,
		Health:  probe,
	})

	limiter := ratelimit.New(&ratelimit.Config{
		SubmitCooldown:   cfg.Limits.SubmitCooldown,
		SubmitMaxPerHour: cfg.Limits.SubmitMaxPerHour,
	})
	defer limiter.Close()

	server := newServer(cfg, limiter)

	// Fail fast on an unreachable backend rather than at the first request.
	if result := probe.Run(log.Logger.WithContext(ctx)); !result.Healthy() {
		log.Warn().Str("error", result.Error).Msg("Reservation store not reachable at startup")
	}

	sched.Start()

	g, ctx := errgroup.WithContext(ctx)

	// Run server
	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("backend", cfg.Store.Backend).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Wait for interrupt signal
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		if err := sched.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
		dispatcher.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}

func newDispatcher(ctx context.Context, cfg *config.Config) (*notify.Dispatcher, error) {
	var channels []notify.Channel
	n := cfg.Notifications

	if n.SlackWebhookURL != "" || n.SlackBotToken != "" {
		slackChannel, err := notify.NewSlackChannel(notify.SlackConfig{
			WebhookURL: n.SlackWebhookURL,
			BotToken:   n.SlackBotToken,
			Channel:    n.SlackChannel,
		})
		if err != nil {
			return nil, err
		}
		channels = append(channels, slackChannel)
		log.Info().Msg("Slack notifications enabled")
	}

	if cfg.EmailEnabled() {
		client, err := notify.NewSESClient(ctx, n.Email.AccessKeyID, n.Email.SecretAccessKey, n.Email.Region, n.Email.From)
		if err != nil {
			return nil, err
		}
		emailChannel, err := notify.NewEmailChannel(client, n.Email.To)
		if err != nil {
			return nil, err
		}
		channels = append(channels, emailChannel)
		log.Info().Str("to", n.Email.To).Msg("Email notifications enabled")
	}

	return notify.NewDispatcher(10*time.Second, channels...).LinkTo(cfg.App.BaseURL), nil
}

func newScheduler(cfg *config.Config, svc *booking.Service, probe *scheduler.HealthProbe, dispatcher *notify.Dispatcher) (*scheduler.Service, error) {
	sched, err := scheduler.New(time.Local)
	if err != nil {
		return nil, err
	}
	if cfg.Jobs.HealthProbe != "" {
		if err := scheduler.RegisterHealthProbe(sched, cfg.Jobs.HealthProbe, probe); err != nil {
			return nil, err
		}
	}
	if cfg.Jobs.DailyAgenda != "" {
		if !dispatcher.Enabled() {
			log.Warn().Msg("Daily agenda configured without notification channels; job not registered")
		} else if err := scheduler.RegisterDailyAgenda(sched, cfg.Jobs.DailyAgenda, scheduler.NewDailyAgenda(svc, dispatcher)); err != nil {
			return nil, err
		}
	}
	return sched, nil
}
