package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/codr1/roombook/internal/booking"
	"github.com/codr1/roombook/internal/config"
	"github.com/codr1/roombook/internal/db"
)

// Open builds the configured backend. The returned close function releases
// any held resources and is never nil.
func Open(ctx context.Context, cfg config.StoreConfig) (booking.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendFile:
		s, err := NewFileStore(cfg.File.Path)
		if err != nil {
			return nil, noop, err
		}
		log.Info().Str("backend", cfg.Backend).Str("path", cfg.File.Path).Msg("Reservation store ready")
		return s, noop, nil

	case config.BackendSQLite:
		database, err := db.New(cfg.SQLite.Filename)
		if err != nil {
			return nil, noop, err
		}
		log.Info().Str("backend", cfg.Backend).Str("filename", cfg.SQLite.Filename).Msg("Reservation store ready")
		return NewSQLStore(database.Queries), database.Close, nil

	case config.BackendSheets:
		s, err := NewSheetStore(ctx, SheetConfig{
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			Worksheet:       cfg.Sheets.Worksheet,
			CredentialsJSON: []byte(cfg.Sheets.CredentialsJSON),
			CredentialsFile: cfg.Sheets.CredentialsFile,
		})
		if err != nil {
			return nil, noop, err
		}
		log.Info().Str("backend", cfg.Backend).Str("spreadsheet_id", cfg.Sheets.SpreadsheetID).Msg("Reservation store ready")
		return s, noop, nil

	default:
		return nil, noop, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}
}
