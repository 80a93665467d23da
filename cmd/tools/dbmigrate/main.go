// cmd/tools/dbmigrate/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/roombook/internal/db"
	"github.com/codr1/roombook/internal/store"
)

func main() {
	var (
		dbPath   = flag.String("db", "", "Path to SQLite database")
		command  = flag.String("command", "", "Command to run (up, down, version, import)")
		fromFile = flag.String("from", "", "JSON reservation file to copy into the database (import only)")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Validate flags
	if *dbPath == "" || *command == "" {
		fmt.Fprintln(os.Stderr, "-db and -command are required:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	absDB, err := filepath.Abs(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid database path")
	}

	if *command == "import" {
		if err := importFile(absDB, *fromFile); err != nil {
			log.Fatal().Err(err).Msg("Import failed")
		}
		return
	}

	// Create database directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(absDB), 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create database directory")
	}

	sqlDB, err := sql.Open("sqlite3", absDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}

	m, err := db.NewMigrator(sqlDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migrate instance")
	}
	defer m.Close()

	// Execute command
	switch *command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		log.Info().Str("db", absDB).Msg("Successfully ran migrations up")

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("Failed to rollback migrations")
		}
		log.Info().Str("db", absDB).Msg("Successfully ran migrations down")

	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatal().Err(err).Msg("Failed to get version")
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current version")

	default:
		log.Fatal().Str("command", *command).Msg("Unknown command")
	}
}

// importFile appends every record of a JSON file store to the database.
// Rows are copied as stored; dirty rows stay dirty.
func importFile(dbPath, from string) error {
	if from == "" {
		return fmt.Errorf("-from is required for import")
	}
	if _, err := os.Stat(from); err != nil {
		return fmt.Errorf("source file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	source, err := store.NewFileStore(from)
	if err != nil {
		return err
	}
	records, err := source.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", from, err)
	}

	database, err := db.New(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	target := store.NewSQLStore(database.Queries)
	for i, r := range records {
		if err := target.Append(ctx, r); err != nil {
			return fmt.Errorf("append record %d: %w", i, err)
		}
	}
	log.Info().Int("records", len(records)).Str("from", from).Str("db", dbPath).Msg("Reservations imported")
	return nil
}
