package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/codr1/roombook/internal/booking"
	"github.com/codr1/roombook/internal/config"
)

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		cfg      func() config.StoreConfig
		resetter bool
	}{
		{"file", func() config.StoreConfig {
			var c config.StoreConfig
			c.Backend = config.BackendFile
			c.File.Path = filepath.Join(dir, "file", "bookings.json")
			return c
		}, true},
		{"sqlite", func() config.StoreConfig {
			var c config.StoreConfig
			c.Backend = config.BackendSQLite
			c.SQLite.Filename = filepath.Join(dir, "sqlite", "bookings.db")
			return c
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, closeFn, err := Open(context.Background(), tt.cfg())
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			t.Cleanup(func() { _ = closeFn() })

			if _, ok := s.(booking.Resetter); ok != tt.resetter {
				t.Fatalf("Resetter = %v, want %v", ok, tt.resetter)
			}
			records, err := s.LoadAll(context.Background())
			if err != nil {
				t.Fatalf("LoadAll() error = %v", err)
			}
			if len(records) != 0 {
				t.Fatalf("new store has %d records", len(records))
			}
		})
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	var c config.StoreConfig
	c.Backend = "postgres"
	if _, _, err := Open(context.Background(), c); err == nil {
		t.Fatalf("expected error")
	}
}

func TestOpenSheetsRequiresCredentials(t *testing.T) {
	var c config.StoreConfig
	c.Backend = config.BackendSheets
	c.Sheets.SpreadsheetID = "abc"
	if _, _, err := Open(context.Background(), c); err == nil {
		t.Fatalf("expected credentials error")
	}
}
