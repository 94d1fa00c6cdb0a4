package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// TestOpen verifies database connection establishment.
func TestOpen(t *testing.T) {
	t.Run("opens sqlite archive", func(t *testing.T) {
		db, err := Open(context.Background(), Config{
			Driver: DriverSQLite,
			DSN:    filepath.Join(t.TempDir(), "archive.db"),
		})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if db.Driver() != DriverSQLite {
			t.Errorf("Driver() = %q, want %q", db.Driver(), DriverSQLite)
		}
	})

	t.Run("rejects unsupported driver", func(t *testing.T) {
		_, err := Open(context.Background(), Config{Driver: "oracle", DSN: "x"})
		if !errors.Is(err, ErrUnsupportedDriver) {
			t.Errorf("Open() error = %v, want ErrUnsupportedDriver", err)
		}
	})

	t.Run("fails when database unreachable", func(t *testing.T) {
		_, err := Open(context.Background(), Config{
			Driver: DriverSQLite,
			DSN:    filepath.Join(t.TempDir(), "missing", "dir", "archive.db"),
		})
		if err == nil {
			t.Error("Open() should fail for a path in a missing directory")
		}
	})

	t.Run("applies pool limits", func(t *testing.T) {
		db, err := Open(context.Background(), Config{
			Driver:       DriverSQLite,
			DSN:          filepath.Join(t.TempDir(), "archive.db"),
			MaxOpenConns: 4,
		})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if got := db.Stats().MaxOpenConnections; got != 4 {
			t.Errorf("MaxOpenConnections = %d, want 4", got)
		}
	})
}

// TestHealthCheck verifies the health check functionality.
func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := db.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() should fail after Close()")
	}
}

// TestClose verifies graceful shutdown.
func TestClose(t *testing.T) {
	db := openTestDB(t)

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	empty := &DB{}
	if err := empty.Close(); err != nil {
		t.Errorf("Close() on empty DB error = %v", err)
	}
	if err := empty.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() on empty DB error = %v, want ErrNotConnected", err)
	}
}

func TestValidIdentifier(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Fer1", true},
		{"Verdeges5", true},
		{"dbo.Fer1", true},
		{"_archive", true},
		{"", false},
		{"1table", false},
		{"Fer1; DROP TABLE x", false},
		{"Fer-1", false},
		{"dbo.", false},
		{"[Fer1]", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidIdentifier(tt.name); got != tt.want {
				t.Errorf("ValidIdentifier(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

// openTestDB creates a file-backed SQLite archive for testing.
// A file is used because every pooled :memory: connection gets its own database.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(context.Background(), Config{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "archive.db"),
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	return db
}
