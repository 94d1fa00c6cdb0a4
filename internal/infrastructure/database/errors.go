package database

import "errors"

// Sentinel errors for the query layer.
var (
	// ErrUnsupportedDriver is returned when the configured driver is not one
	// of sqlserver, pgx or sqlite3.
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// ErrInvalidTable is returned when a table name is not a plain identifier.
	ErrInvalidTable = errors.New("invalid table name")

	// ErrInvalidColumn is returned when a configured column name is not a
	// plain identifier.
	ErrInvalidColumn = errors.New("invalid column name")

	// ErrUnknownFamily is returned when a query is requested for a family
	// without a tag filter.
	ErrUnknownFamily = errors.New("unknown device family")

	// ErrNotConnected is returned when the database handle has been closed.
	ErrNotConnected = errors.New("database not connected")
)
