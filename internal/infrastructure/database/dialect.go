package database

import (
	"fmt"
	"regexp"
	"strings"
)

// Driver names accepted in the source configuration.
const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "pgx"
	DriverSQLite    = "sqlite3"
)

// identPattern matches one unquoted SQL identifier.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// dialect holds the driver-specific SQL fragments.
type dialect struct {
	driver string
	open   string
	close  string
	// timestamp renders a datetime column as "YYYY-MM-DD hh:mm:ss" text.
	timestamp func(col string) string
}

var dialects = map[string]dialect{
	DriverSQLServer: {
		driver: DriverSQLServer,
		open:   "[",
		close:  "]",
		timestamp: func(col string) string {
			return "CONVERT(VARCHAR(50), " + col + ", 120)"
		},
	},
	DriverPostgres: {
		driver: DriverPostgres,
		open:   `"`,
		close:  `"`,
		timestamp: func(col string) string {
			return "to_char(" + col + ", 'YYYY-MM-DD HH24:MI:SS')"
		},
	},
	DriverSQLite: {
		driver: DriverSQLite,
		open:   `"`,
		close:  `"`,
		timestamp: func(col string) string {
			return "strftime('%Y-%m-%d %H:%M:%S', " + col + ")"
		},
	},
}

// dialectFor returns the dialect of a driver name.
func dialectFor(driver string) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	return d, nil
}

// quote validates and quotes a possibly schema-qualified identifier.
func (d dialect) quote(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if !identPattern.MatchString(p) {
			return "", false
		}
		parts[i] = d.open + p + d.close
	}
	return strings.Join(parts, "."), true
}

// ValidIdentifier reports whether name can be used as a table or column name.
func ValidIdentifier(name string) bool {
	_, ok := dialects[DriverSQLite].quote(name)
	return ok
}
