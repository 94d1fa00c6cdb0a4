package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zeynepvrl/HKUygulama/internal/telemetry"
)

// defaultRequestTimeout bounds a single sample query.
const defaultRequestTimeout = 90 * time.Second

// Tag filters per family. RTU rows are narrowed to active power readings.
var familyFilters = map[telemetry.Family][]string{
	telemetry.FamilyInverter: {"%Inverter.%"},
	telemetry.FamilyRTU:      {"%RTU.%", "%Meas.p%"},
}

// Columns names the archive table columns.
type Columns struct {
	Name      string
	Value     string
	Timestamp string
	Status    string
}

// DefaultColumns returns the column names of the SCADA archive schema.
func DefaultColumns() Columns {
	return Columns{
		Name:      "NAME",
		Value:     "WERT",
		Timestamp: "DATUMZEIT",
		Status:    "STATUS",
	}
}

// SourceOptions configures a Source.
type SourceOptions struct {
	// Columns overrides the archive column names. Empty fields use
	// DefaultColumns.
	Columns Columns

	// RequestTimeout bounds each query. Default: 90s.
	RequestTimeout time.Duration
}

// Source runs the per-table sample queries. It implements ingest.Querier.
//
// Thread Safety: QuerySamples is safe for concurrent use.
type Source struct {
	db             *DB
	name           string
	value          string
	timestamp      string
	status         string
	requestTimeout time.Duration
}

// NewSource creates a Source on top of an open database.
//
// Parameters:
//   - db: Open archive database
//   - opts: Column names and query timeout
//
// Returns:
//   - *Source: Query layer ready for use
//   - error: If a column name is not a valid identifier
func NewSource(db *DB, opts SourceOptions) (*Source, error) {
	cols := DefaultColumns()
	if opts.Columns.Name != "" {
		cols.Name = opts.Columns.Name
	}
	if opts.Columns.Value != "" {
		cols.Value = opts.Columns.Value
	}
	if opts.Columns.Timestamp != "" {
		cols.Timestamp = opts.Columns.Timestamp
	}
	if opts.Columns.Status != "" {
		cols.Status = opts.Columns.Status
	}

	s := &Source{db: db, requestTimeout: opts.RequestTimeout}
	if s.requestTimeout <= 0 {
		s.requestTimeout = defaultRequestTimeout
	}

	for _, c := range []struct {
		raw string
		dst *string
	}{
		{cols.Name, &s.name},
		{cols.Value, &s.value},
		{cols.Timestamp, &s.timestamp},
		{cols.Status, &s.status},
	} {
		quoted, ok := db.dialect.quote(c.raw)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, c.raw)
		}
		*c.dst = quoted
	}

	return s, nil
}

// QuerySamples returns the rows of table that belong to family, newest first.
//
// Parameters:
//   - ctx: Context for cancellation; the request timeout is applied on top
//   - table: Facility table name (plain or schema-qualified identifier)
//   - family: Device family whose tag filter is applied
//
// Returns:
//   - []telemetry.RawSample: Matching rows ordered by timestamp descending
//   - error: If the table name is invalid or the query fails
func (s *Source) QuerySamples(ctx context.Context, table string, family telemetry.Family) ([]telemetry.RawSample, error) {
	query, args, err := s.buildQuery(table, family)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	rows := []telemetry.RawSample{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying %s samples from %s: %w", family, table, err)
	}
	return rows, nil
}

// buildQuery renders the sample query for a table and family.
func (s *Source) buildQuery(table string, family telemetry.Family) (string, []any, error) {
	filters, ok := familyFilters[family]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownFamily, family)
	}
	quotedTable, ok := s.db.dialect.quote(table)
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s AS name, %s AS value, %s AS ts, %s AS status FROM %s WHERE ",
		s.name, s.value, s.db.dialect.timestamp(s.timestamp), s.status, quotedTable)

	args := make([]any, 0, len(filters))
	for i, f := range filters {
		if i > 0 {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "%s LIKE ?", s.name)
		args = append(args, f)
	}
	fmt.Fprintf(&b, " ORDER BY %s DESC", s.timestamp)

	return s.db.Rebind(b.String()), args, nil
}
