package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/zeynepvrl/HKUygulama/internal/telemetry"
)

const archiveSchema = `CREATE TABLE Fer1 (
	NAME TEXT NOT NULL,
	WERT REAL NOT NULL,
	DATUMZEIT TEXT NOT NULL,
	STATUS INTEGER NOT NULL
)`

type archiveRow struct {
	name   string
	value  float64
	ts     string
	status int64
}

func seedArchive(t *testing.T, db *DB, rows []archiveRow) {
	t.Helper()

	if _, err := db.ExecContext(context.Background(), archiveSchema); err != nil {
		t.Fatalf("creating archive table: %v", err)
	}
	for _, r := range rows {
		_, err := db.ExecContext(context.Background(),
			"INSERT INTO Fer1 (NAME, WERT, DATUMZEIT, STATUS) VALUES (?, ?, ?, ?)",
			r.name, r.value, r.ts, r.status)
		if err != nil {
			t.Fatalf("inserting row: %v", err)
		}
	}
}

func defaultArchive() []archiveRow {
	return []archiveRow{
		{"GES.Fer1.Inverter.3.Active_Power", 100, "2024-05-01 10:00:01", 131072},
		{"GES.Fer1.Inverter.3.Active_Power", 120, "2024-05-01 10:00:03", 131072},
		{"GES.Fer1.Inverter.4.DC_Voltage", 640, "2024-05-01 10:00:02", 0},
		{"GES.Fer1.RTU.7.Meas.p.kw", -950, "2024-05-01 10:00:02", 131072},
		{"GES.Fer1.RTU.7.Meas.q.kvar", 12, "2024-05-01 10:00:02", 131072},
		{"GES.Fer1.Weather.Irradiance", 800, "2024-05-01 10:00:02", 131072},
	}
}

func TestSource_QuerySamples(t *testing.T) {
	db := openTestDB(t)
	seedArchive(t, db, defaultArchive())

	src, err := NewSource(db, SourceOptions{})
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	t.Run("inverter rows newest first", func(t *testing.T) {
		rows, err := src.QuerySamples(context.Background(), "Fer1", telemetry.FamilyInverter)
		if err != nil {
			t.Fatalf("QuerySamples() error = %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("got %d rows, want 3: %+v", len(rows), rows)
		}
		wantTS := []string{"2024-05-01 10:00:03", "2024-05-01 10:00:02", "2024-05-01 10:00:01"}
		for i, r := range rows {
			if r.Timestamp != wantTS[i] {
				t.Errorf("rows[%d].Timestamp = %q, want %q", i, r.Timestamp, wantTS[i])
			}
		}
		if rows[0].Value != 120 || rows[0].Status != 131072 {
			t.Errorf("rows[0] = %+v", rows[0])
		}
	})

	t.Run("rtu rows limited to active power", func(t *testing.T) {
		rows, err := src.QuerySamples(context.Background(), "Fer1", telemetry.FamilyRTU)
		if err != nil {
			t.Fatalf("QuerySamples() error = %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("got %d rows, want 1: %+v", len(rows), rows)
		}
		if rows[0].Name != "GES.Fer1.RTU.7.Meas.p.kw" || rows[0].Value != -950 {
			t.Errorf("row = %+v, want raw signed RTU active power", rows[0])
		}
	})

	t.Run("missing table fails", func(t *testing.T) {
		if _, err := src.QuerySamples(context.Background(), "Som", telemetry.FamilyRTU); err == nil {
			t.Error("QuerySamples() should fail for a missing table")
		}
	})

	t.Run("invalid table rejected", func(t *testing.T) {
		_, err := src.QuerySamples(context.Background(), "Fer1; DROP TABLE Fer1", telemetry.FamilyRTU)
		if !errors.Is(err, ErrInvalidTable) {
			t.Errorf("QuerySamples() error = %v, want ErrInvalidTable", err)
		}
	})

	t.Run("unknown family rejected", func(t *testing.T) {
		_, err := src.QuerySamples(context.Background(), "Fer1", telemetry.Family("Meter"))
		if !errors.Is(err, ErrUnknownFamily) {
			t.Errorf("QuerySamples() error = %v, want ErrUnknownFamily", err)
		}
	})

	t.Run("empty table returns empty slice", func(t *testing.T) {
		if _, err := db.ExecContext(context.Background(), strings.Replace(archiveSchema, "Fer1", "Som", 1)); err != nil {
			t.Fatalf("creating table: %v", err)
		}
		rows, err := src.QuerySamples(context.Background(), "Som", telemetry.FamilyInverter)
		if err != nil {
			t.Fatalf("QuerySamples() error = %v", err)
		}
		if rows == nil || len(rows) != 0 {
			t.Errorf("rows = %#v, want empty non-nil slice", rows)
		}
	})
}

func TestSource_CancelledContext(t *testing.T) {
	db := openTestDB(t)
	seedArchive(t, db, defaultArchive())
	src, err := NewSource(db, SourceOptions{})
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := src.QuerySamples(ctx, "Fer1", telemetry.FamilyInverter); err == nil {
		t.Error("QuerySamples() should fail with a cancelled context")
	}
}

func TestNewSource_InvalidColumn(t *testing.T) {
	db := openTestDB(t)

	_, err := NewSource(db, SourceOptions{Columns: Columns{Value: "WERT)--"}})
	if !errors.Is(err, ErrInvalidColumn) {
		t.Errorf("NewSource() error = %v, want ErrInvalidColumn", err)
	}
}

func TestSource_BuildQueryPerDriver(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{
			driver: DriverSQLServer,
			want: "SELECT [NAME] AS name, [WERT] AS value, CONVERT(VARCHAR(50), [DATUMZEIT], 120) AS ts, " +
				"[STATUS] AS status FROM [dbo].[Fer1] WHERE [NAME] LIKE @p1 AND [NAME] LIKE @p2 ORDER BY [DATUMZEIT] DESC",
		},
		{
			driver: DriverPostgres,
			want: `SELECT "NAME" AS name, "WERT" AS value, to_char("DATUMZEIT", 'YYYY-MM-DD HH24:MI:SS') AS ts, ` +
				`"STATUS" AS status FROM "dbo"."Fer1" WHERE "NAME" LIKE $1 AND "NAME" LIKE $2 ORDER BY "DATUMZEIT" DESC`,
		},
		{
			driver: DriverSQLite,
			want: `SELECT "NAME" AS name, "WERT" AS value, strftime('%Y-%m-%d %H:%M:%S', "DATUMZEIT") AS ts, ` +
				`"STATUS" AS status FROM "dbo"."Fer1" WHERE "NAME" LIKE ? AND "NAME" LIKE ? ORDER BY "DATUMZEIT" DESC`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			db := &DB{DB: sqlx.NewDb(nil, tt.driver), dialect: dialects[tt.driver]}
			src, err := NewSource(db, SourceOptions{})
			if err != nil {
				t.Fatalf("NewSource() error = %v", err)
			}

			query, args, err := src.buildQuery("dbo.Fer1", telemetry.FamilyRTU)
			if err != nil {
				t.Fatalf("buildQuery() error = %v", err)
			}
			if query != tt.want {
				t.Errorf("query =\n%s\nwant\n%s", query, tt.want)
			}
			if len(args) != 2 || args[0] != "%RTU.%" || args[1] != "%Meas.p%" {
				t.Errorf("args = %v", args)
			}
		})
	}
}
