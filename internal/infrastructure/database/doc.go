// Package database provides the relational query layer for HK Energy.
//
// This package manages:
//   - Connections to the archive database (SQL Server, PostgreSQL or SQLite)
//   - Connection pooling and lifecycle management
//   - The per-table sample queries used by the ingestion engine
//
// Every facility stores its archive in a table of its own. Table and column
// names therefore cannot be bound as query parameters; they are validated as
// plain SQL identifiers and quoted for the active driver. Tag filters are
// always bound as parameters.
//
// Supported drivers:
//   - sqlserver: github.com/microsoft/go-mssqldb (production archive)
//   - pgx: github.com/jackc/pgx/v5/stdlib
//   - sqlite3: github.com/mattn/go-sqlite3 (development and tests)
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Source.DatabaseConfig())
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	src, err := database.NewSource(db, database.SourceOptions{
//	    Columns:        cfg.Source.Columns(),
//	    RequestTimeout: cfg.Source.RequestTimeout,
//	})
//	rows, err := src.QuerySamples(ctx, "Fer1", telemetry.FamilyRTU)
package database
