// Package ingest fetches telemetry tables and schedules batch scans.
//
// The package is the I/O half of the ingestion engine. It depends on a
// Querier (the relational query layer) and on the pure telemetry package.
//
// # Components
//
//   - Fetcher: one device family against one table (InverterFetcher, RTUFetcher)
//   - TableFetcher: runs both family fetchers for a table in parallel and
//     combines them, tolerating the failure of one side
//   - Scheduler: runs a batch of tables in fixed-size chunks with at most one
//     batch in flight per Scheduler
//
// # Error Handling
//
// Nothing escapes RunBatch as an error or a panic. Query failures become
// failed TableResults, a concurrent call becomes a BatchResult whose Error is
// ErrAlreadyRunning's message, and a coordinator panic becomes a failed
// BatchResult. The in-flight flag is cleared on every path.
//
// # Usage
//
//	sched := ingest.NewScheduler(
//	    ingest.NewTableFetcher(source, logger),
//	    ingest.Options{ChunkSize: 3, ChunkPause: 100 * time.Millisecond},
//	)
//	res := sched.RunBatch(ctx, []string{"Fer1", "Fer2", "Som"})
package ingest
