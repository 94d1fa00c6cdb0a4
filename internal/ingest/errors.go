package ingest

import "errors"

// Sentinel errors for ingestion.
var (
	// ErrAlreadyRunning is reported when RunBatch is called while another
	// batch is still in flight.
	ErrAlreadyRunning = errors.New("already running")

	// ErrBothQueriesFailed is reported when neither family could be fetched
	// for a table.
	ErrBothQueriesFailed = errors.New("both queries failed")

	// ErrFetchPanicked wraps a panic recovered inside a fetch.
	ErrFetchPanicked = errors.New("fetch panicked")
)
