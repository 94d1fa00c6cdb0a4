package ingest

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Scheduling defaults.
const (
	// DefaultChunkSize is the number of tables fetched concurrently.
	DefaultChunkSize = 3

	// DefaultChunkPause is the pause between consecutive chunks.
	DefaultChunkPause = 100 * time.Millisecond
)

// TableRunner fetches one table. *TableFetcher implements it.
type TableRunner interface {
	FetchTable(ctx context.Context, table string) TableResult
}

// Options configures a Scheduler.
type Options struct {
	// ChunkSize bounds the number of tables fetched at once. Default: 3.
	ChunkSize int

	// ChunkPause is the wait between chunks. Zero means DefaultChunkPause;
	// use a negative value to disable the pause.
	ChunkPause time.Duration

	// Logger receives batch progress (may be nil).
	Logger Logger

	// Observer receives timings (may be nil).
	Observer Observer
}

// Scheduler runs batch scans over many tables.
//
// A Scheduler allows at most one batch in flight. State machine:
// Idle → Running → Idle. A running batch cannot be aborted; it runs until
// every chunk has completed.
//
// Thread Safety: RunBatch and Running are safe for concurrent use.
type Scheduler struct {
	runner     TableRunner
	chunkSize  int
	chunkPause time.Duration
	logger     Logger
	observer   Observer

	running atomic.Bool
	last    atomic.Pointer[BatchResult]
}

// NewScheduler creates a Scheduler.
func NewScheduler(runner TableRunner, opts Options) *Scheduler {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	switch {
	case opts.ChunkPause == 0:
		opts.ChunkPause = DefaultChunkPause
	case opts.ChunkPause < 0:
		opts.ChunkPause = 0
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}

	return &Scheduler{
		runner:     runner,
		chunkSize:  opts.ChunkSize,
		chunkPause: opts.ChunkPause,
		logger:     opts.Logger,
		observer:   opts.Observer,
	}
}

// ChunkSize returns the configured concurrency bound.
func (s *Scheduler) ChunkSize() int {
	return s.chunkSize
}

// Running reports whether a batch is currently in flight.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// LastBatch returns the most recent completed batch, or nil.
func (s *Scheduler) LastBatch() *BatchResult {
	return s.last.Load()
}

// RunBatch fetches every table and returns the merged outcome.
//
// Tables are processed in chunks of ChunkSize. All tables of a chunk are
// fetched concurrently and the chunk is awaited before the next one starts,
// with ChunkPause in between. If another batch is in flight the call returns
// immediately with Success=false and Error "already running".
//
// ctx is handed to the query layer; cancelling it makes the remaining fetches
// fail fast but the batch still runs to completion.
//
// Parameters:
//   - ctx: Context passed to every table fetch
//   - tables: Table names to scan (duplicates are scanned twice)
//
// Returns:
//   - BatchResult: Successful tables in Results, failed tables in Errors
func (s *Scheduler) RunBatch(ctx context.Context, tables []string) (res BatchResult) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("batch rejected, another batch is running", "tables", len(tables))
		s.observer.ObserveRejected()
		return BatchResult{
			Error:   ErrAlreadyRunning.Error(),
			Results: []TableResult{},
			Errors:  []TableResult{},
		}
	}

	started := time.Now()
	res = BatchResult{
		ID:            uuid.NewString(),
		Results:       make([]TableResult, 0, len(tables)),
		Errors:        []TableResult{},
		TotalSearched: len(tables),
		StartedAt:     started.UTC(),
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("batch aborted by panic", "batch_id", res.ID, "panic", r)
			res.Success = false
			res.Error = fmt.Sprintf("batch aborted: %v", r)
		}
		res.DurationMS = time.Since(started).Milliseconds()
		s.running.Store(false)
	}()

	s.logger.Info("batch started",
		"batch_id", res.ID,
		"tables", len(tables),
		"chunk_size", s.chunkSize,
	)

	chunks := Chunk(tables, s.chunkSize)
	for i, chunk := range chunks {
		for _, tr := range s.runChunk(ctx, chunk) {
			if tr.Success {
				res.Results = append(res.Results, tr)
			} else {
				res.Errors = append(res.Errors, tr)
			}
		}

		if i < len(chunks)-1 && s.chunkPause > 0 {
			pause(ctx, s.chunkPause)
		}
	}

	res.Success = true
	res.DurationMS = time.Since(started).Milliseconds()
	s.logger.Info("batch completed",
		"batch_id", res.ID,
		"succeeded", len(res.Results),
		"failed", len(res.Errors),
		"duration_ms", res.DurationMS,
	)
	s.observer.ObserveBatch(res)

	snapshot := res
	s.last.Store(&snapshot)
	return res
}

// runChunk fetches the tables of one chunk concurrently.
// Each goroutine writes only its own slot, so no lock is needed.
func (s *Scheduler) runChunk(ctx context.Context, chunk []string) []TableResult {
	out := make([]TableResult, len(chunk))

	var g errgroup.Group
	for i, table := range chunk {
		g.Go(func() error {
			start := time.Now()
			defer func() {
				if r := recover(); r != nil {
					out[i] = TableResult{
						TableName: table,
						Error:     fmt.Errorf("%w: %v", ErrFetchPanicked, r).Error(),
						FetchedAt: time.Now().UTC(),
					}
					s.logger.Error("table fetch panicked", "table", table, "panic", r)
				}
			}()

			out[i] = s.runner.FetchTable(ctx, table)
			s.observer.ObserveTable(out[i], time.Since(start))
			if !out[i].Success {
				s.logger.Warn("table fetch failed", "table", table, "error", out[i].Error)
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // fetch goroutines never return errors

	return out
}

// pause waits for d. A cancelled context shortens the wait.
func pause(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// Chunk splits tables into consecutive slices of at most size elements.
func Chunk(tables []string, size int) [][]string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunks := make([][]string, 0, (len(tables)+size-1)/size)
	for start := 0; start < len(tables); start += size {
		end := min(start+size, len(tables))
		chunks = append(chunks, tables[start:end])
	}
	return chunks
}
