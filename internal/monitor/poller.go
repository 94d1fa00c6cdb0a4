package monitor

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/zeynepvrl/HKUygulama/internal/ingest"
)

// DefaultSchedule scans every minute.
const DefaultSchedule = "@every 60s"

// BatchRunner runs batch scans. *ingest.Scheduler implements it.
type BatchRunner interface {
	RunBatch(ctx context.Context, tables []string) ingest.BatchResult
	Running() bool
}

// Sink receives the report of every completed scan.
// Implementations must be safe for concurrent use and should not block long.
type Sink interface {
	HandleReport(ctx context.Context, report Report)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, report Report)

// HandleReport calls f.
func (f SinkFunc) HandleReport(ctx context.Context, report Report) {
	f(ctx, report)
}

// PollerOptions configures a Poller.
type PollerOptions struct {
	// Schedule is a cron spec or descriptor. Default: "@every 60s".
	Schedule string

	// RunOnStart triggers a scan as soon as Start is called.
	RunOnStart bool

	// Sinks receive every completed scan in order.
	Sinks []Sink

	// Logger (may be nil).
	Logger Logger
}

// Poller runs a batch scan of every facility on a cron schedule.
//
// Overlapping runs are skipped by the cron chain, and any scan triggered
// while another is in flight is rejected by the scheduler's guard.
//
// Thread Safety: Scan may be called concurrently with the schedule.
type Poller struct {
	runner     BatchRunner
	facilities *Facilities
	store      *Store
	cron       *cron.Cron
	runOnStart bool
	logger     Logger

	sinksMu sync.RWMutex
	sinks   []Sink

	mu      sync.Mutex
	baseCtx context.Context
	started bool
}

// NewPoller creates a Poller.
//
// Parameters:
//   - runner: Batch runner (the ingest scheduler)
//   - facilities: Facilities whose tables are scanned
//   - store: Store every completed batch is merged into
//   - opts: Schedule, sinks and logger
//
// Returns:
//   - *Poller: Stopped poller
//   - error: If the schedule cannot be parsed
func NewPoller(runner BatchRunner, facilities *Facilities, store *Store, opts PollerOptions) (*Poller, error) {
	if opts.Schedule == "" {
		opts.Schedule = DefaultSchedule
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}

	p := &Poller{
		runner:     runner,
		facilities: facilities,
		store:      store,
		runOnStart: opts.RunOnStart,
		logger:     opts.Logger,
		sinks:      append([]Sink(nil), opts.Sinks...),
		baseCtx:    context.Background(),
	}

	cl := cronLogger{logger: opts.Logger}
	p.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := p.cron.AddFunc(opts.Schedule, p.tick); err != nil {
		return nil, fmt.Errorf("parsing scan schedule %q: %w", opts.Schedule, err)
	}

	return p, nil
}

// AddSink registers an additional sink.
func (p *Poller) AddSink(s Sink) {
	p.sinksMu.Lock()
	p.sinks = append(p.sinks, s)
	p.sinksMu.Unlock()
}

// Start begins scheduled scanning. ctx is passed to every scheduled scan.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.baseCtx = ctx
	p.mu.Unlock()

	p.cron.Start()
	p.logger.Info("poller started", "tables", p.facilities.Len())

	if p.runOnStart {
		go p.tick()
	}
}

// Stop halts the schedule and waits for a running scheduled scan to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	<-p.cron.Stop().Done()
	p.logger.Info("poller stopped")
}

func (p *Poller) tick() {
	p.mu.Lock()
	ctx := p.baseCtx
	p.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	p.Scan(ctx)
}

// Scan runs one batch over every facility table immediately.
//
// A rejected batch (another scan running) is returned as-is and does not
// reach the store or the sinks.
func (p *Poller) Scan(ctx context.Context) ingest.BatchResult {
	res := p.runner.RunBatch(ctx, p.facilities.Tables())
	if res.AlreadyRunning() {
		p.logger.Warn("scan skipped, a batch is already running")
		return res
	}
	if !p.store.Merge(res) {
		p.logger.Error("scan failed", "batch_id", res.ID, "error", res.Error)
		return res
	}

	report := BuildReport(res, p.facilities)
	if len(report.Violations) > 0 {
		p.logger.Warn("RTU limit violations", "batch_id", res.ID, "count", len(report.Violations))
	}
	p.dispatch(ctx, report)
	return res
}

// dispatch delivers a report to every sink, isolating sink panics.
func (p *Poller) dispatch(ctx context.Context, report Report) {
	p.sinksMu.RLock()
	sinks := append([]Sink(nil), p.sinks...)
	p.sinksMu.RUnlock()

	for _, s := range sinks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("sink panicked", "panic", r, "batch_id", report.Batch.ID)
				}
			}()
			s.HandleReport(ctx, report)
		}()
	}
}
