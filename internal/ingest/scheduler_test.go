package ingest

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zeynepvrl/HKUygulama/internal/telemetry"
)

// recordingRunner records concurrency and returns canned outcomes.
type recordingRunner struct {
	mu       sync.Mutex
	fail     map[string]bool
	panicOn  string
	delay    time.Duration
	order    []string
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (r *recordingRunner) FetchTable(_ context.Context, table string) TableResult {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	r.mu.Lock()
	r.order = append(r.order, table)
	r.mu.Unlock()

	if table == r.panicOn {
		panic("boom")
	}
	if r.fail[table] {
		return TableResult{TableName: table, Error: "both queries failed"}
	}
	return TableResult{TableName: table, Success: true}
}

// blockingRunner blocks every fetch until release is closed.
type blockingRunner struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{started: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingRunner) FetchTable(_ context.Context, table string) TableResult {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return TableResult{TableName: table, Success: true}
}

func noPause() Options {
	return Options{ChunkPause: -1}
}

func TestChunk(t *testing.T) {
	tables := []string{"a", "b", "c", "d", "e", "f", "g"}

	got := Chunk(tables, 3)
	want := [][]string{{"a", "b", "c"}, {"d", "e", "f"}, {"g"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Chunk() = %v, want %v", got, want)
	}

	if got := Chunk(nil, 3); len(got) != 0 {
		t.Errorf("Chunk(nil) = %v, want empty", got)
	}
	if got := Chunk(tables, 0); len(got) != 3 {
		t.Errorf("Chunk(size 0) produced %d chunks, want default size 3", len(got))
	}
	if got := Chunk(tables, 10); len(got) != 1 || len(got[0]) != 7 {
		t.Errorf("Chunk(size 10) = %v, want one chunk", got)
	}
}

func TestNewScheduler_Defaults(t *testing.T) {
	s := NewScheduler(&recordingRunner{}, Options{})
	if s.ChunkSize() != DefaultChunkSize {
		t.Errorf("ChunkSize() = %d, want %d", s.ChunkSize(), DefaultChunkSize)
	}
	if s.chunkPause != DefaultChunkPause {
		t.Errorf("chunkPause = %v, want %v", s.chunkPause, DefaultChunkPause)
	}
	if s.Running() {
		t.Error("new scheduler should be idle")
	}
}

func TestRunBatch_SevenTablesThreeChunks(t *testing.T) {
	runner := &recordingRunner{
		fail:  map[string]bool{"t2": true, "t5": true},
		delay: 5 * time.Millisecond,
	}
	s := NewScheduler(runner, noPause())
	tables := []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7"}

	res := s.RunBatch(context.Background(), tables)

	if !res.Success {
		t.Fatalf("RunBatch() failed: %s", res.Error)
	}
	if res.TotalSearched != 7 {
		t.Errorf("TotalSearched = %d, want 7", res.TotalSearched)
	}
	if len(res.Results) != 5 || len(res.Errors) != 2 {
		t.Errorf("results/errors = %d/%d, want 5/2", len(res.Results), len(res.Errors))
	}
	if peak := runner.peak.Load(); peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}

	// Every table of chunk N must finish before any table of chunk N+1.
	chunkOf := map[string]int{"t1": 0, "t2": 0, "t3": 0, "t4": 1, "t5": 1, "t6": 1, "t7": 2}
	prev := 0
	for _, table := range runner.order {
		c := chunkOf[table]
		if c < prev {
			t.Fatalf("table %s (chunk %d) finished after a chunk %d table: %v", table, c, prev, runner.order)
		}
		prev = c
	}

	if res.ID == "" {
		t.Error("batch ID should be set")
	}
	if s.Running() {
		t.Error("scheduler should be idle after the batch")
	}
	if last := s.LastBatch(); last == nil || last.ID != res.ID {
		t.Errorf("LastBatch() = %+v, want batch %s", last, res.ID)
	}
}

func TestRunBatch_ConfigurableChunkSize(t *testing.T) {
	runner := &recordingRunner{delay: 5 * time.Millisecond}
	s := NewScheduler(runner, Options{ChunkSize: 2, ChunkPause: -1})

	s.RunBatch(context.Background(), []string{"a", "b", "c", "d", "e"})

	if peak := runner.peak.Load(); peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestRunBatch_PausesBetweenChunksOnly(t *testing.T) {
	const pauseFor = 40 * time.Millisecond
	s := NewScheduler(&recordingRunner{}, Options{ChunkSize: 1, ChunkPause: pauseFor})

	start := time.Now()
	s.RunBatch(context.Background(), []string{"a", "b", "c"})
	elapsed := time.Since(start)

	if elapsed < 2*pauseFor {
		t.Errorf("elapsed %v, want at least two pauses (%v)", elapsed, 2*pauseFor)
	}

	start = time.Now()
	s.RunBatch(context.Background(), []string{"a"})
	if elapsed := time.Since(start); elapsed >= pauseFor {
		t.Errorf("single chunk took %v, should not pause after the last chunk", elapsed)
	}
}

func TestRunBatch_EmptyTableList(t *testing.T) {
	s := NewScheduler(&recordingRunner{}, noPause())

	res := s.RunBatch(context.Background(), nil)

	if !res.Success || res.TotalSearched != 0 {
		t.Errorf("RunBatch(nil) = %+v, want empty success", res)
	}
	if res.Results == nil || res.Errors == nil {
		t.Error("Results and Errors should be non-nil slices")
	}
}

func TestRunBatch_RejectsWhileRunning(t *testing.T) {
	runner := newBlockingRunner()
	s := NewScheduler(runner, noPause())

	done := make(chan BatchResult, 1)
	go func() {
		done <- s.RunBatch(context.Background(), []string{"a"})
	}()
	<-runner.started

	if !s.Running() {
		t.Error("Running() = false while a batch is in flight")
	}

	rejected := s.RunBatch(context.Background(), []string{"b"})
	if rejected.Success || !rejected.AlreadyRunning() {
		t.Errorf("second RunBatch() = %+v, want already running", rejected)
	}
	if rejected.Error != "already running" {
		t.Errorf("Error = %q, want %q", rejected.Error, "already running")
	}

	close(runner.release)
	first := <-done
	if !first.Success {
		t.Errorf("first batch failed: %s", first.Error)
	}

	if s.Running() {
		t.Error("scheduler should be idle after the batch")
	}
	if res := s.RunBatch(context.Background(), nil); !res.Success {
		t.Errorf("batch after completion failed: %s", res.Error)
	}
}

func TestRunBatch_ConcurrentCallsExactlyOneRuns(t *testing.T) {
	const callers = 16
	runner := newBlockingRunner()
	s := NewScheduler(runner, noPause())

	results := make(chan BatchResult, callers)
	startGate := make(chan struct{})
	for i := 0; i < callers; i++ {
		go func() {
			<-startGate
			results <- s.RunBatch(context.Background(), []string{"a"})
		}()
	}
	close(startGate)

	// The accepted call is parked in the runner, so the first callers-1
	// results must all be rejections.
	for i := 0; i < callers-1; i++ {
		res := <-results
		if !res.AlreadyRunning() {
			t.Fatalf("result %d = %+v, want already running", i, res)
		}
	}

	close(runner.release)
	last := <-results
	if !last.Success {
		t.Errorf("accepted batch = %+v, want success", last)
	}
	if s.Running() {
		t.Error("scheduler should be idle after the batch")
	}
}

func TestRunBatch_PanicInRunnerIsContained(t *testing.T) {
	runner := &recordingRunner{panicOn: "b"}
	s := NewScheduler(runner, noPause())

	res := s.RunBatch(context.Background(), []string{"a", "b", "c"})

	if !res.Success {
		t.Fatalf("RunBatch() = %+v, want success with one failed table", res)
	}
	if len(res.Errors) != 1 || res.Errors[0].TableName != "b" {
		t.Errorf("Errors = %+v, want table b", res.Errors)
	}
	if s.Running() {
		t.Error("in-flight flag left set after panic")
	}
}

// panickingObserver panics inside the coordinator to exercise the batch-level
// recovery path.
type panickingObserver struct{}

func (panickingObserver) ObserveTable(TableResult, time.Duration) {}
func (panickingObserver) ObserveBatch(BatchResult)                { panic("observer broke") }
func (panickingObserver) ObserveRejected()                        {}

func TestRunBatch_CoordinatorPanicClearsFlag(t *testing.T) {
	s := NewScheduler(&recordingRunner{}, Options{ChunkPause: -1, Observer: panickingObserver{}})

	res := s.RunBatch(context.Background(), []string{"a"})

	if res.Success {
		t.Fatal("RunBatch() should report failure after a coordinator panic")
	}
	if res.Error == "" {
		t.Error("Error should describe the panic")
	}
	if s.Running() {
		t.Fatal("in-flight flag left set after coordinator panic")
	}
}

func TestRunBatch_WithTableFetcher(t *testing.T) {
	q := newMockQuerier()
	q.rows[key("Fer1", telemetry.FamilyInverter)] = inverterRows()
	q.rows[key("Fer1", telemetry.FamilyRTU)] = rtuRows()
	q.errs[key("Som", telemetry.FamilyInverter)] = errors.New("timeout")
	q.errs[key("Som", telemetry.FamilyRTU)] = errors.New("timeout")
	q.errs[key("Efor1", telemetry.FamilyInverter)] = errors.New("timeout")
	q.rows[key("Efor1", telemetry.FamilyRTU)] = rtuRows()

	s := NewScheduler(NewTableFetcher(q, nil), noPause())
	res := s.RunBatch(context.Background(), []string{"Fer1", "Som", "Efor1"})

	if len(res.Results) != 2 || len(res.Errors) != 1 {
		t.Fatalf("results/errors = %d/%d, want 2/1", len(res.Results), len(res.Errors))
	}
	if res.Errors[0].TableName != "Som" {
		t.Errorf("failed table = %q, want Som", res.Errors[0].TableName)
	}
}

// countingObserver counts observer callbacks.
type countingObserver struct {
	tables, batches, rejected atomic.Int32
}

func (c *countingObserver) ObserveTable(TableResult, time.Duration) { c.tables.Add(1) }
func (c *countingObserver) ObserveBatch(BatchResult)                { c.batches.Add(1) }
func (c *countingObserver) ObserveRejected()                        { c.rejected.Add(1) }

func TestRunBatch_NotifiesObserver(t *testing.T) {
	obs := &countingObserver{}
	runner := newBlockingRunner()
	s := NewScheduler(runner, Options{ChunkPause: -1, Observer: obs})

	done := make(chan struct{})
	go func() {
		s.RunBatch(context.Background(), []string{"a", "b"})
		close(done)
	}()
	<-runner.started
	s.RunBatch(context.Background(), []string{"x"})
	close(runner.release)
	<-done

	if got := obs.tables.Load(); got != 2 {
		t.Errorf("ObserveTable calls = %d, want 2", got)
	}
	if got := obs.batches.Load(); got != 1 {
		t.Errorf("ObserveBatch calls = %d, want 1", got)
	}
	if got := obs.rejected.Load(); got != 1 {
		t.Errorf("ObserveRejected calls = %d, want 1", got)
	}
}
