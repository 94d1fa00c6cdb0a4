package monitor

import (
	"sync"
	"time"

	"github.com/zeynepvrl/HKUygulama/internal/ingest"
)

// Snapshot is the merged state of every batch seen so far.
type Snapshot struct {
	// Results holds the newest successful result per table, in first-seen order.
	Results []ingest.TableResult `json:"results"`

	// Errors holds the newest failure per table, in first-seen order. A table
	// can appear in both lists when it failed after an earlier success.
	Errors []ingest.TableResult `json:"errors"`

	TotalInverters    int `json:"total_inverters"`
	TotalRTUs         int `json:"total_rtus"`
	TotalMeasurements int `json:"total_measurements"`

	LastBatchID string    `json:"last_batch_id,omitempty"`
	LastUpdate  time.Time `json:"last_update"`
	Batches     int       `json:"batches"`
}

// TableState is the merged state of one table.
type TableState struct {
	Result *ingest.TableResult `json:"result,omitempty"`
	Error  *ingest.TableResult `json:"error,omitempty"`
}

// keyed keeps table results in first-seen order.
type keyed struct {
	order []string
	items map[string]ingest.TableResult
}

func newKeyed() keyed {
	return keyed{items: make(map[string]ingest.TableResult)}
}

func (k *keyed) put(r ingest.TableResult) {
	if _, ok := k.items[r.TableName]; !ok {
		k.order = append(k.order, r.TableName)
	}
	k.items[r.TableName] = r
}

func (k *keyed) list() []ingest.TableResult {
	out := make([]ingest.TableResult, 0, len(k.order))
	for _, name := range k.order {
		out = append(out, k.items[name])
	}
	return out
}

// Store merges batch results into the latest known state per table.
// It is held in memory for the lifetime of the process.
//
// Thread Safety: all methods are safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	results     keyed
	errors      keyed
	lastBatchID string
	lastUpdate  time.Time
	batches     int
	now         func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		results: newKeyed(),
		errors:  newKeyed(),
		now:     time.Now,
	}
}

// Merge folds a batch into the store.
//
// Successful tables replace their previous result and failed tables replace
// their previous error. Batches that did not run (Success=false) are ignored.
//
// Returns:
//   - bool: true if the batch was merged
func (s *Store) Merge(b ingest.BatchResult) bool {
	if !b.Success {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range b.Results {
		s.results.put(r)
	}
	for _, r := range b.Errors {
		s.errors.put(r)
	}
	s.lastBatchID = b.ID
	s.lastUpdate = s.now().UTC()
	s.batches++
	return true
}

// Snapshot returns a copy of the merged state with aggregate totals.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Results:     s.results.list(),
		Errors:      s.errors.list(),
		LastBatchID: s.lastBatchID,
		LastUpdate:  s.lastUpdate,
		Batches:     s.batches,
	}
	for _, r := range snap.Results {
		snap.TotalInverters += r.TotalInverters
		snap.TotalRTUs += r.TotalRTUs
		snap.TotalMeasurements += r.TotalMeasurements
	}
	return snap
}

// Table returns the merged state of one table.
func (s *Store) Table(name string) (TableState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st TableState
	if r, ok := s.results.items[name]; ok {
		st.Result = &r
	}
	if e, ok := s.errors.items[name]; ok {
		st.Error = &e
	}
	return st, st.Result != nil || st.Error != nil
}

// Violations evaluates the stored results against the facility limits.
func (s *Store) Violations(facilities *Facilities) []Violation {
	s.mu.RLock()
	results := s.results.list()
	s.mu.RUnlock()

	var out []Violation
	for _, r := range results {
		out = append(out, CheckLimits(r, facilities.Limit(r.TableName))...)
	}
	return out
}
