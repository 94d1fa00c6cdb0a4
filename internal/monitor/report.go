package monitor

import (
	"github.com/zeynepvrl/HKUygulama/internal/ingest"
)

// Report is the outcome of one scan as delivered to sinks.
type Report struct {
	Batch ingest.BatchResult `json:"batch"`

	// Latest holds the newest RTU reading of every successful table that has one.
	Latest map[string]LatestReading `json:"latest"`

	// Violations lists limit violations across all successful tables.
	Violations []Violation `json:"violations"`
}

// ViolationsFor returns the violations of one table.
func (r Report) ViolationsFor(table string) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.TableName == table {
			out = append(out, v)
		}
	}
	return out
}

// BuildReport evaluates a batch against the facility limits.
func BuildReport(b ingest.BatchResult, facilities *Facilities) Report {
	rep := Report{
		Batch:      b,
		Latest:     make(map[string]LatestReading),
		Violations: []Violation{},
	}
	for _, r := range b.Results {
		if latest, ok := LatestRTUValue(r); ok {
			rep.Latest[r.TableName] = latest
		}
		rep.Violations = append(rep.Violations, CheckLimits(r, facilities.Limit(r.TableName))...)
	}
	return rep
}
