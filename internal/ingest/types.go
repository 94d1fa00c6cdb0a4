package ingest

import (
	"time"

	"github.com/zeynepvrl/HKUygulama/internal/telemetry"
)

// FamilyResult is the outcome of fetching one family from one table.
type FamilyResult struct {
	TableName string           `json:"table_name"`
	Family    telemetry.Family `json:"family"`
	Success   bool             `json:"success"`
	Error     string           `json:"error,omitempty"`

	GroupedData       map[string][]*telemetry.MeasurementSeries `json:"grouped_data,omitempty"`
	TotalDevices      int                                       `json:"total_devices"`
	TotalMeasurements int                                       `json:"total_measurements"`

	// OutOfOrder is copied from the aggregation; see telemetry.Grouping.
	OutOfOrder int `json:"out_of_order,omitempty"`
}

// TableResult is the combined inverter and RTU outcome for one table.
//
// When only one family could be fetched the result is still successful and
// the failed side's data is empty with zero counts.
type TableResult struct {
	TableName string `json:"table_name"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`

	InverterData   map[string][]*telemetry.MeasurementSeries `json:"inverter_data,omitempty"`
	TotalInverters int                                       `json:"total_inverters"`
	RTUData        map[string][]*telemetry.MeasurementSeries `json:"rtu_data,omitempty"`
	TotalRTUs      int                                       `json:"total_rtus"`

	// TotalMeasurements is the number of rows returned for both families.
	TotalMeasurements int `json:"total_measurements"`

	// FetchedAt is when the table fetch completed.
	FetchedAt time.Time `json:"fetched_at"`
}

// BatchResult is the outcome of one RunBatch call.
type BatchResult struct {
	// ID identifies the batch run in logs and events. Empty for rejected calls.
	ID      string `json:"id,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Results       []TableResult `json:"results"`
	Errors        []TableResult `json:"errors"`
	TotalSearched int           `json:"total_searched"`

	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// AlreadyRunning reports whether the batch was rejected because another
// batch was in flight.
func (b BatchResult) AlreadyRunning() bool {
	return !b.Success && b.Error == ErrAlreadyRunning.Error()
}
