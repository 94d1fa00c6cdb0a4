package monitor

import (
	"context"
	"time"

	"github.com/zeynepvrl/HKUygulama/internal/infrastructure/influxdb"
	"github.com/zeynepvrl/HKUygulama/internal/infrastructure/mqtt"
	"github.com/zeynepvrl/HKUygulama/internal/ingest"
)

// JSONPublisher publishes JSON payloads. *mqtt.Client implements it.
type JSONPublisher interface {
	PublishJSON(topic string, v any, retained bool) error
}

// TableSummary is the retained MQTT state of one facility.
type TableSummary struct {
	Table             string         `json:"table"`
	Region            string         `json:"region,omitempty"`
	Success           bool           `json:"success"`
	Error             string         `json:"error,omitempty"`
	TotalInverters    int            `json:"total_inverters"`
	TotalRTUs         int            `json:"total_rtus"`
	TotalMeasurements int            `json:"total_measurements"`
	Latest            *LatestReading `json:"latest,omitempty"`
	Limit             float64        `json:"limit,omitempty"`
	Violations        int            `json:"violations"`
	BatchID           string         `json:"batch_id"`
	FetchedAt         time.Time      `json:"fetched_at"`
}

// BatchEvent is the compact batch outcome published to MQTT and WebSocket.
type BatchEvent struct {
	ID         string    `json:"id"`
	Tables     int       `json:"tables"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Violations int       `json:"violations"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// NewBatchEvent summarises a report.
func NewBatchEvent(r Report) BatchEvent {
	return BatchEvent{
		ID:         r.Batch.ID,
		Tables:     r.Batch.TotalSearched,
		Succeeded:  len(r.Batch.Results),
		Failed:     len(r.Batch.Errors),
		Violations: len(r.Violations),
		StartedAt:  r.Batch.StartedAt,
		DurationMS: r.Batch.DurationMS,
	}
}

// Summarise builds the facility summaries of a report in batch order.
func Summarise(r Report, facilities *Facilities) []TableSummary {
	out := make([]TableSummary, 0, len(r.Batch.Results)+len(r.Batch.Errors))
	for _, tr := range r.Batch.Results {
		out = append(out, summary(tr, r, facilities))
	}
	for _, tr := range r.Batch.Errors {
		out = append(out, summary(tr, r, facilities))
	}
	return out
}

func summary(tr ingest.TableResult, r Report, facilities *Facilities) TableSummary {
	fac, _ := facilities.Lookup(tr.TableName)
	s := TableSummary{
		Table:             tr.TableName,
		Region:            fac.Region,
		Success:           tr.Success,
		Error:             tr.Error,
		TotalInverters:    tr.TotalInverters,
		TotalRTUs:         tr.TotalRTUs,
		TotalMeasurements: tr.TotalMeasurements,
		Limit:             fac.Limit,
		Violations:        len(r.ViolationsFor(tr.TableName)),
		BatchID:           r.Batch.ID,
		FetchedAt:         tr.FetchedAt,
	}
	if latest, ok := r.Latest[tr.TableName]; ok {
		s.Latest = &latest
	}
	return s
}

// MQTTSink publishes facility summaries, alerts and batch events.
type MQTTSink struct {
	pub        JSONPublisher
	facilities *Facilities
	logger     Logger
}

// NewMQTTSink creates an MQTTSink.
func NewMQTTSink(pub JSONPublisher, facilities *Facilities, logger Logger) *MQTTSink {
	if logger == nil {
		logger = noopLogger{}
	}
	return &MQTTSink{pub: pub, facilities: facilities, logger: logger}
}

// HandleReport publishes one retained state per table, one alert per table
// with violations and the batch event.
func (s *MQTTSink) HandleReport(_ context.Context, r Report) {
	topics := mqtt.Topics{}

	for _, sum := range Summarise(r, s.facilities) {
		if err := s.pub.PublishJSON(topics.State(sum.Table), sum, true); err != nil {
			s.logger.Warn("publishing facility state failed", "table", sum.Table, "error", err)
		}
	}

	byTable := make(map[string][]Violation)
	var order []string
	for _, v := range r.Violations {
		if _, ok := byTable[v.TableName]; !ok {
			order = append(order, v.TableName)
		}
		byTable[v.TableName] = append(byTable[v.TableName], v)
	}
	for _, table := range order {
		if err := s.pub.PublishJSON(topics.Alert(table), byTable[table], false); err != nil {
			s.logger.Warn("publishing limit alert failed", "table", table, "error", err)
		}
	}

	if err := s.pub.PublishJSON(topics.BatchCompleted(), NewBatchEvent(r), false); err != nil {
		s.logger.Warn("publishing batch event failed", "batch_id", r.Batch.ID, "error", err)
	}
}

// StatsWriter writes scan statistics. *influxdb.Client implements it.
type StatsWriter interface {
	WriteBatchStats(influxdb.BatchStats)
	WriteTableStats(influxdb.TableStats)
	WritePowerSample(influxdb.PowerSample)
}

// InfluxSink exports scan statistics to InfluxDB.
type InfluxSink struct {
	w          StatsWriter
	facilities *Facilities
}

// NewInfluxSink creates an InfluxSink.
func NewInfluxSink(w StatsWriter, facilities *Facilities) *InfluxSink {
	return &InfluxSink{w: w, facilities: facilities}
}

// HandleReport writes one batch point, one point per table and one power
// sample per table with an RTU reading.
func (s *InfluxSink) HandleReport(_ context.Context, r Report) {
	at := r.Batch.StartedAt.Add(time.Duration(r.Batch.DurationMS) * time.Millisecond)

	s.w.WriteBatchStats(influxdb.BatchStats{
		BatchID:   r.Batch.ID,
		Tables:    r.Batch.TotalSearched,
		Succeeded: len(r.Batch.Results),
		Failed:    len(r.Batch.Errors),
		Duration:  time.Duration(r.Batch.DurationMS) * time.Millisecond,
		At:        at,
	})

	for _, sum := range Summarise(r, s.facilities) {
		s.w.WriteTableStats(influxdb.TableStats{
			Table:        sum.Table,
			Region:       sum.Region,
			Success:      sum.Success,
			Inverters:    sum.TotalInverters,
			RTUs:         sum.TotalRTUs,
			Measurements: sum.TotalMeasurements,
			Violations:   sum.Violations,
			At:           at,
		})
		if sum.Latest != nil {
			s.w.WritePowerSample(influxdb.PowerSample{
				Table:  sum.Table,
				Region: sum.Region,
				Value:  sum.Latest.Value,
				Limit:  sum.Limit,
				At:     at,
			})
		}
	}
}

// GaugeSetter records facility gauges. *metrics.Metrics implements it.
type GaugeSetter interface {
	SetActivePower(table string, value float64)
	SetViolations(table string, n int)
}

// MetricsSink updates the facility gauges.
type MetricsSink struct {
	g GaugeSetter
}

// NewMetricsSink creates a MetricsSink.
func NewMetricsSink(g GaugeSetter) *MetricsSink {
	return &MetricsSink{g: g}
}

// HandleReport sets the active power and violation gauges of every
// successful table.
func (s *MetricsSink) HandleReport(_ context.Context, r Report) {
	for _, tr := range r.Batch.Results {
		if latest, ok := r.Latest[tr.TableName]; ok {
			s.g.SetActivePower(tr.TableName, latest.Value)
		}
		s.g.SetViolations(tr.TableName, len(r.ViolationsFor(tr.TableName)))
	}
}
