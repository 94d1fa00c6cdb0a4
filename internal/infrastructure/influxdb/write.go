package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the client.
const (
	measurementBatch = "scan_batch"
	measurementTable = "scan_table"
	measurementPower = "rtu_active_power"
)

// BatchStats summarises one batch scan.
type BatchStats struct {
	BatchID   string
	Tables    int
	Succeeded int
	Failed    int
	Duration  time.Duration
	At        time.Time
}

// TableStats summarises one table of a batch scan.
type TableStats struct {
	Table        string
	Region       string
	Success      bool
	Inverters    int
	RTUs         int
	Measurements int
	Violations   int
	At           time.Time
}

// PowerSample is the newest RTU active power reading of a facility.
type PowerSample struct {
	Table  string
	Region string
	Value  float64
	Limit  float64
	At     time.Time
}

// WriteBatchStats records the outcome of a batch scan.
func (c *Client) WriteBatchStats(s BatchStats) {
	c.writePoint(batchPoint(s))
}

// WriteTableStats records the outcome of one table fetch.
func (c *Client) WriteTableStats(s TableStats) {
	c.writePoint(tablePoint(s))
}

// WritePowerSample records the newest RTU active power of a facility.
func (c *Client) WritePowerSample(s PowerSample) {
	c.writePoint(powerPoint(s))
}

func (c *Client) writePoint(p *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}

func batchPoint(s BatchStats) *write.Point {
	return write.NewPoint(
		measurementBatch,
		map[string]string{},
		map[string]any{
			"batch_id":    s.BatchID,
			"tables":      s.Tables,
			"succeeded":   s.Succeeded,
			"failed":      s.Failed,
			"duration_ms": s.Duration.Milliseconds(),
		},
		s.At,
	)
}

func tablePoint(s TableStats) *write.Point {
	tags := map[string]string{"table": s.Table}
	if s.Region != "" {
		tags["region"] = s.Region
	}
	return write.NewPoint(
		measurementTable,
		tags,
		map[string]any{
			"success":      s.Success,
			"inverters":    s.Inverters,
			"rtus":         s.RTUs,
			"measurements": s.Measurements,
			"violations":   s.Violations,
		},
		s.At,
	)
}

func powerPoint(s PowerSample) *write.Point {
	tags := map[string]string{"table": s.Table}
	if s.Region != "" {
		tags["region"] = s.Region
	}
	fields := map[string]any{"value": s.Value}
	if s.Limit > 0 {
		fields["limit"] = s.Limit
	}
	return write.NewPoint(measurementPower, tags, fields, s.At)
}
