package monitor

import (
	"sort"

	"github.com/zeynepvrl/HKUygulama/internal/ingest"
	"github.com/zeynepvrl/HKUygulama/internal/telemetry"
)

// Violation is an RTU series whose newest value exceeds the facility limit.
type Violation struct {
	TableName       string  `json:"table_name"`
	DeviceID        string  `json:"device_id"`
	MeasurementType string  `json:"measurement_type"`
	Value           float64 `json:"value"`
	Limit           float64 `json:"limit"`
	Timestamp       string  `json:"timestamp"`
}

// LatestReading is the newest RTU active power value of a table.
type LatestReading struct {
	TableName string  `json:"table_name"`
	DeviceID  string  `json:"device_id"`
	Value     float64 `json:"value"`
	Timestamp string  `json:"timestamp"`
}

// LatestRTUValue returns the newest history head across all RTU series.
//
// Timestamps compare lexicographically ("YYYY-MM-DD hh:mm:ss"). On a tie the
// device that sorts first wins. ok is false when no RTU series has history.
func LatestRTUValue(res ingest.TableResult) (LatestReading, bool) {
	var (
		latest LatestReading
		found  bool
	)
	for _, device := range sortedDevices(res.RTUData) {
		for _, s := range res.RTUData[device] {
			head, ok := historyHead(s)
			if !ok {
				continue
			}
			if !found || head.Timestamp > latest.Timestamp {
				latest = LatestReading{
					TableName: res.TableName,
					DeviceID:  device,
					Value:     head.Value,
					Timestamp: head.Timestamp,
				}
				found = true
			}
		}
	}
	return latest, found
}

// CheckLimits returns every RTU series whose newest value is above limit.
//
// A limit of zero or less disables the check. Violations are ordered by
// device identifier.
func CheckLimits(res ingest.TableResult, limit float64) []Violation {
	if limit <= 0 {
		return nil
	}

	var violations []Violation
	for _, device := range sortedDevices(res.RTUData) {
		for _, s := range res.RTUData[device] {
			head, ok := historyHead(s)
			if !ok || head.Value <= limit {
				continue
			}
			violations = append(violations, Violation{
				TableName:       res.TableName,
				DeviceID:        device,
				MeasurementType: s.MeasurementType,
				Value:           head.Value,
				Limit:           limit,
				Timestamp:       head.Timestamp,
			})
		}
	}
	return violations
}

func historyHead(s *telemetry.MeasurementSeries) (telemetry.Point, bool) {
	if s == nil || len(s.History) == 0 {
		return telemetry.Point{}, false
	}
	return s.History[0], true
}

func sortedDevices(devices map[string][]*telemetry.MeasurementSeries) []string {
	ids := make([]string, 0, len(devices))
	for id := range devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
