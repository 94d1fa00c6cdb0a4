package telemetry

import "math"

// seriesKey identifies a measurement series within one aggregation.
type seriesKey struct {
	device      string
	measurement string
}

// Aggregate folds rows into per-device measurement series.
//
// Rows are processed in the order given; the caller must request newest-first
// ordering from the source. Rows whose status is not spontaneous are skipped.
// For the RTU family the absolute value is charted, since the sign only
// encodes the power flow direction.
//
// Aggregate never drops a row because its tag is malformed: such rows are
// grouped under the Unknown device and measurement type.
//
// Parameters:
//   - rows: Samples in newest-first order
//   - family: Family the rows were queried for (fallback for unparsable tags)
//
// Returns:
//   - Grouping: Devices with their series plus row counters
func Aggregate(rows []RawSample, family Family) Grouping {
	g := Grouping{
		Devices:           make(map[string][]*MeasurementSeries),
		TotalMeasurements: len(rows),
	}
	index := make(map[seriesKey]*MeasurementSeries)

	prev := ""
	for _, row := range rows {
		if prev != "" && row.Timestamp > prev {
			g.OutOfOrder++
		}
		prev = row.Timestamp

		if !IsSpontaneous(row.Status) {
			continue
		}
		g.Accepted++

		tag := ParseTag(row.Name, family)
		value := row.Value
		if family == FamilyRTU {
			value = math.Abs(value)
		}

		key := seriesKey{device: tag.DeviceID, measurement: tag.MeasurementType}
		series, ok := index[key]
		if !ok {
			series = &MeasurementSeries{
				Name:            row.Name,
				MeasurementType: tag.MeasurementType,
				LatestValue:     value,
				LatestTimestamp: row.Timestamp,
				History:         make([]Point, 0, 8),
			}
			index[key] = series
			g.Devices[tag.DeviceID] = append(g.Devices[tag.DeviceID], series)
		}

		if len(series.History) < MaxHistory {
			series.History = append(series.History, Point{Timestamp: row.Timestamp, Value: value})
		}
	}

	g.TotalDevices = len(g.Devices)
	return g
}
