package telemetry

// Family identifies one of the supported device categories.
type Family string

// Supported device families.
const (
	FamilyInverter Family = "Inverter"
	FamilyRTU      Family = "RTU"
)

// Unknown is the sentinel used when a tag lacks the expected structure.
const Unknown = "Unknown"

// MaxHistory is the number of history points kept per measurement series.
const MaxHistory = 50

// String returns the family name.
func (f Family) String() string {
	return string(f)
}

// Valid reports whether f is one of the supported families.
func (f Family) Valid() bool {
	return f == FamilyInverter || f == FamilyRTU
}

// RawSample is one row returned by the query layer.
//
// Timestamp is the source's "YYYY-MM-DD hh:mm:ss" rendering of the archive
// time. It is kept as text so no timezone conversion is applied between the
// archive and the chart.
type RawSample struct {
	Name      string  `json:"name" db:"name"`
	Value     float64 `json:"value" db:"value"`
	Timestamp string  `json:"timestamp" db:"ts"`
	Status    int64   `json:"status" db:"status"`
}

// ParsedTag is the result of splitting a tag name.
type ParsedTag struct {
	Family          Family `json:"family"`
	DeviceID        string `json:"device_id"`
	MeasurementType string `json:"measurement_type"`
}

// Point is a single history entry.
type Point struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// MeasurementSeries is the bounded history of one measurement on one device.
type MeasurementSeries struct {
	// Name is the original tag of the first row seen for this series.
	Name            string  `json:"name"`
	MeasurementType string  `json:"measurement_type"`
	LatestValue     float64 `json:"latest_value"`
	LatestTimestamp string  `json:"latest_timestamp"`
	// History is newest-first and never longer than MaxHistory.
	History []Point `json:"history"`
}

// Grouping is the output of Aggregate.
type Grouping struct {
	// Devices maps a device identifier to its series in first-seen order.
	Devices map[string][]*MeasurementSeries `json:"devices"`

	// TotalDevices is the number of distinct device identifiers.
	TotalDevices int `json:"total_devices"`

	// TotalMeasurements is the number of rows considered, before the
	// status filter.
	TotalMeasurements int `json:"total_measurements"`

	// Accepted is the number of rows that passed the status filter.
	Accepted int `json:"accepted"`

	// OutOfOrder counts rows whose timestamp is newer than the row before
	// them. Non-zero means the source did not honour newest-first ordering.
	OutOfOrder int `json:"out_of_order"`
}

// Series returns the series for a device and measurement type, or nil.
func (g Grouping) Series(deviceID, measurementType string) *MeasurementSeries {
	for _, s := range g.Devices[deviceID] {
		if s.MeasurementType == measurementType {
			return s
		}
	}
	return nil
}
