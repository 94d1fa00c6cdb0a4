package telemetry

import "strings"

// Tag markers used by the archive naming scheme.
const (
	inverterMarker = "Inverter."
	rtuMarker      = "RTU."
	measPMarker    = "Meas.p"
)

// ParseTag splits a dot-delimited tag name into family, device and
// measurement type.
//
// Inverter tags look like "Plant.Inverter.3.Active_Power": the device is the
// segment after "Inverter" and the measurement type the segment after that.
// RTU active power tags look like "Site.RTU.7.Meas.p.kw": the device is the
// segment after "RTU" and the measurement type is everything from "Meas.p" on,
// including further dotted suffixes.
//
// Missing pieces degrade to Unknown. Tags matching neither scheme return
// Unknown for both fields and fallback as the family.
func ParseTag(name string, fallback Family) ParsedTag {
	switch {
	case strings.Contains(name, inverterMarker):
		tag := ParsedTag{Family: FamilyInverter, DeviceID: Unknown, MeasurementType: Unknown}
		parts := strings.Split(name, ".")
		idx := indexOf(parts, string(FamilyInverter))
		if device, ok := segmentAt(parts, idx+1); idx >= 0 && ok {
			tag.DeviceID = device
			if mt, ok := segmentAt(parts, idx+2); ok {
				tag.MeasurementType = mt
			}
		}
		return tag

	case strings.Contains(name, rtuMarker) && strings.Contains(name, measPMarker):
		tag := ParsedTag{Family: FamilyRTU, DeviceID: Unknown}
		parts := strings.Split(name, ".")
		idx := indexOf(parts, string(FamilyRTU))
		if device, ok := segmentAt(parts, idx+1); idx >= 0 && ok {
			tag.DeviceID = device
		}
		tag.MeasurementType = name[strings.Index(name, measPMarker):]
		return tag

	default:
		return ParsedTag{Family: fallback, DeviceID: Unknown, MeasurementType: Unknown}
	}
}

// indexOf returns the index of the first segment equal to want, or -1.
func indexOf(parts []string, want string) int {
	for i, p := range parts {
		if p == want {
			return i
		}
	}
	return -1
}

// segmentAt returns parts[i] when it exists and is non-empty.
func segmentAt(parts []string, i int) (string, bool) {
	if i < 0 || i >= len(parts) || parts[i] == "" {
		return "", false
	}
	return parts[i], true
}
