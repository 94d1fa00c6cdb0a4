package monitor

import (
	"testing"

	"github.com/zeynepvrl/HKUygulama/internal/ingest"
	"github.com/zeynepvrl/HKUygulama/internal/telemetry"
)

func TestLatestRTUValue(t *testing.T) {
	tests := []struct {
		name      string
		result    ingest.TableResult
		wantOK    bool
		wantValue float64
		wantDev   string
	}{
		{
			name: "newest across devices",
			result: okResult("Fer1", map[string][]*telemetry.MeasurementSeries{
				"7": {rtu(950, "2024-05-01 10:00:02")},
				"8": {rtu(940, "2024-05-01 10:00:05")},
			}),
			wantOK:    true,
			wantValue: 940,
			wantDev:   "8",
		},
		{
			name: "tie keeps first device",
			result: okResult("Fer1", map[string][]*telemetry.MeasurementSeries{
				"8": {rtu(2, "2024-05-01 10:00:00")},
				"7": {rtu(1, "2024-05-01 10:00:00")},
			}),
			wantOK:    true,
			wantValue: 1,
			wantDev:   "7",
		},
		{
			name:   "no rtu data",
			result: okResult("Fer1", map[string][]*telemetry.MeasurementSeries{}),
		},
		{
			name: "series without history",
			result: okResult("Fer1", map[string][]*telemetry.MeasurementSeries{
				"7": {{MeasurementType: "Meas.p"}},
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LatestRTUValue(tt.result)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Value != tt.wantValue || got.DeviceID != tt.wantDev || got.TableName != "Fer1" {
				t.Errorf("LatestRTUValue() = %+v", got)
			}
		})
	}
}

func TestCheckLimits(t *testing.T) {
	res := okResult("Fer1", map[string][]*telemetry.MeasurementSeries{
		"9": {rtu(961.5, "2024-05-01 10:00:01")},
		"7": {rtu(960, "2024-05-01 10:00:02")},
		"8": {rtu(1200, "2024-05-01 10:00:03"), rtu(100, "2024-05-01 10:00:03")},
	})

	got := CheckLimits(res, 960)

	if len(got) != 2 {
		t.Fatalf("CheckLimits() = %+v, want 2 violations", got)
	}
	if got[0].DeviceID != "8" || got[0].Value != 1200 || got[0].Limit != 960 {
		t.Errorf("violations[0] = %+v", got[0])
	}
	if got[1].DeviceID != "9" || got[1].Timestamp != "2024-05-01 10:00:01" || got[1].TableName != "Fer1" {
		t.Errorf("violations[1] = %+v", got[1])
	}
}

func TestCheckLimits_Disabled(t *testing.T) {
	res := okResult("Somenerji", map[string][]*telemetry.MeasurementSeries{
		"1": {rtu(5000, "2024-05-01 10:00:01")},
	})

	if got := CheckLimits(res, 0); len(got) != 0 {
		t.Errorf("CheckLimits(limit 0) = %+v, want none", got)
	}
}
