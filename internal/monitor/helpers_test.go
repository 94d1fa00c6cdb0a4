package monitor

import (
	"github.com/zeynepvrl/HKUygulama/internal/ingest"
	"github.com/zeynepvrl/HKUygulama/internal/telemetry"
)

// rtu builds an RTU series whose newest history entry is (value, ts).
func rtu(value float64, ts string) *telemetry.MeasurementSeries {
	return &telemetry.MeasurementSeries{
		Name:            "GES.RTU.Meas.p.kw",
		MeasurementType: "Meas.p.kw",
		LatestValue:     value,
		LatestTimestamp: ts,
		History:         []telemetry.Point{{Timestamp: ts, Value: value}},
	}
}

func okResult(table string, rtus map[string][]*telemetry.MeasurementSeries) ingest.TableResult {
	return ingest.TableResult{
		TableName:         table,
		Success:           true,
		InverterData:      map[string][]*telemetry.MeasurementSeries{},
		RTUData:           rtus,
		TotalRTUs:         len(rtus),
		TotalInverters:    2,
		TotalMeasurements: 10,
	}
}

func failedResult(table string) ingest.TableResult {
	return ingest.TableResult{TableName: table, Error: "both queries failed: inverter: timeout; rtu: timeout"}
}

func testFacilities() *Facilities {
	return NewFacilities([]Facility{
		{Table: "Fer1", Region: "Konya - Kulu", Limit: 960},
		{Table: "Efor1", Region: "Konya - Kulu", Limit: 1000},
		{Table: "Ferges2", Region: "Niğde", Limit: 990},
		{Table: "Somenerji", Region: "Konya - Cihanbeyli"},
	})
}
