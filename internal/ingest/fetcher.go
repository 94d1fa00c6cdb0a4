package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zeynepvrl/HKUygulama/internal/telemetry"
)

// Querier is the relational query layer.
//
// QuerySamples returns every row of table whose tag name matches the family's
// filter, ordered by timestamp descending. Timeouts are the Querier's
// responsibility.
type Querier interface {
	QuerySamples(ctx context.Context, table string, family telemetry.Family) ([]telemetry.RawSample, error)
}

// Fetcher fetches and aggregates one device family from one table.
//
// Fetch never returns an error: failures are reported in the FamilyResult.
type Fetcher interface {
	Family() telemetry.Family
	Fetch(ctx context.Context, table string) FamilyResult
}

// familyFetcher is the shared implementation behind the family fetchers.
type familyFetcher struct {
	querier Querier
	family  telemetry.Family
}

// InverterFetcher fetches inverter measurements.
type InverterFetcher struct {
	familyFetcher
}

// RTUFetcher fetches RTU active power measurements.
type RTUFetcher struct {
	familyFetcher
}

// NewInverterFetcher creates a Fetcher for the inverter family.
func NewInverterFetcher(q Querier) *InverterFetcher {
	return &InverterFetcher{familyFetcher{querier: q, family: telemetry.FamilyInverter}}
}

// NewRTUFetcher creates a Fetcher for the RTU active power family.
func NewRTUFetcher(q Querier) *RTUFetcher {
	return &RTUFetcher{familyFetcher{querier: q, family: telemetry.FamilyRTU}}
}

// Family returns the device family handled by the fetcher.
func (f familyFetcher) Family() telemetry.Family {
	return f.family
}

// Fetch queries the table and aggregates the rows.
func (f familyFetcher) Fetch(ctx context.Context, table string) (res FamilyResult) {
	res = FamilyResult{TableName: table, Family: f.family}

	defer func() {
		if r := recover(); r != nil {
			res = FamilyResult{
				TableName: table,
				Family:    f.family,
				Error:     fmt.Errorf("%w: %v", ErrFetchPanicked, r).Error(),
			}
		}
	}()

	rows, err := f.querier.QuerySamples(ctx, table, f.family)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	g := telemetry.Aggregate(rows, f.family)
	res.Success = true
	res.GroupedData = g.Devices
	res.TotalDevices = g.TotalDevices
	res.TotalMeasurements = g.TotalMeasurements
	res.OutOfOrder = g.OutOfOrder
	return res
}

// TableFetcher combines the inverter and RTU fetches for one table.
//
// Thread Safety: FetchTable is safe for concurrent use.
type TableFetcher struct {
	inverter Fetcher
	rtu      Fetcher
	logger   Logger
}

// NewTableFetcher creates a TableFetcher backed by the standard family fetchers.
//
// Parameters:
//   - q: Query layer shared by both fetchers
//   - logger: Logger for partial failures (may be nil)
func NewTableFetcher(q Querier, logger Logger) *TableFetcher {
	return NewTableFetcherWith(NewInverterFetcher(q), NewRTUFetcher(q), logger)
}

// NewTableFetcherWith creates a TableFetcher from explicit fetchers.
func NewTableFetcherWith(inverter, rtu Fetcher, logger Logger) *TableFetcher {
	if logger == nil {
		logger = noopLogger{}
	}
	return &TableFetcher{inverter: inverter, rtu: rtu, logger: logger}
}

// FetchTable runs both family fetches for table in parallel and combines them.
//
// If both fail the result is a failure carrying both messages. If one fails
// the result is successful with the failed side left empty.
func (t *TableFetcher) FetchTable(ctx context.Context, table string) TableResult {
	var (
		wg       sync.WaitGroup
		inv, rtu FamilyResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		inv = t.inverter.Fetch(ctx, table)
	}()
	go func() {
		defer wg.Done()
		rtu = t.rtu.Fetch(ctx, table)
	}()
	wg.Wait()

	return t.combine(table, inv, rtu)
}

// combine merges the two family results into a TableResult.
func (t *TableFetcher) combine(table string, inv, rtu FamilyResult) TableResult {
	res := TableResult{TableName: table, FetchedAt: time.Now().UTC()}

	if !inv.Success && !rtu.Success {
		res.Error = fmt.Sprintf("%s: inverter: %s; rtu: %s", ErrBothQueriesFailed, inv.Error, rtu.Error)
		return res
	}

	res.Success = true
	res.InverterData = map[string][]*telemetry.MeasurementSeries{}
	res.RTUData = map[string][]*telemetry.MeasurementSeries{}

	if inv.Success {
		res.InverterData = inv.GroupedData
		res.TotalInverters = inv.TotalDevices
		res.TotalMeasurements += inv.TotalMeasurements
	} else {
		t.logger.Warn("inverter fetch failed, keeping RTU data", "table", table, "error", inv.Error)
	}

	if rtu.Success {
		res.RTUData = rtu.GroupedData
		res.TotalRTUs = rtu.TotalDevices
		res.TotalMeasurements += rtu.TotalMeasurements
	} else {
		t.logger.Warn("RTU fetch failed, keeping inverter data", "table", table, "error", rtu.Error)
	}

	for _, fr := range []FamilyResult{inv, rtu} {
		if fr.OutOfOrder > 0 {
			t.logger.Warn("rows not in newest-first order",
				"table", table,
				"family", fr.Family,
				"out_of_order", fr.OutOfOrder,
			)
		}
	}

	return res
}
