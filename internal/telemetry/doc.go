// Package telemetry turns raw archive rows into chartable measurement series.
//
// It is the pure, I/O-free half of the ingestion engine:
//   - IsSpontaneous decides whether a row's status word marks it as an
//     event-triggered update (the only rows that are trended)
//   - ParseTag splits a hierarchical tag such as "Plant.Inverter.3.Active_Power"
//     into a device identifier and a measurement type
//   - Aggregate folds an ordered row sequence into per-device lists of
//     bounded measurement histories
//
// # Ordering
//
// Rows are expected newest-first. The first row seen for a
// (device, measurement) key sets LatestValue and LatestTimestamp, and History
// keeps the first MaxHistory accepted rows for that key, so History is also
// newest-first. Aggregate counts rows that break the ordering contract in
// Grouping.OutOfOrder instead of reordering them.
//
// # Thread Safety
//
// All functions are pure. A Grouping is owned by the caller that produced it.
package telemetry
