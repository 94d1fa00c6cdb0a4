// Package api implements the HTTP REST API and WebSocket server for HK Energy.
//
// This package provides:
//   - Read endpoints for facilities, the merged snapshot and limit violations
//   - An on-demand batch scan endpoint
//   - A WebSocket hub broadcasting completed batches to dashboards
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Architecture
//
// The server sits between dashboards and the monitor. Reads come from the
// monitor store; scans go through the poller so their results are merged
// and fanned out like scheduled scans. The Hub is registered as a poller
// sink and pushes every completed batch to subscribed WebSocket clients.
//
// # Graceful Degradation
//
// MQTT, the Prometheus handler and the database stats are optional. Missing
// dependencies are reported as absent in /api/v1/metrics.
package api
