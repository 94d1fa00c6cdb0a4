// Package monitor keeps the facility view of the ingestion engine up to date.
//
// It owns the configured facility list, runs the periodic batch scan, merges
// every batch into a process-lifetime snapshot and evaluates RTU active power
// against each facility's contractual limit. Each completed scan is handed to
// the registered sinks (MQTT, InfluxDB, Prometheus, WebSocket).
//
// Typical wiring:
//
//	facilities := monitor.NewFacilities(list)
//	store := monitor.NewStore()
//	poller, err := monitor.NewPoller(scheduler, facilities, store, monitor.PollerOptions{
//	    Schedule: "@every 60s",
//	    Sinks:    []monitor.Sink{mqttSink, influxSink},
//	})
//	poller.Start(ctx)
//	defer poller.Stop()
package monitor
