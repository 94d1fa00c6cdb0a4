package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	WebSocket     WSMetrics        `json:"websocket"`
	MQTT          *MQTTMetrics     `json:"mqtt,omitempty"`
	Scheduler     SchedulerMetrics `json:"scheduler"`
	Store         StoreMetrics     `json:"store"`
	Database      *DatabaseMetrics `json:"database,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// MQTTMetrics contains MQTT client statistics.
type MQTTMetrics struct {
	Connected bool `json:"connected"`
}

// SchedulerMetrics describes the batch scheduler and its last run.
type SchedulerMetrics struct {
	Running         bool   `json:"running"`
	ChunkSize       int    `json:"chunk_size"`
	LastBatchID     string `json:"last_batch_id,omitempty"`
	LastSucceeded   int    `json:"last_succeeded"`
	LastFailed      int    `json:"last_failed"`
	LastDurationMS  int64  `json:"last_duration_ms"`
	LastStartedAt   string `json:"last_started_at,omitempty"`
	TotalFacilities int    `json:"total_facilities"`
}

// StoreMetrics summarises the merged snapshot.
type StoreMetrics struct {
	Batches           int    `json:"batches"`
	Tables            int    `json:"tables"`
	FailedTables      int    `json:"failed_tables"`
	TotalMeasurements int    `json:"total_measurements"`
	LastUpdate        string `json:"last_update,omitempty"`
}

// DatabaseMetrics contains source database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

// handleMetrics returns comprehensive system metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Scheduler: SchedulerMetrics{
			Running:         s.engine.Running(),
			ChunkSize:       s.engine.ChunkSize(),
			TotalFacilities: s.facilities.Len(),
		},
	}

	if last := s.engine.LastBatch(); last != nil {
		metrics.Scheduler.LastBatchID = last.ID
		metrics.Scheduler.LastSucceeded = len(last.Results)
		metrics.Scheduler.LastFailed = len(last.Errors)
		metrics.Scheduler.LastDurationMS = last.DurationMS
		metrics.Scheduler.LastStartedAt = last.StartedAt.UTC().Format(time.RFC3339)
	}

	snap := s.store.Snapshot()
	metrics.Store = StoreMetrics{
		Batches:           snap.Batches,
		Tables:            len(snap.Results),
		FailedTables:      len(snap.Errors),
		TotalMeasurements: snap.TotalMeasurements,
	}
	if !snap.LastUpdate.IsZero() {
		metrics.Store.LastUpdate = snap.LastUpdate.Format(time.RFC3339)
	}

	if s.mqtt != nil {
		metrics.MQTT = &MQTTMetrics{Connected: s.mqtt.IsConnected()}
	}

	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = &DatabaseMetrics{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
