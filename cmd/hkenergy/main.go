// HK Energy - solar plant telemetry core
//
// This is the main entry point for the HK Energy service. It scans the SCADA
// archive tables of every configured facility on a schedule, aggregates
// inverter and RTU measurements, checks RTU active power against facility
// limits and exposes the merged state over HTTP, WebSocket and MQTT.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeynepvrl/HKUygulama/internal/api"
	"github.com/zeynepvrl/HKUygulama/internal/infrastructure/config"
	"github.com/zeynepvrl/HKUygulama/internal/infrastructure/database"
	"github.com/zeynepvrl/HKUygulama/internal/infrastructure/influxdb"
	"github.com/zeynepvrl/HKUygulama/internal/infrastructure/logging"
	"github.com/zeynepvrl/HKUygulama/internal/infrastructure/metrics"
	"github.com/zeynepvrl/HKUygulama/internal/infrastructure/mqtt"
	"github.com/zeynepvrl/HKUygulama/internal/ingest"
	"github.com/zeynepvrl/HKUygulama/internal/monitor"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting HK Energy",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Archive database
	db, err := database.Open(ctx, database.Config{
		Driver:            cfg.Source.Driver,
		DSN:               cfg.Source.DSN,
		MaxOpenConns:      cfg.Source.MaxOpenConns,
		MaxIdleConns:      cfg.Source.MaxIdleConns,
		ConnectionTimeout: cfg.Source.ConnectionTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening source database: %w", err)
	}
	defer func() {
		log.Info("closing source database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing source database", "error", closeErr)
		}
	}()
	log.Info("source database connected", "driver", db.Driver())

	source, err := database.NewSource(db, database.SourceOptions{
		Columns: database.Columns{
			Name:      cfg.Source.Columns.Name,
			Value:     cfg.Source.Columns.Value,
			Timestamp: cfg.Source.Columns.Timestamp,
			Status:    cfg.Source.Columns.Status,
		},
		RequestTimeout: cfg.Source.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("preparing sample queries: %w", err)
	}

	// Ingestion engine
	engineMetrics := metrics.New()
	fetcher := ingest.NewTableFetcher(source, log.Component("fetcher"))
	scheduler := ingest.NewScheduler(fetcher, ingest.Options{
		ChunkSize:  cfg.Scan.ChunkSize,
		ChunkPause: cfg.Scan.ChunkPause,
		Logger:     log.Component("scheduler"),
		Observer:   engineMetrics,
	})

	facilities := monitor.NewFacilities(facilityList(cfg.Facilities))
	store := monitor.NewStore()
	hub := api.NewHub(cfg.WebSocket, log.Component("websocket"))

	sinks := []monitor.Sink{hub, monitor.NewMetricsSink(engineMetrics)}

	// MQTT (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
		sinks = append(sinks, monitor.NewMQTTSink(mqttClient, facilities, log.Component("mqtt")))
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		sinks = append(sinks, monitor.NewInfluxSink(influxClient, facilities))
	} else {
		log.Info("InfluxDB disabled")
	}

	poller, err := monitor.NewPoller(scheduler, facilities, store, monitor.PollerOptions{
		Schedule:   cfg.Scan.Interval,
		RunOnStart: cfg.Scan.RunOnStart,
		Sinks:      sinks,
		Logger:     log.Component("poller"),
	})
	if err != nil {
		return fmt.Errorf("creating poller: %w", err)
	}

	if mqttClient != nil {
		if subErr := subscribeScanCommand(ctx, mqttClient, poller, log); subErr != nil {
			return fmt.Errorf("subscribing to scan command: %w", subErr)
		}
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// HTTP API
	go hub.Run(ctx)
	deps := api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Logger:     log.Component("api"),
		Store:      store,
		Facilities: facilities,
		Scanner:    poller,
		Engine:     scheduler,
		Database:   db,
		Checks:     map[string]api.HealthChecker{"database": db},
		Prometheus: engineMetrics.Handler(),
		Hub:        hub,
		Version:    version,
	}
	if mqttClient != nil {
		deps.MQTT = mqttClient
		deps.Checks["mqtt"] = mqttClient
	}
	if influxClient != nil {
		deps.Checks["influxdb"] = influxClient
	}
	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	poller.Start(ctx)
	defer poller.Stop()

	log.Info("initialisation complete, waiting for shutdown signal",
		"facilities", facilities.Len(),
		"schedule", cfg.Scan.Interval,
	)

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order:
	// poller, API server, InfluxDB, MQTT, source database.

	log.Info("HK Energy stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HKENERGY_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HKENERGY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

func facilityList(cfgs []config.FacilityConfig) []monitor.Facility {
	out := make([]monitor.Facility, len(cfgs))
	for i, f := range cfgs {
		out[i] = monitor.Facility{Table: f.Table, Region: f.Region, Limit: f.Limit}
	}
	return out
}

// subscribeScanCommand triggers an on-demand scan for every message on the
// scan command topic.
func subscribeScanCommand(ctx context.Context, client *mqtt.Client, poller *monitor.Poller, log *logging.Logger) error {
	topic := mqtt.Topics{}.CommandScan()
	return client.Subscribe(topic, 1, func(_ string, _ []byte) error {
		log.Info("scan requested over MQTT", "topic", topic)
		go poller.Scan(ctx)
		return nil
	})
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Source database to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
