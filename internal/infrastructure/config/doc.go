// Package config handles loading and validating HK Energy configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields, facility tables and the scan schedule
//   - Default value handling
//
// Security Considerations:
//   - The archive DSN, MQTT password and InfluxDB token should be set via
//     HKENERGY_SOURCE_DSN, HKENERGY_MQTT_PASSWORD and HKENERGY_INFLUXDB_TOKEN
//   - Facility table names are restricted to plain SQL identifiers because
//     they are interpolated into queries
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	tables := cfg.Tables()
package config
