// Package influxdb exports scan statistics to InfluxDB.
//
// Every batch scan produces one scan_batch point, one scan_table point per
// facility table and, where an RTU reading exists, one rtu_active_power
// point. Writes are non-blocking and batched by influxdb-client-go v2.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // statistics export is optional
//	}
//	defer client.Close()
//
//	client.WriteBatchStats(influxdb.BatchStats{BatchID: id, Tables: 15})
package influxdb
