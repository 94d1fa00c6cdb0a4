// Package mqtt provides MQTT client connectivity for HK Energy.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing facility summaries, alerts and batch events
//   - The scan command subscription
//   - Last Will and Testament (LWT) for offline detection
//
// # Topics
//
//	hkenergy/state/{table}          retained facility summary
//	hkenergy/alert/{table}          limit violations
//	hkenergy/event/batch_completed  batch outcome
//	hkenergy/command/scan           triggers an on-demand batch
//	hkenergy/system/status          online/offline (retained, LWT)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(mqtt.Topics{}.State("Fer1"), summary, true)
package mqtt
