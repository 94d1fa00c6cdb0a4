package mqtt

import "fmt"

// TopicPrefix is the root of every HK Energy topic.
const TopicPrefix = "hkenergy"

// Topics provides builders for HK Energy MQTT topics.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.State("Fer1")
//	// Returns: "hkenergy/state/Fer1"
type Topics struct{}

// State returns the retained summary topic of a facility table.
//
// Example: hkenergy/state/Fer1
func (Topics) State(table string) string {
	return fmt.Sprintf("%s/state/%s", TopicPrefix, table)
}

// Alert returns the limit violation topic of a facility table.
//
// Example: hkenergy/alert/Fer1
func (Topics) Alert(table string) string {
	return fmt.Sprintf("%s/alert/%s", TopicPrefix, table)
}

// BatchCompleted returns the topic announcing finished batch scans.
//
// Example: hkenergy/event/batch_completed
func (Topics) BatchCompleted() string {
	return fmt.Sprintf("%s/event/batch_completed", TopicPrefix)
}

// CommandScan returns the topic that triggers an on-demand batch scan.
//
// Example: hkenergy/command/scan
func (Topics) CommandScan() string {
	return fmt.Sprintf("%s/command/scan", TopicPrefix)
}

// SystemStatus returns the online/offline status topic (LWT).
//
// Example: hkenergy/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/system/status", TopicPrefix)
}

// AllStates returns a pattern matching every facility state topic.
//
// Pattern: hkenergy/state/+
func (Topics) AllStates() string {
	return fmt.Sprintf("%s/state/+", TopicPrefix)
}

// AllAlerts returns a pattern matching every alert topic.
//
// Pattern: hkenergy/alert/+
func (Topics) AllAlerts() string {
	return fmt.Sprintf("%s/alert/+", TopicPrefix)
}

// AllTopics returns a pattern matching all HK Energy topics.
//
// Pattern: hkenergy/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
