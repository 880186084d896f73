package mqtt

import "strings"

// DefaultTopicPrefix is used when the configuration leaves the prefix empty.
const DefaultTopicPrefix = "tileboard"

// Topics builds the tileboard MQTT topics under one prefix.
//
// The backend publishes retained data point values on the state topics, so a
// fresh subscription receives the complete current snapshot before live
// changes. Writes from the dashboard go to the set topics.
//
//	topics := mqtt.NewTopics("tileboard")
//	topics.State("light1.dimmer") // "tileboard/state/light1.dimmer"
//	topics.Set("light1.dimmer")   // "tileboard/set/light1.dimmer"
type Topics struct {
	Prefix string
}

// NewTopics creates a topic builder. An empty prefix means DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{Prefix: prefix}
}

// State returns the value topic of a data point.
//
// Example: tileboard/state/sensor.temp1
func (t Topics) State(id string) string {
	return t.Prefix + "/state/" + id
}

// Set returns the write topic of a data point.
//
// Example: tileboard/set/light1.dimmer
func (t Topics) Set(id string) string {
	return t.Prefix + "/set/" + id
}

// SystemStatus returns the online/offline status topic.
//
// Example: tileboard/system/status
func (t Topics) SystemStatus() string {
	return t.Prefix + "/system/status"
}

// AllStates returns a pattern matching every state topic.
// Identifiers may contain slashes.
//
// Pattern: tileboard/state/#
func (t Topics) AllStates() string {
	return t.Prefix + "/state/#"
}

// StateID extracts the data point identifier from a state topic.
func (t Topics) StateID(topic string) (string, bool) {
	id, ok := strings.CutPrefix(topic, t.Prefix+"/state/")
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
