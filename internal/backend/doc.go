// Package backend connects the dashboard to the home automation bus over MQTT.
//
// Each data point has two topics under the configured prefix:
//
//	<prefix>/state/<id>   retained current value, published by the bus
//	<prefix>/set/<id>     write requests, published by the dashboard
//
// On connect the broker replays every retained state message, which gives
// the connect-time snapshot; later messages on the same topics are the push
// stream. Both are fed to the Core through Push, so they are applied in
// arrival order on the Core's own goroutine.
//
// Payloads are JSON. The canonical form is {"val": <value>, "ts": <unix ms>};
// a bare JSON scalar is accepted and stamped with the receive time. Anything
// that is not valid JSON is taken as a plain string value.
//
// Connection callbacks drive the Core's reconnect policy: the disconnect
// counts as the first failure, the second reconnect attempt as the second.
package backend
