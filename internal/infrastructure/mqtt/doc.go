// Package mqtt is the tileboard connection to the home-automation bus.
//
// The middleware publishes every data point as a retained message on
// <prefix>/state/<id> and accepts writes on <prefix>/set/<id>. The dashboard
// announces itself on <prefix>/system/status, with a will message that flips
// it to offline when the connection drops.
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(client.Topics().AllStates(), 1, decode)
//
// Enable cfg.Broker.TLS when the broker is not on localhost.
package mqtt
