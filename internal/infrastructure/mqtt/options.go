package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/tileboard/internal/infrastructure/config"
)

const (
	connectTimeout   = 10 * time.Second
	operationTimeout = 5 * time.Second
	keepAlive        = 60 * time.Second
	maxQoS           = 2
	tlsMinVersion    = tls.VersionTLS12

	// quiesceMillis lets the offline status leave before the socket closes.
	quiesceMillis = 500
)

// Dashboard presence values on the system status topic.
const (
	statusOnline  = "online"
	statusOffline = "offline"

	reasonShutdown = "shutdown"
	reasonLost     = "connection_lost"
)

// statusMessage is the retained presence payload the middleware watches to
// know whether a dashboard is attached.
type statusMessage struct {
	Status   string `json:"status"`
	ClientID string `json:"client_id"`
	Reason   string `json:"reason,omitempty"`
	TS       int64  `json:"ts"`
}

func statusPayload(status, reason, clientID string) []byte {
	data, err := json.Marshal(statusMessage{
		Status:   status,
		ClientID: clientID,
		Reason:   reason,
		TS:       time.Now().UnixMilli(),
	})
	if err != nil {
		return []byte(`{"status":"` + status + `"}`)
	}
	return data
}

// buildClientOptions maps the mqtt config section onto paho options.
// Sessions are clean because the retained state topics replay everything
// the dashboard needs after a reconnect.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port)).
		SetClientID(cfg.Broker.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second).
		SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second).
		SetConnectTimeout(connectTimeout).
		SetKeepAlive(keepAlive)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}
	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}
	return opts
}

// configureLWT has the broker mark the dashboard offline when the
// connection drops without a clean Close.
func configureLWT(opts *pahomqtt.ClientOptions, topics Topics, clientID string) {
	opts.SetWill(topics.SystemStatus(), string(statusPayload(statusOffline, reasonLost, clientID)), 1, true)
}
