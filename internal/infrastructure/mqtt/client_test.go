package mqtt

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/tileboard/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "tileboard-test",
			TLS:      false,
		},
		QoS:         1,
		TopicPrefix: "tileboard",
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// mockLogger implements Logger for testing.
type mockLogger struct {
	errors []string
	warns  []string
	mu     sync.Mutex
}

func (l *mockLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func (l *mockLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

// fakeMessage implements pahomqtt.Message.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

// =============================================================================
// Topics Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	topics := NewTopics("home")

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"State", topics.State("light1.dimmer"), "home/state/light1.dimmer"},
		{"Set", topics.Set("light1.dimmer"), "home/set/light1.dimmer"},
		{"SystemStatus", topics.SystemStatus(), "home/system/status"},
		{"AllStates", topics.AllStates(), "home/state/#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestNewTopics_Prefix(t *testing.T) {
	tests := map[string]string{
		"":          DefaultTopicPrefix,
		"/":         DefaultTopicPrefix,
		"home/":     "home",
		"/a/b":      "a/b",
		"tileboard": "tileboard",
	}
	for in, want := range tests {
		if got := NewTopics(in).Prefix; got != want {
			t.Errorf("NewTopics(%q).Prefix = %q, want %q", in, got, want)
		}
	}
}

func TestTopics_ParseIDs(t *testing.T) {
	topics := NewTopics("tileboard")

	tests := []struct {
		name   string
		parse  func(string) (string, bool)
		topic  string
		wantID string
		wantOK bool
	}{
		{"state", topics.StateID, "tileboard/state/sensor.temp1", "sensor.temp1", true},
		{"state with slash", topics.StateID, "tileboard/state/zigbee/lamp", "zigbee/lamp", true},
		{"state empty id", topics.StateID, "tileboard/state/", "", false},
		{"state wrong prefix", topics.StateID, "other/state/x", "", false},
		{"state is not set", topics.StateID, "tileboard/set/x", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := tt.parse(tt.topic)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("parse(%q) = %q, %v; want %q, %v", tt.topic, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

// =============================================================================
// Options Tests
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "dash"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want tcp://127.0.0.1:1883", opts.Servers)
	}
	if opts.ClientID != "tileboard-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "dash" || opts.Password != "secret" {
		t.Error("credentials not applied")
	}
	if !opts.AutoReconnect || !opts.CleanSession {
		t.Error("auto-reconnect and clean session should be enabled")
	}
	if opts.TLSConfig != nil && opts.TLSConfig.MinVersion != 0 {
		t.Error("TLS configured without cfg.Broker.TLS")
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg)

	if opts.Servers[0].Scheme != "ssl" {
		t.Errorf("scheme = %q, want ssl", opts.Servers[0].Scheme)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS minimum version not set")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, NewTopics("home"), "tileboard-test")

	if !opts.WillEnabled || opts.WillTopic != "home/system/status" {
		t.Errorf("will = %v %q", opts.WillEnabled, opts.WillTopic)
	}
	if !opts.WillRetained || opts.WillQos != 1 {
		t.Error("will should be retained at QoS 1")
	}
	if !strings.Contains(string(opts.WillPayload), `"status":"offline"`) {
		t.Errorf("will payload = %s", opts.WillPayload)
	}
}

func TestStatusPayload(t *testing.T) {
	tests := []struct {
		name   string
		status string
		reason string
	}{
		{"online", statusOnline, ""},
		{"shutdown", statusOffline, reasonShutdown},
		{"lost", statusOffline, reasonLost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg statusMessage
			if err := json.Unmarshal(statusPayload(tt.status, tt.reason, "tb"), &msg); err != nil {
				t.Fatalf("payload is not JSON: %v", err)
			}
			if msg.Status != tt.status || msg.Reason != tt.reason || msg.ClientID != "tb" {
				t.Errorf("payload = %+v", msg)
			}
			if msg.TS <= 0 {
				t.Errorf("ts = %d, want ms timestamp", msg.TS)
			}
		})
	}
}

func TestCheckTopic(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		qos   byte
		want  error
	}{
		{"valid", "tileboard/set/plug1", 1, nil},
		{"empty topic", "", 1, ErrInvalidTopic},
		{"qos too high", "tileboard/set/plug1", 3, ErrInvalidQoS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := checkTopic(tt.topic, tt.qos); !errors.Is(err, tt.want) {
				t.Errorf("checkTopic() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPublish_Validation(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	if err := client.Publish("t", make([]byte, maxPayloadSize+1), 1, false); !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("oversized payload error = %v", err)
	}
	if err := client.Publish("t", []byte("1"), 1, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected publish error = %v", err)
	}
	if err := client.Subscribe("t", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler error = %v", err)
	}
}

// =============================================================================
// Client Tests (no broker)
// =============================================================================

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v, want nil", err)
	}
}

func TestWrapHandler_RecoversPanic(t *testing.T) {
	logger := &mockLogger{}
	client := &Client{}
	client.SetLogger(logger)

	handler := client.wrapHandler(func(string, []byte) error { panic("boom") })
	handler(nil, fakeMessage{topic: "tileboard/state/x"})

	if len(logger.errors) != 1 {
		t.Errorf("errors logged = %d, want 1", len(logger.errors))
	}
}

func TestWrapHandler_LogsHandlerError(t *testing.T) {
	logger := &mockLogger{}
	client := &Client{}
	client.SetLogger(logger)

	var gotTopic, gotPayload string
	handler := client.wrapHandler(func(topic string, payload []byte) error {
		gotTopic, gotPayload = topic, string(payload)
		return errors.New("bad payload")
	})
	handler(nil, fakeMessage{topic: "tileboard/state/x", payload: []byte("42")})

	if gotTopic != "tileboard/state/x" || gotPayload != "42" {
		t.Errorf("handler saw %q %q", gotTopic, gotPayload)
	}
	if len(logger.warns) != 1 {
		t.Errorf("warnings logged = %d, want 1", len(logger.warns))
	}
}

func TestWrapHandler_NoLogger(t *testing.T) {
	client := &Client{}
	handler := client.wrapHandler(func(string, []byte) error { panic("boom") })
	handler(nil, fakeMessage{topic: "t"})
}

func TestReconnectingAttempts(t *testing.T) {
	client := &Client{}
	var attempts []int
	client.SetOnReconnecting(func(attempt int) { attempts = append(attempts, attempt) })

	client.handleReconnecting()
	client.handleReconnecting()
	client.callbackMu.Lock()
	client.attempts = 0 // what handleConnect does after a successful reconnect
	client.callbackMu.Unlock()
	client.handleReconnecting()

	if len(attempts) != 3 || attempts[0] != 1 || attempts[1] != 2 || attempts[2] != 1 {
		t.Errorf("attempts = %v, want [1 2 1]", attempts)
	}
}

func TestDisconnectCallback(t *testing.T) {
	client := &Client{}
	var got error
	client.SetOnDisconnect(func(err error) { got = err })

	client.handleDisconnect(errors.New("eof"))

	if got == nil || got.Error() != "eof" {
		t.Errorf("callback error = %v", got)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after disconnect")
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	client := &Client{}
	if client.IsConnected() {
		t.Error("IsConnected() should be false for uninitialised client")
	}
}

func TestSubscriptionCount_Empty(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}
	if client.SubscriptionCount() != 0 {
		t.Error("fresh client should have no subscriptions")
	}
}
