package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
site:
  id: "test-site"
dashboard:
  pages_file: "/tmp/pages.json"
  start_page: "living"
  demo: true
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-site" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-site")
	}
	if cfg.Dashboard.PagesFile != "/tmp/pages.json" {
		t.Errorf("Dashboard.PagesFile = %q, want %q", cfg.Dashboard.PagesFile, "/tmp/pages.json")
	}
	if cfg.Dashboard.StartPage != "living" {
		t.Errorf("Dashboard.StartPage = %q, want %q", cfg.Dashboard.StartPage, "living")
	}
	if !cfg.Dashboard.Demo {
		t.Error("Dashboard.Demo = false, want true")
	}
	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
	// Untouched sections keep their defaults
	if cfg.MQTT.TopicPrefix != "tileboard" {
		t.Errorf("MQTT.TopicPrefix = %q, want default %q", cfg.MQTT.TopicPrefix, "tileboard")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
site:
  id: ""
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "missing site ID", mutate: func(c *Config) { c.Site.ID = "" }, wantErr: true},
		{name: "missing pages file", mutate: func(c *Config) { c.Dashboard.PagesFile = "" }, wantErr: true},
		{name: "negative queue size", mutate: func(c *Config) { c.Dashboard.UpdateQueueSize = -1 }, wantErr: true},
		{name: "history without database", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{
			name: "no database when history disabled",
			mutate: func(c *Config) {
				c.Database.Path = ""
				c.History.Enabled = false
			},
		},
		{name: "invalid QoS", mutate: func(c *Config) { c.MQTT.QoS = 3 }, wantErr: true},
		{name: "missing topic prefix live", mutate: func(c *Config) { c.MQTT.TopicPrefix = "" }, wantErr: true},
		{
			name: "missing topic prefix demo",
			mutate: func(c *Config) {
				c.MQTT.TopicPrefix = ""
				c.Dashboard.Demo = true
			},
		},
		{name: "invalid port low", mutate: func(c *Config) { c.API.Port = 0 }, wantErr: true},
		{name: "invalid port high", mutate: func(c *Config) { c.API.Port = 70000 }, wantErr: true},
		{name: "influx without url", mutate: func(c *Config) { c.InfluxDB.Enabled = true }, wantErr: true},
		{name: "JWT secret too short", mutate: func(c *Config) { c.Security.JWT.Secret = "short" }, wantErr: true},
		{
			name:   "JWT secret long enough",
			mutate: func(c *Config) { c.Security.JWT.Secret = "test-secret-key-at-least-32-chars!" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
		History: HistoryConfig{RetentionHours: 2},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
	if got := cfg.GetHistoryRetention(); got != 2*time.Hour {
		t.Errorf("GetHistoryRetention() = %v, want 2h", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("TILEBOARD_PAGES_FILE", "/custom/pages.json")
	t.Setenv("TILEBOARD_DEMO", "true")
	t.Setenv("TILEBOARD_DATABASE_PATH", "/custom/path.db")
	t.Setenv("TILEBOARD_MQTT_HOST", "mqtt.example.com")
	t.Setenv("TILEBOARD_MQTT_USERNAME", "testuser")
	t.Setenv("TILEBOARD_MQTT_PASSWORD", "testpass")
	t.Setenv("TILEBOARD_API_HOST", "192.168.1.1")
	t.Setenv("TILEBOARD_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("TILEBOARD_JWT_SECRET", "jwt-secret")

	applyEnvOverrides(cfg)

	if cfg.Dashboard.PagesFile != "/custom/pages.json" {
		t.Errorf("Dashboard.PagesFile = %q, want %q", cfg.Dashboard.PagesFile, "/custom/pages.json")
	}
	if !cfg.Dashboard.Demo {
		t.Error("Dashboard.Demo = false, want true")
	}
	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}
	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}
	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
	if cfg.Security.JWT.Secret != "jwt-secret" {
		t.Errorf("Security.JWT.Secret = %q, want %q", cfg.Security.JWT.Secret, "jwt-secret")
	}
}

func TestApplyEnvOverrides_InvalidDemoFlagIgnored(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("TILEBOARD_DEMO", "maybe")

	applyEnvOverrides(cfg)

	if cfg.Dashboard.Demo {
		t.Error("Dashboard.Demo = true for unparsable value, want default false")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Site.ID == "" {
		t.Error("defaultConfig should have non-empty Site.ID")
	}
	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.AuthEnabled() {
		t.Error("defaultConfig should not require panel tokens")
	}
}
