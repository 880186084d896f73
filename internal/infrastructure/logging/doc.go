// Package logging configures the structured log stream of tileboard.
//
// It wraps log/slog. The logging section of config.yaml picks the level,
// the format (json or text) and the stream (stdout or stderr):
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "stdout"
//
// serve hands each subsystem its own Component logger:
//
//	log := logging.New(cfg.Logging, version)
//	syncCore.SetLogger(log.Component("core"))
//
// Attributes named token, ticket, secret or password are redacted.
package logging
