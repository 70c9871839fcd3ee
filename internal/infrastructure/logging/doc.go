// Package logging provides structured logging for devicedash.
//
// It wraps log/slog so every component logs the same way: JSON in
// production, text during development, and a fixed set of default
// fields (service, version) on every entry.
//
// Configuration lives in the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// Usage:
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("dashboard listening", "port", 5173)
//	logger.Error("API Error", "path", "/devices/", "error", err)
//
// Never log MQTT or InfluxDB credentials.
package logging
