// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's sentinel errors.
package config

import (
	"context"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataDir holds one sub-directory of trial files per participant.
	DataDir string `koanf:"data_dir"`

	// ParticipantID selects the directory under DataDir to analyze.
	ParticipantID string `koanf:"participant_id"`

	// TrialPattern is the glob matched against file names in the participant directory.
	TrialPattern string `koanf:"trial_pattern"`

	// Spread picks the standard deviation convention: sample or population.
	Spread string `koanf:"spread"`

	// Store selects the summary backend: memory or sqlite.
	Store string `koanf:"store"`

	// SQLitePath is the database file used when Store is sqlite.
	SQLitePath string `koanf:"sqlite_path"`

	// MQTTBroker enables summary publishing when non-empty, e.g. "tcp://localhost:1883".
	MQTTBroker   string `koanf:"mqtt_broker"`
	MQTTTopic    string `koanf:"mqtt_topic"`
	MQTTClientID string `koanf:"mqtt_client_id"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		Addr:          ":9080",
		DataDir:       "data",
		ParticipantID: "P0001",
		TrialPattern:  "BB_FT_*.json",
		Spread:        "sample",
		Store:         StoreMemory,
		SQLitePath:    "freethrow.db",
		MQTTTopic:     "freethrow",
		MQTTClientID:  "freethrow-analyzer",
	}
}
