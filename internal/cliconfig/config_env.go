package cliconfig

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment variable read by ehsend.
const EnvPrefix = "EHSEND_"

// EnvConfig holds configuration read from EHSEND_* environment variables.
type EnvConfig struct {
	ConnectionString string        `env:"CONNECTION_STRING"`
	EventHubName     string        `env:"EVENTHUB_NAME"`
	MessageCount     int           `env:"MESSAGE_COUNT"`
	MessagePayload   string        `env:"MESSAGE_PAYLOAD"`
	Verbose          *bool         `env:"VERBOSE"`
	Transport        string        `env:"TRANSPORT"`
	PartitionKey     string        `env:"PARTITION_KEY"`
	PartitionID      string        `env:"PARTITION_ID"`
	MaxBatchBytes    int           `env:"MAX_BATCH_BYTES"`
	Timeout          time.Duration `env:"TIMEOUT"`
	MetricsFile      string        `env:"METRICS_FILE"`
	FailOnPartial    *bool         `env:"FAIL_ON_PARTIAL"`
}

// LoadEnvConfig parses EHSEND_* variables from the process environment.
func LoadEnvConfig() (EnvConfig, error) {
	var ec EnvConfig
	if err := env.ParseWithOptions(&ec, env.Options{Prefix: EnvPrefix}); err != nil {
		return ec, fmt.Errorf("parse environment: %w", err)
	}
	return ec, nil
}

// ApplyEnvConfig applies configuration from environment variables (EHSEND_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	ec, err := LoadEnvConfig()
	if err != nil {
		return err
	}

	s := newConfigSetter(changed)

	s.setString("connection-string", ec.ConnectionString, &cfg.ConnectionString)
	s.setString("eventhub-name", ec.EventHubName, &cfg.EventHubName)
	s.setString("message-payload", ec.MessagePayload, &cfg.MessagePayload)
	s.setString("transport", ec.Transport, &cfg.Transport)
	s.setString("partition-key", ec.PartitionKey, &cfg.PartitionKey)
	s.setString("partition-id", ec.PartitionID, &cfg.PartitionID)
	s.setString("metrics-file", ec.MetricsFile, &cfg.MetricsFile)

	s.setInt("message-count", ec.MessageCount, &cfg.MessageCount)
	s.setInt("max-batch-bytes", ec.MaxBatchBytes, &cfg.MaxBatchBytes)

	s.setDurationValue("timeout", ec.Timeout, &cfg.Timeout)

	s.setBool("verbose", ec.Verbose, &cfg.Verbose)
	s.setBool("fail-on-partial", ec.FailOnPartial, &cfg.FailOnPartial)

	return nil
}
