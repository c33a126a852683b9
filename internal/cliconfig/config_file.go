package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ConnectionString string `toml:"connection_string"`
	EventHubName     string `toml:"eventhub_name"`
	MessageCount     int    `toml:"message_count"`
	MessagePayload   string `toml:"message_payload"`
	Verbose          *bool  `toml:"verbose"`
	Transport        string `toml:"transport"`
	PartitionKey     string `toml:"partition_key"`
	PartitionID      string `toml:"partition_id"`
	MaxBatchBytes    int    `toml:"max_batch_bytes"`
	Timeout          string `toml:"timeout"`
	MetricsFile      string `toml:"metrics_file"`
	FailOnPartial    *bool  `toml:"fail_on_partial"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.ehsend/config.toml, or "" if the home
// directory cannot be determined.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".ehsend", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("connection-string", fc.ConnectionString, &cfg.ConnectionString)
	s.setString("eventhub-name", fc.EventHubName, &cfg.EventHubName)
	s.setString("message-payload", fc.MessagePayload, &cfg.MessagePayload)
	s.setString("transport", fc.Transport, &cfg.Transport)
	s.setString("partition-key", fc.PartitionKey, &cfg.PartitionKey)
	s.setString("partition-id", fc.PartitionID, &cfg.PartitionID)
	s.setString("metrics-file", fc.MetricsFile, &cfg.MetricsFile)

	s.setInt("message-count", fc.MessageCount, &cfg.MessageCount)
	s.setInt("max-batch-bytes", fc.MaxBatchBytes, &cfg.MaxBatchBytes)

	if err := s.setDuration("timeout", fc.Timeout, &cfg.Timeout); err != nil {
		return err
	}

	s.setBool("verbose", fc.Verbose, &cfg.Verbose)
	s.setBool("fail-on-partial", fc.FailOnPartial, &cfg.FailOnPartial)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
