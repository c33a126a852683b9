package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				ConnectionString: testConnStr,
				EventHubName:     "hub",
				MessageCount:     10,
				MessagePayload:   "hello",
				Verbose:          &trueVal,
				Transport:        TransportKafka,
				PartitionKey:     "device-1",
				MaxBatchBytes:    1024,
				Timeout:          "30s",
				MetricsFile:      "/tmp/ehsend.prom",
				FailOnPartial:    &trueVal,
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				ConnectionString: testConnStr,
				EventHubName:     "hub",
				MessageCount:     10,
				MessagePayload:   "hello",
				Verbose:          true,
				Transport:        TransportKafka,
				PartitionKey:     "device-1",
				MaxBatchBytes:    1024,
				Timeout:          30 * time.Second,
				MetricsFile:      "/tmp/ehsend.prom",
				FailOnPartial:    true,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				EventHubName: "file-hub",
				MessageCount: 10,
			},
			changed: map[string]bool{"eventhub-name": true},
			initial: Config{
				EventHubName: "flag-hub",
				MessageCount: 1,
			},
			expected: Config{
				EventHubName: "flag-hub", // unchanged because flag was set
				MessageCount: 10,
			},
		},
		{
			name:       "zero values do not override",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial: Config{
				Transport:    TransportAMQP,
				MessageCount: 3,
				Verbose:      true,
			},
			expected: Config{
				Transport:    TransportAMQP,
				MessageCount: 3,
				Verbose:      true,
			},
		},
		{
			name:       "explicit false bool overrides",
			fileConfig: FileConfig{Verbose: &falseVal},
			changed:    map[string]bool{},
			initial:    Config{Verbose: true},
			expected:   Config{Verbose: false},
		},
		{
			name:       "invalid timeout",
			fileConfig: FileConfig{Timeout: "soon"},
			changed:    map[string]bool{},
			initial:    Config{},
			expected:   Config{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyFileConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg != tt.expected {
				t.Errorf("ApplyFileConfig() =\n%+v\nwant\n%+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
connection_string = "Endpoint=sb://myns.servicebus.windows.net/;SharedAccessKeyName=send;SharedAccessKey=secret"
eventhub_name = "hub"
message_count = 100
message_payload = "hello"
verbose = true
transport = "kafka"
timeout = "1m"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}
	if fc.EventHubName != "hub" || fc.MessageCount != 100 || fc.Transport != "kafka" || fc.Timeout != "1m" {
		t.Errorf("LoadFileConfig() = %+v", fc)
	}
	if fc.Verbose == nil || !*fc.Verbose {
		t.Errorf("Verbose = %v, want true", fc.Verbose)
	}
	if fc.FailOnPartial != nil {
		t.Errorf("FailOnPartial = %v, want nil", *fc.FailOnPartial)
	}
}

func TestLoadFileConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFileConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("LoadFileConfig() on missing file error = nil")
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("message_count = [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(bad); err == nil {
		t.Error("LoadFileConfig() on malformed file error = nil")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got := DefaultConfigPath()
	if !strings.HasPrefix(got, home) || !strings.HasSuffix(got, filepath.Join(".ehsend", "config.toml")) {
		t.Errorf("DefaultConfigPath() = %q", got)
	}
	if FileExists(got) {
		t.Error("FileExists() = true for missing file")
	}
}
