package cliconfig

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bft-labs/ehsend/internal/domain"
)

// Supported transports.
const (
	TransportAMQP  = "amqp"
	TransportKafka = "kafka"
)

// Config holds CLI configuration for ehsend.
// Field validation tags are reported with the flag name from the flag tag.
type Config struct {
	ConnectionString string `flag:"connection-string"`
	EventHubName     string `flag:"eventhub-name"`
	MessageCount     int    `flag:"message-count"`
	MessagePayload   string `flag:"message-payload"`
	Verbose          bool   `flag:"verbose"`

	Transport     string        `flag:"transport" validate:"oneof=amqp kafka"`
	PartitionKey  string        `flag:"partition-key" validate:"excluded_with=PartitionID"`
	PartitionID   string        `flag:"partition-id"`
	MaxBatchBytes int           `flag:"max-batch-bytes" validate:"gte=0"`
	Timeout       time.Duration `flag:"timeout" validate:"gte=0"`
	MetricsFile   string        `flag:"metrics-file"`
	FailOnPartial bool          `flag:"fail-on-partial"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Transport: TransportAMQP,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("flag"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate checks CLI-level settings. Message count, target and payload are
// checked by the sender before any connection is made.
func (c *Config) Validate() error {
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	if c.Transport == "" {
		c.Transport = TransportAMQP
	}

	err := validate.Struct(c)
	if err == nil {
		if c.Transport == TransportKafka && c.PartitionID != "" {
			return fmt.Errorf("invalid configuration: partition-id is not supported by the %s transport", TransportKafka)
		}
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must not be negative", fe.Field())
	case "excluded_with":
		return fmt.Sprintf("%s cannot be combined with partition-id", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// SendRequest converts the configuration into a send request.
func (c Config) SendRequest(runID string) domain.SendRequest {
	return domain.SendRequest{
		Target: domain.Target{
			ConnectionString: c.ConnectionString,
			EventHubName:     c.EventHubName,
		},
		MessageCount: c.MessageCount,
		Payload:      []byte(c.MessagePayload),
		Verbose:      c.Verbose,
		RunID:        runID,
	}
}

// Masked returns a copy with secrets replaced, suitable for logging.
func (c Config) Masked() Config {
	if c.ConnectionString != "" {
		target := domain.Target{ConnectionString: c.ConnectionString}
		if ns := target.Namespace(); ns != "" {
			c.ConnectionString = "Endpoint=sb://" + ns + "/;*****"
		} else {
			c.ConnectionString = "*****"
		}
	}
	return c
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setDurationValue sets an already parsed duration if positive and flag not changed.
func (s *configSetter) setDurationValue(flag string, value time.Duration, dst *time.Duration) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}
