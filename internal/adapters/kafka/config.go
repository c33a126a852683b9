package kafka

import (
	"crypto/tls"
	"net"
	"time"

	"github.com/IBM/sarama"
)

// kafkaPort is the Kafka-compatible listener of an Event Hubs namespace.
const kafkaPort = "9093"

// connectionStringUser is the SASL user name Event Hubs expects when the
// password is a full connection string.
const connectionStringUser = "$ConnectionString"

// DefaultMaxBatchBytes keeps a batch under the 1 MB Event Hubs request limit.
const DefaultMaxBatchBytes = 1_000_000

// Options configures the Kafka publisher.
type Options struct {
	// PartitionKey is set as the record key of every event.
	PartitionKey string
	// MaxBatchBytes caps the estimated size of one SendMessages call. Zero
	// uses DefaultMaxBatchBytes.
	MaxBatchBytes int
	// DialTimeout bounds broker connection attempts. Zero keeps the sarama default.
	DialTimeout time.Duration
	// ClientID identifies the client to the broker.
	ClientID string
}

// batchBytes is the byte budget of one batch. Producer.MaxMessageBytes is set
// to the same value so sarama never rejects a record the budget admitted.
func batchBytes(opts Options) int {
	if opts.MaxBatchBytes > 0 {
		return opts.MaxBatchBytes
	}
	return DefaultMaxBatchBytes
}

func brokerAddress(namespace string) string {
	return net.JoinHostPort(namespace, kafkaPort)
}

// newConfig builds a SASL/PLAIN over TLS producer configuration for an
// Event Hubs namespace.
func newConfig(connectionString, namespace string, opts Options) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V1_0_0_0
	cfg.ClientID = "ehsend"
	if opts.ClientID != "" {
		cfg.ClientID = opts.ClientID
	}

	cfg.Net.TLS.Enable = true
	cfg.Net.TLS.Config = &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: namespace,
	}
	cfg.Net.SASL.Enable = true
	cfg.Net.SASL.Mechanism = sarama.SASLTypePlaintext
	cfg.Net.SASL.User = connectionStringUser
	cfg.Net.SASL.Password = connectionString
	if opts.DialTimeout > 0 {
		cfg.Net.DialTimeout = opts.DialTimeout
	}

	// SyncProducer requires successes to be returned.
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.MaxMessageBytes = batchBytes(opts)
	return cfg
}
