// Package kafka implements ports.Publisher against the Kafka-compatible
// endpoint of an Event Hubs namespace using sarama.
//
// Kafka has no client-side batch object, so a Batch is a byte budget over a
// slice of records, sized with a conservative estimate of the record batch v2
// encoding. Send hands the records to SyncProducer.SendMessages.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azeventhubs"
	"github.com/IBM/sarama"

	"github.com/bft-labs/ehsend/internal/domain"
	"github.com/bft-labs/ehsend/internal/ports"
)

const (
	// recordBatchOverhead is the fixed size of a v2 record batch header.
	recordBatchOverhead = 61
	// recordOverhead bounds the varint framing and attributes of one record.
	recordOverhead = 21
	// headerOverhead bounds the varint framing of one record header.
	headerOverhead = 10
)

var (
	// ErrBatchSent is returned when a batch is sent a second time.
	ErrBatchSent = errors.New("kafka: batch already sent")

	// ErrForeignBatch is returned when Send receives a batch from another publisher.
	ErrForeignBatch = errors.New("kafka: batch not created by this publisher")
)

// NewOpener returns a PublisherOpener that connects to the namespace named
// in the target connection string. The event hub name is used as the topic.
func NewOpener(opts Options) ports.PublisherOpener {
	return func(ctx context.Context, target domain.Target) (ports.Publisher, error) {
		props, err := azeventhubs.ParseConnectionString(target.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("parse connection string: %w", err)
		}

		cfg := newConfig(target.ConnectionString, props.FullyQualifiedNamespace, opts)
		producer, err := sarama.NewSyncProducer([]string{brokerAddress(props.FullyQualifiedNamespace)}, cfg)
		if err != nil {
			return nil, fmt.Errorf("create kafka producer: %w", err)
		}
		return newPublisher(producer, target.EventHubName, batchBytes(opts), opts.PartitionKey), nil
	}
}

// Publisher implements ports.Publisher with a sarama SyncProducer.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	maxBytes int
	key      sarama.Encoder
	keyLen   int
}

func newPublisher(producer sarama.SyncProducer, topic string, maxBytes int, partitionKey string) *Publisher {
	p := &Publisher{
		producer: producer,
		topic:    topic,
		maxBytes: maxBytes,
	}
	if partitionKey != "" {
		p.key = sarama.StringEncoder(partitionKey)
		p.keyLen = len(partitionKey)
	}
	return p
}

// NewBatch returns an empty batch. It never fails.
func (p *Publisher) NewBatch(ctx context.Context) (ports.Batch, error) {
	return &Batch{owner: p}, nil
}

// Send produces every record of the batch and waits for acknowledgement.
func (p *Publisher) Send(ctx context.Context, batch ports.Batch) error {
	b, ok := batch.(*Batch)
	if !ok || b.owner != p {
		return ErrForeignBatch
	}
	if b.sent {
		return ErrBatchSent
	}
	b.sent = true
	if len(b.msgs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.producer.SendMessages(b.msgs); err != nil {
		return fmt.Errorf("produce %d records to %s: %w", len(b.msgs), p.topic, err)
	}
	return nil
}

// Close shuts down the producer. sarama's Close does not take a context.
func (p *Publisher) Close(ctx context.Context) error {
	return p.producer.Close()
}

func (p *Publisher) message(ev domain.Event) (*sarama.ProducerMessage, int) {
	body := ev.Body()
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   p.key,
		Value: sarama.ByteEncoder(body),
	}
	size := recordOverhead + p.keyLen + len(body)
	for k, v := range ev.Properties() {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
		size += headerOverhead + len(k) + len(v)
	}
	return msg, size
}

// Batch is a byte-bounded list of records.
type Batch struct {
	owner *Publisher
	msgs  []*sarama.ProducerMessage
	bytes int
	sent  bool
}

// TryAdd appends ev unless the estimated batch size would exceed the limit.
func (b *Batch) TryAdd(ev domain.Event) (bool, error) {
	if b.sent {
		return false, ErrBatchSent
	}
	msg, size := b.owner.message(ev)
	if recordBatchOverhead+b.bytes+size > b.owner.maxBytes {
		return false, nil
	}
	b.msgs = append(b.msgs, msg)
	b.bytes += size
	return true, nil
}

// Size returns the number of records in the batch.
func (b *Batch) Size() int {
	return len(b.msgs)
}

// NumBytes returns the estimated encoded size of the batch.
func (b *Batch) NumBytes() uint64 {
	if len(b.msgs) == 0 {
		return 0
	}
	return uint64(recordBatchOverhead + b.bytes)
}
