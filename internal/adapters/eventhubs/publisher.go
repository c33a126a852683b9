// Package eventhubs implements ports.Publisher over the Event Hubs AMQP
// protocol using the azeventhubs SDK.
package eventhubs

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azeventhubs"

	"github.com/bft-labs/ehsend/internal/domain"
	"github.com/bft-labs/ehsend/internal/ports"
)

var (
	// ErrBatchSent is returned when a batch is sent a second time.
	ErrBatchSent = errors.New("eventhubs: batch already sent")

	// ErrForeignBatch is returned when Send receives a batch from another publisher.
	ErrForeignBatch = errors.New("eventhubs: batch not created by this publisher")
)

// Options configures batches created by the publisher.
type Options struct {
	// PartitionKey routes every batch to the partition owning the key.
	PartitionKey string
	// PartitionID pins every batch to a partition. Exclusive with PartitionKey.
	PartitionID string
	// MaxBatchBytes caps batch size below the link maximum. Zero uses the link maximum.
	MaxBatchBytes uint64
	// ApplicationID is sent as part of the AMQP user agent.
	ApplicationID string
}

// NewOpener returns a PublisherOpener that connects with a connection string.
func NewOpener(opts Options) ports.PublisherOpener {
	return func(ctx context.Context, target domain.Target) (ports.Publisher, error) {
		client, err := azeventhubs.NewProducerClientFromConnectionString(
			target.ConnectionString,
			target.EventHubName,
			&azeventhubs.ProducerClientOptions{ApplicationID: opts.ApplicationID},
		)
		if err != nil {
			return nil, fmt.Errorf("create producer client: %w", err)
		}
		return newPublisher(&clientWrapper{client: client}, opts), nil
	}
}

// Publisher implements ports.Publisher using an Event Hubs producer client.
type Publisher struct {
	client producerClient
	opts   Options
}

func newPublisher(client producerClient, opts Options) *Publisher {
	return &Publisher{client: client, opts: opts}
}

// NewBatch allocates an empty batch sized by the service link.
func (p *Publisher) NewBatch(ctx context.Context) (ports.Batch, error) {
	inner, err := p.client.NewEventDataBatch(ctx, p.batchOptions())
	if err != nil {
		return nil, err
	}
	return &Batch{inner: inner, owner: p}, nil
}

func (p *Publisher) batchOptions() *azeventhubs.EventDataBatchOptions {
	opts := &azeventhubs.EventDataBatchOptions{MaxBytes: p.opts.MaxBatchBytes}
	if p.opts.PartitionKey != "" {
		opts.PartitionKey = &p.opts.PartitionKey
	}
	if p.opts.PartitionID != "" {
		opts.PartitionID = &p.opts.PartitionID
	}
	return opts
}

// Send transmits a batch created by NewBatch.
func (p *Publisher) Send(ctx context.Context, batch ports.Batch) error {
	b, ok := batch.(*Batch)
	if !ok || b.owner != p {
		return ErrForeignBatch
	}
	if b.sent {
		return ErrBatchSent
	}
	b.sent = true
	return p.client.SendEventDataBatch(ctx, b.inner, nil)
}

// Close closes the AMQP connection.
func (p *Publisher) Close(ctx context.Context) error {
	return p.client.Close(ctx)
}

// Batch wraps an azeventhubs event data batch.
type Batch struct {
	inner eventDataBatch
	owner *Publisher
	sent  bool
}

// TryAdd adds ev unless it would exceed the batch byte limit.
func (b *Batch) TryAdd(ev domain.Event) (bool, error) {
	if b.sent {
		return false, ErrBatchSent
	}
	err := b.inner.AddEventData(toEventData(ev), nil)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, azeventhubs.ErrEventDataTooLarge):
		return false, nil
	default:
		return false, err
	}
}

// Size returns the number of events in the batch.
func (b *Batch) Size() int {
	return int(b.inner.NumEvents())
}

// NumBytes returns the encoded batch size.
func (b *Batch) NumBytes() uint64 {
	return b.inner.NumBytes()
}

func toEventData(ev domain.Event) *azeventhubs.EventData {
	ed := &azeventhubs.EventData{Body: ev.Body()}
	if props := ev.Properties(); len(props) > 0 {
		ed.Properties = make(map[string]any, len(props))
		for k, v := range props {
			ed.Properties[k] = v
		}
	}
	return ed
}
