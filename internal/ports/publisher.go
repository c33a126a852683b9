package ports

import (
	"context"

	"github.com/bft-labs/ehsend/internal/domain"
)

// Publisher creates batches bound to a target and transmits them.
// A Publisher is owned by a single run and is not safe for concurrent use.
type Publisher interface {
	// NewBatch allocates a new empty batch.
	NewBatch(ctx context.Context) (Batch, error)

	// Send transmits a batch created by this publisher.
	// A batch must be sent at most once.
	Send(ctx context.Context, batch Batch) error

	// Close releases the underlying connection. It is called exactly once;
	// implementations are not required to be idempotent.
	Close(ctx context.Context) error
}

// Batch accumulates events up to a broker-determined size limit.
type Batch interface {
	// TryAdd appends the event if it fits. It returns false, leaving the
	// batch unchanged, when the event would exceed the batch limit.
	// An error is returned only for unexpected failures such as encoding.
	TryAdd(ev domain.Event) (bool, error)

	// Size returns the number of events in the batch.
	Size() int

	// NumBytes returns the encoded size of the batch as tracked by the publisher.
	NumBytes() uint64
}

// PublisherOpener acquires a Publisher bound to target.
type PublisherOpener func(ctx context.Context, target domain.Target) (Publisher, error)
