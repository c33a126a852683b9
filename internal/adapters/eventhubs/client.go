package eventhubs

import (
	"context"
	"errors"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azeventhubs"
)

// eventDataBatch is the subset of *azeventhubs.EventDataBatch used by the publisher.
type eventDataBatch interface {
	AddEventData(eventData *azeventhubs.EventData, options *azeventhubs.AddEventDataOptions) error
	NumEvents() int32
	NumBytes() uint64
}

// producerClient is the subset of *azeventhubs.ProducerClient used by the publisher.
type producerClient interface {
	NewEventDataBatch(ctx context.Context, options *azeventhubs.EventDataBatchOptions) (eventDataBatch, error)
	SendEventDataBatch(ctx context.Context, batch eventDataBatch, options *azeventhubs.SendEventDataBatchOptions) error
	Close(ctx context.Context) error
}

var errForeignEventDataBatch = errors.New("eventhubs: batch was not created by the azeventhubs client")

// clientWrapper adapts *azeventhubs.ProducerClient to producerClient.
type clientWrapper struct {
	client *azeventhubs.ProducerClient
}

func (w *clientWrapper) NewEventDataBatch(ctx context.Context, options *azeventhubs.EventDataBatchOptions) (eventDataBatch, error) {
	b, err := w.client.NewEventDataBatch(ctx, options)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (w *clientWrapper) SendEventDataBatch(ctx context.Context, batch eventDataBatch, options *azeventhubs.SendEventDataBatchOptions) error {
	b, ok := batch.(*azeventhubs.EventDataBatch)
	if !ok {
		return errForeignEventDataBatch
	}
	return w.client.SendEventDataBatch(ctx, b, options)
}

func (w *clientWrapper) Close(ctx context.Context) error {
	return w.client.Close(ctx)
}

var _ eventDataBatch = (*azeventhubs.EventDataBatch)(nil)
