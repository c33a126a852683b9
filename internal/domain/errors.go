package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a send request fails validation.
	// No publisher is opened when this error is returned.
	ErrInvalidArgument = errors.New("ehsend: invalid argument")

	// ErrPayloadTooLarge is returned when a single event does not fit in an
	// otherwise empty batch.
	ErrPayloadTooLarge = errors.New("ehsend: payload too large for an empty batch")
)

// BatchSendError records a batch that failed to transmit.
// It is not fatal: the run continues with the next batch.
type BatchSendError struct {
	// StartIndex is the index of the first event in the batch.
	StartIndex int
	// Size is the number of events in the batch.
	Size int
	Err  error
}

func (e *BatchSendError) Error() string {
	return fmt.Sprintf("send batch of %d events starting at index %d: %v", e.Size, e.StartIndex, e.Err)
}

func (e *BatchSendError) Unwrap() error {
	return e.Err
}

// ReleaseError records a failure while closing the publisher.
type ReleaseError struct {
	Err error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("close publisher: %v", e.Err)
}

func (e *ReleaseError) Unwrap() error {
	return e.Err
}
