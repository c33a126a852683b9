package domain

import "time"

// Report is the aggregated outcome of a send run.
type Report struct {
	RunID string

	EventsRequested int
	// EventsAttempted counts indices offered to a batch.
	EventsAttempted int
	EventsSent      int
	EventsFailed    int

	BatchesSent   int
	BatchesFailed int

	// Failures lists every batch that failed to transmit, in send order.
	Failures []*BatchSendError

	// ReleaseErr is set when closing the publisher failed.
	ReleaseErr error

	Duration time.Duration
}

// Complete reports whether every requested event was delivered.
func (r Report) Complete() bool {
	return r.BatchesFailed == 0 && r.EventsSent == r.EventsRequested
}

// Batches returns the number of batches handed to the publisher.
func (r Report) Batches() int {
	return r.BatchesSent + r.BatchesFailed
}
