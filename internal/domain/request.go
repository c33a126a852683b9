package domain

import "fmt"

// SendRequest is the immutable input of a send run.
type SendRequest struct {
	Target       Target
	MessageCount int
	Payload      []byte
	Verbose      bool

	// RunID tags every event of the run when set.
	RunID string
}

// Validate checks the request preconditions.
// The returned error wraps ErrInvalidArgument.
func (r SendRequest) Validate() error {
	if r.MessageCount < 1 {
		return fmt.Errorf("%w: message count must be a positive integer, got %d", ErrInvalidArgument, r.MessageCount)
	}
	if err := r.Target.Validate(); err != nil {
		return err
	}
	if len(r.Payload) == 0 {
		return fmt.Errorf("%w: message payload is required", ErrInvalidArgument)
	}
	return nil
}

// Event builds the event published for every index of the run.
func (r SendRequest) Event() Event {
	if r.RunID == "" {
		return NewEvent(r.Payload, nil)
	}
	return NewEvent(r.Payload, map[string]string{RunIDProperty: r.RunID})
}
