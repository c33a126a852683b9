package domain

import (
	"fmt"
	"strings"
)

// Target identifies where events are published.
type Target struct {
	ConnectionString string
	EventHubName     string
}

// Validate checks that both parts of the target are present.
func (t Target) Validate() error {
	if strings.TrimSpace(t.ConnectionString) == "" {
		return fmt.Errorf("%w: connection string is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(t.EventHubName) == "" {
		return fmt.Errorf("%w: event hub name is required", ErrInvalidArgument)
	}
	return nil
}

// Namespace returns the host of the Endpoint entry in the connection string,
// or an empty string if there is none. It never includes key material.
func (t Target) Namespace() string {
	for _, part := range strings.Split(t.ConnectionString, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(k), "Endpoint") {
			continue
		}
		v = strings.TrimSpace(v)
		if i := strings.Index(v, "://"); i >= 0 {
			v = v[i+3:]
		}
		return strings.TrimSuffix(v, "/")
	}
	return ""
}

// String returns a log-safe description of the target.
func (t Target) String() string {
	if ns := t.Namespace(); ns != "" {
		return ns + "/" + t.EventHubName
	}
	return t.EventHubName
}
