// Package sender defines the network sender contract used to replay queued
// mutations, plus an HTTP implementation. Any conforming sender (HTTP client,
// mock) may be substituted into the sync engine.
package sender

import (
	"context"
)

// Request describes one remote-facing mutation reconstructed from a queue
// record payload.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    []byte
}

// Response carries the backend's reply for a successfully delivered request.
type Response struct {
	StatusCode int
	Body       []byte
}

// Sender delivers a single request to the backend. Implementations must
// enforce their own bounded timeout; a timeout is reported as a failure.
type Sender interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}
