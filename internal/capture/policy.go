// Package capture classifies outgoing backend requests and, while offline,
// diverts mutations into the sync queue instead of letting them fail.
package capture

import (
	"strings"

	queueDomain "github.com/allisson/courier-sync/internal/queue/domain"
)

// Decision is the capture policy verdict for a single request.
type Decision int

const (
	// DecisionPassthrough sends the request to the backend unchanged.
	DecisionPassthrough Decision = iota
	// DecisionEnqueue records the request in the sync queue for later replay.
	DecisionEnqueue
	// DecisionReject fails the request immediately with an offline error.
	DecisionReject
)

// String returns the lowercase name of the decision.
func (d Decision) String() string {
	switch d {
	case DecisionPassthrough:
		return "passthrough"
	case DecisionEnqueue:
		return "enqueue"
	case DecisionReject:
		return "reject"
	default:
		return "unknown"
	}
}

// mutating reports whether the method changes backend state. Method matching
// is case-insensitive.
func mutating(method string) bool {
	switch {
	case strings.EqualFold(method, "POST"),
		strings.EqualFold(method, "PUT"),
		strings.EqualFold(method, "PATCH"),
		strings.EqualFold(method, "DELETE"):
		return true
	default:
		return false
	}
}

// Decide classifies a request. Online traffic always passes through. Offline
// mutations are enqueued for replay; offline reads are rejected because a
// queued read has no one left to answer. The classification is total: every
// method and path combination yields a verdict.
func Decide(method, path string, online bool) Decision {
	if online {
		return DecisionPassthrough
	}
	if mutating(method) {
		return DecisionEnqueue
	}
	return DecisionReject
}

// PriorityFor maps a request path to a replay priority tier. Order and payment
// traffic outranks courier telemetry; analytics-style paths are replayed last.
func PriorityFor(path string) queueDomain.Priority {
	p := strings.ToLower(path)
	switch {
	case strings.Contains(p, "/orders"), strings.Contains(p, "/payments"):
		return queueDomain.PriorityCritical
	case strings.Contains(p, "/location"), strings.Contains(p, "/status"):
		return queueDomain.PriorityHigh
	case strings.Contains(p, "/analytics"), strings.Contains(p, "/telemetry"), strings.Contains(p, "/events"):
		return queueDomain.PriorityLow
	default:
		return queueDomain.PriorityNormal
	}
}

// OperationFor maps an HTTP method to the queue operation used for captured
// requests.
func OperationFor(method string) queueDomain.Operation {
	switch {
	case strings.EqualFold(method, "POST"):
		return queueDomain.OperationPost
	case strings.EqualFold(method, "PUT"):
		return queueDomain.OperationPut
	case strings.EqualFold(method, "PATCH"):
		return queueDomain.OperationPatch
	case strings.EqualFold(method, "DELETE"):
		return queueDomain.OperationDelete
	default:
		return queueDomain.OperationPost
	}
}
