package capture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/allisson/courier-sync/internal/errors"
	queueDomain "github.com/allisson/courier-sync/internal/queue/domain"
	queueUsecase "github.com/allisson/courier-sync/internal/queue/usecase"
)

// QueueIDHeader carries the id of the queued record on a synthesized
// accepted response.
const QueueIDHeader = "X-Queue-ID"

// OnlineChecker reports current connectivity.
type OnlineChecker interface {
	IsOnline() bool
}

// Transport is an http.RoundTripper that applies the capture policy: online
// requests pass through untouched, offline mutations are diverted into the
// sync queue and answered with a synthesized 202, offline reads fail with an
// offline error.
type Transport struct {
	next    http.RoundTripper
	queue   queueUsecase.QueueUseCase
	checker OnlineChecker
	logger  *slog.Logger
}

// NewTransport creates a capture Transport. A nil next falls back to
// http.DefaultTransport.
func NewTransport(
	next http.RoundTripper,
	queue queueUsecase.QueueUseCase,
	checker OnlineChecker,
	logger *slog.Logger,
) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{
		next:    next,
		queue:   queue,
		checker: checker,
		logger:  logger,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	switch Decide(req.Method, req.URL.Path, t.checker.IsOnline()) {
	case DecisionPassthrough:
		return t.next.RoundTrip(req)
	case DecisionEnqueue:
		return t.enqueue(req)
	default:
		return nil, apperrors.Wrapf(apperrors.ErrOffline, "%s %s cannot be queued", req.Method, req.URL.Path)
	}
}

// enqueue captures the request into the sync queue and synthesizes an
// accepted response so the caller can proceed as if the write landed.
func (t *Transport) enqueue(req *http.Request) (*http.Response, error) {
	body, err := readBody(req)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read request body")
	}

	payload := &queueDomain.Payload{
		Method:   strings.ToUpper(req.Method),
		Path:     req.URL.RequestURI(),
		Headers:  flattenHeaders(req.Header),
		Data:     body,
		Priority: PriorityFor(req.URL.Path),
	}

	entityType, entityID := entityFromPath(req.URL.Path)
	record, err := t.queue.Enqueue(req.Context(), entityType, entityID, OperationFor(req.Method), payload)
	if err != nil {
		return nil, err
	}

	if t.logger != nil {
		t.logger.Info("captured offline request",
			slog.String("method", payload.Method),
			slog.String("path", req.URL.Path),
			slog.Int64("queue_id", record.ID),
			slog.String("priority", payload.Priority.String()),
		)
	}

	return acceptedResponse(req, record.ID)
}

// readBody drains and restores the request body.
func readBody(req *http.Request) (json.RawMessage, error) {
	if req.Body == nil {
		return nil, nil
	}
	defer func() { _ = req.Body.Close() }()

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	if len(body) == 0 {
		return nil, nil
	}
	return body, nil
}

// flattenHeaders keeps the first value of each header. Hop-by-hop and
// transport-managed headers are skipped; they will be regenerated on replay.
func flattenHeaders(header http.Header) map[string]string {
	if len(header) == 0 {
		return nil
	}
	out := make(map[string]string, len(header))
	for name, values := range header {
		switch http.CanonicalHeaderKey(name) {
		case "Connection", "Content-Length", "Transfer-Encoding", "Host":
			continue
		}
		if len(values) > 0 {
			out[name] = values[0]
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// entityFromPath derives the queue entity identity from the request path: the
// first path segment is the entity type and the following segment, when
// present, the entity id. A collection-level request gets a generated id so it
// never deduplicates against unrelated requests.
func entityFromPath(path string) (string, string) {
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	// Skip a leading version segment such as v1.
	if len(segments) > 0 && len(segments[0]) >= 2 && segments[0][0] == 'v' {
		if _, err := strconv.Atoi(segments[0][1:]); err == nil {
			segments = segments[1:]
		}
	}

	entityType := "request"
	if len(segments) > 0 {
		entityType = segments[0]
	}
	if len(segments) > 1 {
		return entityType, segments[1]
	}
	return entityType, uuid.Must(uuid.NewV7()).String()
}

// acceptedResponse synthesizes a 202 carrying the queue record id.
func acceptedResponse(req *http.Request, queueID int64) (*http.Response, error) {
	body, err := json.Marshal(map[string]any{
		"queued":   true,
		"queue_id": queueID,
	})
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set(QueueIDHeader, fmt.Sprintf("%d", queueID))

	return &http.Response{
		Status:        http.StatusText(http.StatusAccepted),
		StatusCode:    http.StatusAccepted,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}
