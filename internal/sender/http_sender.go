package sender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/allisson/courier-sync/internal/errors"
)

// ConnectivityError marks a send failure caused by the network being
// unreachable rather than by the backend rejecting the request. The drain loop
// fails fast on these: remaining records in the cycle would fail the same way.
type ConnectivityError struct {
	Err error
}

// Error returns the underlying error message.
func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("connectivity error: %v", e.Err)
}

// Unwrap exposes the underlying transport error.
func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// IsConnectivityError reports whether err is a connectivity-class send failure.
func IsConnectivityError(err error) bool {
	var connErr *ConnectivityError
	return errors.As(err, &connErr)
}

// HTTPSender delivers requests to the fleet backend over HTTP.
type HTTPSender struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPSender creates an HTTPSender for the given backend base URL with a
// bounded per-request timeout.
func NewHTTPSender(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPSender {
	return &HTTPSender{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Send delivers the request. Transport-level failures (dial, DNS, timeout) are
// reported as ConnectivityError; non-2xx backend replies as ErrSendFailure.
func (s *HTTPSender) Send(ctx context.Context, req *Request) (*Response, error) {
	target := s.baseURL + "/" + strings.TrimLeft(req.Path, "/")

	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(req.Method), target, bytes.NewReader(req.Body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSendFailure, err.Error())
	}

	if len(req.Body) > 0 {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("send failed",
				slog.String("method", req.Method),
				slog.String("path", req.Path),
				slog.Any("error", err),
			)
		}
		if isTransportError(err) {
			return nil, &ConnectivityError{Err: err}
		}
		return nil, apperrors.Wrap(apperrors.ErrSendFailure, err.Error())
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSendFailure, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.Wrapf(apperrors.ErrSendFailure, "backend returned %d", resp.StatusCode)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// isTransportError reports whether err happened before a response was
// received: connection refused, unreachable host, DNS failure, or timeout.
func isTransportError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// url.Error wraps every client.Do failure; treat anything that is not
		// a context cancellation as unreachable-network.
		return !errors.Is(urlErr.Err, context.Canceled)
	}

	return false
}
