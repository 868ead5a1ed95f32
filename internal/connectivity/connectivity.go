// Package connectivity tracks whether the backend is reachable and notifies
// subscribers on transitions between online and offline.
package connectivity

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Checker reports current connectivity.
type Checker interface {
	IsOnline() bool
}

// Prober performs a single reachability check.
type Prober interface {
	Probe(ctx context.Context) bool
}

// HTTPProber checks reachability with a HEAD request against a probe URL.
// Any response, error status included, counts as reachable: a 500 from the
// backend still means the network path is up.
type HTTPProber struct {
	url    string
	client *http.Client
}

// NewHTTPProber creates an HTTPProber with the given probe URL and timeout.
func NewHTTPProber(url string, timeout time.Duration) *HTTPProber {
	return &HTTPProber{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Probe implements Prober.
func (p *HTTPProber) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}

// Monitor polls a Prober and fans connectivity transitions out to
// subscribers. It starts offline until the first probe says otherwise.
type Monitor struct {
	prober   Prober
	interval time.Duration
	logger   *slog.Logger

	online atomic.Bool

	mu          sync.Mutex
	subscribers []chan bool
}

// NewMonitor creates a Monitor polling the given prober at interval.
func NewMonitor(prober Prober, interval time.Duration, logger *slog.Logger) *Monitor {
	return &Monitor{
		prober:   prober,
		interval: interval,
		logger:   logger,
	}
}

// IsOnline implements Checker.
func (m *Monitor) IsOnline() bool {
	return m.online.Load()
}

// Subscribe returns a channel emitting the connectivity state on every
// transition. A slow subscriber observes the latest state, not every
// intermediate flap. The channel is closed when the monitor stops.
func (m *Monitor) Subscribe() <-chan bool {
	ch := make(chan bool, 1)
	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()
	return ch
}

// SetOnline forces the connectivity state, notifying subscribers on change.
// Probe results still apply afterwards; this is for tests and manual
// overrides.
func (m *Monitor) SetOnline(online bool) {
	m.transition(online)
}

// Start probes immediately and then at every interval until ctx is cancelled.
// On cancellation all subscriber channels are closed.
func (m *Monitor) Start(ctx context.Context) {
	defer m.closeSubscribers()

	m.transition(m.prober.Probe(ctx))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.transition(m.prober.Probe(ctx))
		}
	}
}

func (m *Monitor) transition(online bool) {
	if m.online.Swap(online) == online {
		return
	}

	if m.logger != nil {
		if online {
			m.logger.Info("connectivity restored")
		} else {
			m.logger.Warn("connectivity lost")
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subscribers {
		select {
		case ch <- online:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- online
		}
	}
}

func (m *Monitor) closeSubscribers() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subscribers {
		close(ch)
	}
	m.subscribers = nil
}
