// Package worker runs the drain coordinator: a small state machine that
// watches connectivity and triggers sync queue drains when the backend
// becomes reachable, plus a periodic background drain while online.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	queueUsecase "github.com/allisson/courier-sync/internal/queue/usecase"
)

// State is the coordinator's lifecycle state.
type State string

const (
	// StateInitial holds until the first connectivity report arrives.
	StateInitial State = "initial"
	// StateOnline means the backend is reachable and no drain is running.
	StateOnline State = "online"
	// StateOffline means the backend is unreachable; mutations accumulate.
	StateOffline State = "offline"
	// StateSyncing means a drain cycle is in progress.
	StateSyncing State = "syncing"
)

// ConnectivityMonitor exposes the connectivity state and its transitions.
type ConnectivityMonitor interface {
	IsOnline() bool
	Subscribe() <-chan bool
}

// Config holds coordinator configuration.
type Config struct {
	// DrainInterval is the period of the background drain while online.
	DrainInterval time.Duration
}

// Coordinator drives sync queue drains from connectivity transitions and a
// background ticker. Drain concurrency control lives in the queue engine;
// the coordinator only decides when to ask.
type Coordinator struct {
	config  Config
	queue   queueUsecase.QueueUseCase
	monitor ConnectivityMonitor
	logger  *slog.Logger

	mu    sync.RWMutex
	state State
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(
	config Config,
	queue queueUsecase.QueueUseCase,
	monitor ConnectivityMonitor,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		config:  config,
		queue:   queue,
		monitor: monitor,
		logger:  logger,
		state:   StateInitial,
	}
}

// State returns the coordinator's current state.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Coordinator) setState(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

// Run drives the coordinator until ctx is cancelled. It resolves the initial
// connectivity state, drains on every offline-to-online transition, and
// drains periodically while online to flush records whose retry backoff has
// elapsed.
func (c *Coordinator) Run(ctx context.Context) error {
	updates := c.monitor.Subscribe()

	if c.monitor.IsOnline() {
		c.drainIfPending(ctx)
	} else {
		c.setState(StateOffline)
	}

	ticker := time.NewTicker(c.config.DrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case online, open := <-updates:
			if !open {
				return nil
			}
			if online {
				if c.logger != nil {
					c.logger.Info("connectivity restored, draining sync queue")
				}
				c.drainIfPending(ctx)
			} else {
				c.setState(StateOffline)
			}
		case <-ticker.C:
			if c.State() == StateOnline {
				c.drainIfPending(ctx)
			}
		}
	}
}

// drainIfPending enters syncing only when records are actually waiting. An
// empty queue settles the state directly, without a syncing round trip. If the
// count itself fails the drain runs anyway; the engine copes with an empty
// queue and the records must not be stranded on a counting error.
func (c *Coordinator) drainIfPending(ctx context.Context) {
	count, err := c.queue.PendingCount(ctx)
	if err == nil && count == 0 {
		if c.monitor.IsOnline() {
			c.setState(StateOnline)
		} else {
			c.setState(StateOffline)
		}
		return
	}
	if err != nil && c.logger != nil {
		c.logger.Error("pending count failed, draining anyway", slog.Any("error", err))
	}
	c.drain(ctx)
}

// drain runs one drain cycle and settles the state afterwards based on
// whether connectivity survived the cycle.
func (c *Coordinator) drain(ctx context.Context) {
	c.setState(StateSyncing)

	result, err := c.queue.Drain(ctx)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("drain cycle failed", slog.Any("error", err))
		}
	} else if result != nil && !result.Skipped && c.logger != nil {
		c.logger.Debug("drain cycle done",
			slog.Int("completed", result.Completed),
			slog.Int("failed", result.Failed),
			slog.Int("expired", result.Expired),
		)
	}

	if c.monitor.IsOnline() {
		c.setState(StateOnline)
	} else {
		c.setState(StateOffline)
	}
}
