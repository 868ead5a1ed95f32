package app

import (
	"fmt"

	"github.com/allisson/courier-sync/internal/capture"
	"github.com/allisson/courier-sync/internal/connectivity"
	"github.com/allisson/courier-sync/internal/queue/worker"
)

// ConnectivityMonitor returns the reachability monitor for the fleet backend.
func (c *Container) ConnectivityMonitor() (*connectivity.Monitor, error) {
	var err error
	c.monitorInit.Do(func() {
		c.monitor, err = c.initConnectivityMonitor()
		if err != nil {
			c.initErrors["monitor"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["monitor"]; exists {
		return nil, storedErr
	}
	return c.monitor, nil
}

// Coordinator returns the connectivity-triggered drain coordinator.
func (c *Container) Coordinator() (*worker.Coordinator, error) {
	var err error
	c.coordinatorInit.Do(func() {
		c.coordinator, err = c.initCoordinator()
		if err != nil {
			c.initErrors["coordinator"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["coordinator"]; exists {
		return nil, storedErr
	}
	return c.coordinator, nil
}

// CaptureTransport returns the request capture transport. Embedding apps
// install it as the http.RoundTripper of their backend client so offline
// mutations divert into the sync queue instead of failing.
func (c *Container) CaptureTransport() (*capture.Transport, error) {
	var err error
	c.captureTransportInit.Do(func() {
		c.captureTransport, err = c.initCaptureTransport()
		if err != nil {
			c.initErrors["captureTransport"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["captureTransport"]; exists {
		return nil, storedErr
	}
	return c.captureTransport, nil
}

// initConnectivityMonitor creates the connectivity monitor with its HTTP prober.
func (c *Container) initConnectivityMonitor() (*connectivity.Monitor, error) {
	prober := connectivity.NewHTTPProber(c.config.ConnectivityProbeURL, c.config.ConnectivityProbeTimeout)
	return connectivity.NewMonitor(prober, c.config.ConnectivityProbeInterval, c.Logger()), nil
}

// initCoordinator creates the drain coordinator with all its dependencies.
func (c *Container) initCoordinator() (*worker.Coordinator, error) {
	queueUseCase, err := c.QueueUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get queue use case for coordinator: %w", err)
	}

	monitor, err := c.ConnectivityMonitor()
	if err != nil {
		return nil, fmt.Errorf("failed to get connectivity monitor for coordinator: %w", err)
	}

	coordinatorConfig := worker.Config{
		DrainInterval: c.config.QueueDrainInterval,
	}

	return worker.NewCoordinator(coordinatorConfig, queueUseCase, monitor, c.Logger()), nil
}

// initCaptureTransport creates the request capture transport.
func (c *Container) initCaptureTransport() (*capture.Transport, error) {
	queueUseCase, err := c.QueueUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get queue use case for capture transport: %w", err)
	}

	monitor, err := c.ConnectivityMonitor()
	if err != nil {
		return nil, fmt.Errorf("failed to get connectivity monitor for capture transport: %w", err)
	}

	return capture.NewTransport(nil, queueUseCase, monitor, c.Logger()), nil
}
