package app

import (
	"fmt"

	queueHTTP "github.com/allisson/courier-sync/internal/queue/http"
	queueRepository "github.com/allisson/courier-sync/internal/queue/repository"
	queueUsecase "github.com/allisson/courier-sync/internal/queue/usecase"
	"github.com/allisson/courier-sync/internal/sender"
)

// QueueRepository returns the sync queue repository based on database driver.
func (c *Container) QueueRepository() (queueUsecase.QueueRepository, error) {
	var err error
	c.queueRepoInit.Do(func() {
		c.queueRepo, err = c.initQueueRepository()
		if err != nil {
			c.initErrors["queueRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["queueRepo"]; exists {
		return nil, storedErr
	}
	return c.queueRepo, nil
}

// Sender returns the network sender used to replay queued mutations.
func (c *Container) Sender() (sender.Sender, error) {
	var err error
	c.senderInit.Do(func() {
		c.sender, err = c.initSender()
		if err != nil {
			c.initErrors["sender"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sender"]; exists {
		return nil, storedErr
	}
	return c.sender, nil
}

// QueueUseCase returns the sync queue use case.
func (c *Container) QueueUseCase() (queueUsecase.QueueUseCase, error) {
	var err error
	c.queueUseCaseInit.Do(func() {
		c.queueUseCase, err = c.initQueueUseCase()
		if err != nil {
			c.initErrors["queueUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["queueUseCase"]; exists {
		return nil, storedErr
	}
	return c.queueUseCase, nil
}

// QueueHandler returns the HTTP handler for sync queue operations.
func (c *Container) QueueHandler() (*queueHTTP.QueueHandler, error) {
	var err error
	c.queueHandlerInit.Do(func() {
		c.queueHandler, err = c.initQueueHandler()
		if err != nil {
			c.initErrors["queueHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["queueHandler"]; exists {
		return nil, storedErr
	}
	return c.queueHandler, nil
}

// initQueueRepository creates the sync queue repository instance.
func (c *Container) initQueueRepository() (queueUsecase.QueueRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for queue repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return queueRepository.NewMySQLQueueRepository(db), nil
	case "postgres":
		return queueRepository.NewPostgreSQLQueueRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSender creates the HTTP sender targeting the fleet backend.
func (c *Container) initSender() (sender.Sender, error) {
	return sender.NewHTTPSender(c.config.BackendBaseURL, c.config.BackendTimeout, c.Logger()), nil
}

// initQueueUseCase creates the sync queue use case with all its dependencies.
func (c *Container) initQueueUseCase() (queueUsecase.QueueUseCase, error) {
	queueRepo, err := c.QueueRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get queue repository for queue use case: %w", err)
	}

	networkSender, err := c.Sender()
	if err != nil {
		return nil, fmt.Errorf("failed to get sender for queue use case: %w", err)
	}

	useCaseConfig := queueUsecase.Config{
		MaxSize:             c.config.QueueMaxSize,
		RetryLimit:          c.config.QueueRetryLimit,
		RetryBackoff:        c.config.QueueRetryBackoff,
		RetryBackoffMax:     c.config.QueueRetryBackoffMax,
		DefaultTTL:          c.config.QueueDefaultTTL,
		PendingPollInterval: c.config.QueuePendingPollInterval,
	}

	useCase := queueUsecase.NewSyncQueueUseCase(useCaseConfig, queueRepo, networkSender, c.Logger())

	business, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for queue use case: %w", err)
	}

	queueMetrics, err := c.QueueMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get queue metrics for queue use case: %w", err)
	}

	return queueUsecase.NewQueueUseCaseWithMetrics(useCase, business, queueMetrics), nil
}

// initQueueHandler creates the HTTP handler for sync queue operations.
func (c *Container) initQueueHandler() (*queueHTTP.QueueHandler, error) {
	useCase, err := c.QueueUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get queue use case for queue handler: %w", err)
	}
	return queueHTTP.NewQueueHandler(useCase, c.Logger()), nil
}
