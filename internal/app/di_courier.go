package app

import (
	"fmt"

	courierHTTP "github.com/allisson/courier-sync/internal/courier/http"
	courierRepository "github.com/allisson/courier-sync/internal/courier/repository"
	courierUsecase "github.com/allisson/courier-sync/internal/courier/usecase"
)

// DriverRepository returns the driver repository based on database driver.
func (c *Container) DriverRepository() (courierUsecase.DriverRepository, error) {
	var err error
	c.driverRepoInit.Do(func() {
		c.driverRepo, err = c.initDriverRepository()
		if err != nil {
			c.initErrors["driverRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["driverRepo"]; exists {
		return nil, storedErr
	}
	return c.driverRepo, nil
}

// OrderRepository returns the order repository based on database driver.
func (c *Container) OrderRepository() (courierUsecase.OrderRepository, error) {
	var err error
	c.orderRepoInit.Do(func() {
		c.orderRepo, err = c.initOrderRepository()
		if err != nil {
			c.initErrors["orderRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["orderRepo"]; exists {
		return nil, storedErr
	}
	return c.orderRepo, nil
}

// CourierUseCase returns the courier use case.
func (c *Container) CourierUseCase() (courierUsecase.CourierUseCase, error) {
	var err error
	c.courierUseCaseInit.Do(func() {
		c.courierUseCase, err = c.initCourierUseCase()
		if err != nil {
			c.initErrors["courierUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["courierUseCase"]; exists {
		return nil, storedErr
	}
	return c.courierUseCase, nil
}

// DriverHandler returns the HTTP handler for driver operations.
func (c *Container) DriverHandler() (*courierHTTP.DriverHandler, error) {
	var err error
	c.driverHandlerInit.Do(func() {
		c.driverHandler, err = c.initDriverHandler()
		if err != nil {
			c.initErrors["driverHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["driverHandler"]; exists {
		return nil, storedErr
	}
	return c.driverHandler, nil
}

// OrderHandler returns the HTTP handler for order operations.
func (c *Container) OrderHandler() (*courierHTTP.OrderHandler, error) {
	var err error
	c.orderHandlerInit.Do(func() {
		c.orderHandler, err = c.initOrderHandler()
		if err != nil {
			c.initErrors["orderHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["orderHandler"]; exists {
		return nil, storedErr
	}
	return c.orderHandler, nil
}

// initDriverRepository creates the driver repository instance.
func (c *Container) initDriverRepository() (courierUsecase.DriverRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for driver repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return courierRepository.NewMySQLDriverRepository(db), nil
	case "postgres":
		return courierRepository.NewPostgreSQLDriverRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initOrderRepository creates the order repository instance.
func (c *Container) initOrderRepository() (courierUsecase.OrderRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for order repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return courierRepository.NewMySQLOrderRepository(db), nil
	case "postgres":
		return courierRepository.NewPostgreSQLOrderRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initCourierUseCase creates the courier use case with all its dependencies.
func (c *Container) initCourierUseCase() (courierUsecase.CourierUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for courier use case: %w", err)
	}

	driverRepo, err := c.DriverRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get driver repository for courier use case: %w", err)
	}

	orderRepo, err := c.OrderRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get order repository for courier use case: %w", err)
	}

	queueUseCase, err := c.QueueUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get queue use case for courier use case: %w", err)
	}

	useCase := courierUsecase.NewCourierUseCase(txManager, driverRepo, orderRepo, queueUseCase, c.Logger())

	business, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for courier use case: %w", err)
	}

	return courierUsecase.NewCourierUseCaseWithMetrics(useCase, business), nil
}

// initDriverHandler creates the HTTP handler for driver operations.
func (c *Container) initDriverHandler() (*courierHTTP.DriverHandler, error) {
	useCase, err := c.CourierUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get courier use case for driver handler: %w", err)
	}
	return courierHTTP.NewDriverHandler(useCase, c.Logger()), nil
}

// initOrderHandler creates the HTTP handler for order operations.
func (c *Container) initOrderHandler() (*courierHTTP.OrderHandler, error) {
	useCase, err := c.CourierUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get courier use case for order handler: %w", err)
	}
	return courierHTTP.NewOrderHandler(useCase, c.Logger()), nil
}
