package redis

import (
	"context"
	"fmt"

	"github.com/kbukum/tokengate/component"
	"github.com/kbukum/tokengate/logger"
)

// Component wraps Client and implements component.Component for lifecycle management.
type Component struct {
	client *Client
	cfg    Config
	log    *logger.Logger
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a Redis component. The client is built immediately
// so dependents can hold it before Start; Start verifies connectivity.
func NewComponent(cfg Config, log *logger.Logger) (*Component, error) {
	cfg.ApplyDefaults()
	log = log.WithComponent("redis")
	client, err := New(cfg, log)
	if err != nil {
		return nil, err
	}
	return &Component{client: client, cfg: cfg, log: log}, nil
}

// Client returns the underlying *Client.
func (c *Component) Client() *Client {
	return c.client
}

// Name returns the component name.
func (c *Component) Name() string { return "redis" }

// Start verifies connectivity.
func (c *Component) Start(ctx context.Context) error {
	if err := c.client.Ping(ctx); err != nil {
		return fmt.Errorf("redis start: %w", err)
	}
	c.log.Info("Redis component started")
	return nil
}

// Stop closes the connection pool.
func (c *Component) Stop(_ context.Context) error {
	return c.client.Close()
}

// Health pings the server.
func (c *Component) Health(ctx context.Context) component.Health {
	if err := c.client.Ping(ctx); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: err.Error(),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns infrastructure summary info for the startup log.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Redis",
		Type:    "redis",
		Details: fmt.Sprintf("%s db=%d pool=%d", c.cfg.Addr, c.cfg.DB, c.cfg.PoolSize),
	}
}
