package mikrotik

import (
	"context"
	"time"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/network"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/routeros"
	"go.uber.org/zap"
)

// Connector dials routers from their stored connection parameters. Each
// Connect returns a fresh session; callers close it when done.
type Connector struct {
	timeout time.Duration
	log     *zap.Logger
}

// NewConnector creates a connector with a per-command timeout
func NewConnector(timeout time.Duration, log *zap.Logger) *Connector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Connector{timeout: timeout, log: log}
}

// Connect opens an authenticated session against the router
func (c *Connector) Connect(ctx context.Context, router *network.Router) (*Session, error) {
	return Connect(ctx, routeros.Config{
		Host:     router.Host,
		Port:     router.Port,
		Username: router.Username,
		Password: router.Password,
		Timeout:  c.timeout,
		Logger:   c.log,
	}, c.log)
}
