package isolation

import (
	"context"
	"time"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/billing"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/network"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/mikrotik"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/routeros"
)

// Device is the slice of the RouterOS facade the isolation flows need.
// *mikrotik.Session satisfies it; tests substitute fakes.
type Device interface {
	FindSecret(ctx context.Context, username string) (*routeros.Row, error)
	EnableSecret(ctx context.Context, username string) error
	DisableSecret(ctx context.Context, username string) error
	ChangeProfile(ctx context.Context, username, profile string) error
	DisconnectSession(ctx context.Context, username string) error
	AddressListAdd(ctx context.Context, list, address, comment string) error
	AddressListRemove(ctx context.Context, list, address string) error
	AddressListContains(ctx context.Context, list, address string) (bool, error)
	SystemInfo(ctx context.Context) (mikrotik.Info, error)
	Close() error
}

// DeviceConnector opens an authenticated facade session against one router
type DeviceConnector interface {
	Connect(ctx context.Context, router *network.Router) (Device, error)
}

// Locker serializes isolation work per customer across processes
type Locker interface {
	// TryAcquire attempts to take the named lock. When acquired it returns a
	// release func and true; when held elsewhere it returns false without
	// blocking.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

// Notifier informs operators or customers about isolation transitions.
// Implementations must not fail the business flow; errors are logged only.
type Notifier interface {
	NotifyIsolated(ctx context.Context, customer *billing.Customer, reason string)
	NotifyReopened(ctx context.Context, customer *billing.Customer)
}
