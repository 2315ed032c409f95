package network

import (
	"strings"
	"time"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
)

// RouterStatus represents the reachability of a router
type RouterStatus string

const (
	RouterStatusOnline      RouterStatus = "online"
	RouterStatusOffline     RouterStatus = "offline"
	RouterStatusMaintenance RouterStatus = "maintenance" // Deliberately skipped by sweeps
)

// Router represents one managed RouterOS device.
// It is the aggregate root for device connectivity and health.
type Router struct {
	shared.BaseAggregateRoot
	Name         string       `gorm:"type:varchar(100);not null;uniqueIndex"`
	Host         string       `gorm:"type:varchar(255);not null"`
	Port         int          `gorm:"not null;default:8728"`
	Username     string       `gorm:"type:varchar(100);not null"`
	Password     string       `gorm:"type:varchar(255);not null"`
	Location     string       `gorm:"type:varchar(200)"`
	Status       RouterStatus `gorm:"type:varchar(20);not null;default:'offline'"`
	Identity     string       `gorm:"type:varchar(100)"`
	OSVersion    string       `gorm:"type:varchar(50)"`
	BoardName    string       `gorm:"type:varchar(100)"`
	Model        string       `gorm:"type:varchar(100)"`
	Uptime       string       `gorm:"type:varchar(50)"`
	CPULoad      int          `gorm:"not null;default:0"`
	MemoryUsage  int          `gorm:"not null;default:0"` // Percent
	LastSeenAt   *time.Time
	LastCheckAt  *time.Time
	FailureCount int `gorm:"not null;default:0"` // Consecutive failed health checks
}

// TableName returns the table name for GORM
func (Router) TableName() string {
	return "routers"
}

// HealthReport carries the device facts gathered by one health check
type HealthReport struct {
	Identity    string
	OSVersion   string
	BoardName   string
	Model       string
	Uptime      string
	CPULoad     int
	MemoryUsage int
}

// NewRouter creates a new router with connection parameters
func NewRouter(name, host string, port int, username, password string) (*Router, error) {
	if err := validateRouterName(name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(host) == "" {
		return nil, shared.NewDomainError("INVALID_HOST", "Router host cannot be empty")
	}
	if port <= 0 || port > 65535 {
		return nil, shared.NewDomainError("INVALID_PORT", "Router port must be between 1 and 65535")
	}
	if username == "" {
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Router username cannot be empty")
	}

	router := &Router{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Host:              host,
		Port:              port,
		Username:          username,
		Password:          password,
		Status:            RouterStatusOffline,
	}

	return router, nil
}

// UpdateConnection changes the connection parameters
func (r *Router) UpdateConnection(host string, port int, username, password string) error {
	if strings.TrimSpace(host) == "" {
		return shared.NewDomainError("INVALID_HOST", "Router host cannot be empty")
	}
	if port <= 0 || port > 65535 {
		return shared.NewDomainError("INVALID_PORT", "Router port must be between 1 and 65535")
	}
	if username == "" {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Router username cannot be empty")
	}

	r.Host = host
	r.Port = port
	r.Username = username
	if password != "" {
		r.Password = password
	}
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// RecordHealth stores a successful health check and brings the router online
func (r *Router) RecordHealth(report HealthReport) {
	now := time.Now()

	wasOffline := r.Status == RouterStatusOffline

	r.Identity = report.Identity
	r.OSVersion = report.OSVersion
	r.BoardName = report.BoardName
	r.Model = report.Model
	r.Uptime = report.Uptime
	r.CPULoad = report.CPULoad
	r.MemoryUsage = report.MemoryUsage
	r.LastSeenAt = &now
	r.LastCheckAt = &now
	r.FailureCount = 0

	if r.Status != RouterStatusMaintenance {
		r.Status = RouterStatusOnline
	}
	r.UpdatedAt = now
	r.IncrementVersion()

	if wasOffline && r.Status == RouterStatusOnline {
		r.AddDomainEvent(NewRouterOnlineEvent(r))
	}
}

// RecordFailure stores a failed health check. The router goes offline after
// the first failure; FailureCount tracks how long it has been unreachable.
func (r *Router) RecordFailure() {
	now := time.Now()

	wasOnline := r.Status == RouterStatusOnline

	r.LastCheckAt = &now
	r.FailureCount++
	if r.Status != RouterStatusMaintenance {
		r.Status = RouterStatusOffline
	}
	r.UpdatedAt = now
	r.IncrementVersion()

	if wasOnline && r.Status == RouterStatusOffline {
		r.AddDomainEvent(NewRouterOfflineEvent(r))
	}
}

// EnterMaintenance takes the router out of sweep rotation
func (r *Router) EnterMaintenance() error {
	if r.Status == RouterStatusMaintenance {
		return shared.NewDomainError("ALREADY_IN_MAINTENANCE", "Router is already in maintenance")
	}

	r.Status = RouterStatusMaintenance
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// ExitMaintenance returns the router to normal rotation as offline until the
// next health check proves otherwise.
func (r *Router) ExitMaintenance() error {
	if r.Status != RouterStatusMaintenance {
		return shared.NewDomainError("NOT_IN_MAINTENANCE", "Router is not in maintenance")
	}

	r.Status = RouterStatusOffline
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// IsOnline returns true if the router answered its last health check
func (r *Router) IsOnline() bool {
	return r.Status == RouterStatusOnline
}

// InMaintenance returns true if the router is deliberately out of rotation
func (r *Router) InMaintenance() bool {
	return r.Status == RouterStatusMaintenance
}

func validateRouterName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Router name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Router name cannot exceed 100 characters")
	}
	return nil
}
