// Package network holds the application service managing RouterOS devices:
// registration, connection parameters and periodic health refresh.
package network

import (
	"context"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/network"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/mikrotik"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InfoReader is the slice of the device facade health checks need
type InfoReader interface {
	SystemInfo(ctx context.Context) (mikrotik.Info, error)
	Close() error
}

// Connector opens a facade session for health probing
type Connector interface {
	Connect(ctx context.Context, router *network.Router) (InfoReader, error)
}

// Service manages the router fleet
type Service struct {
	routers   network.RouterRepository
	connector Connector
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewService creates the router service
func NewService(routers network.RouterRepository, connector Connector, publisher shared.EventPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		routers:   routers,
		connector: connector,
		publisher: publisher,
		logger:    logger,
	}
}

// Register adds a router to the fleet
func (s *Service) Register(ctx context.Context, name, host string, port int, username, password string) (*network.Router, error) {
	if existing, err := s.routers.FindByName(ctx, name); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	router, err := network.NewRouter(name, host, port, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.routers.Save(ctx, router); err != nil {
		return nil, err
	}

	s.logger.Info("router registered", zap.String("name", name), zap.String("host", host))
	return router, nil
}

// Refresh health-checks one router and persists the outcome
func (s *Service) Refresh(ctx context.Context, routerID uuid.UUID) (*network.Router, error) {
	router, err := s.routers.FindByID(ctx, routerID)
	if err != nil {
		return nil, err
	}

	s.refresh(ctx, router)

	if err := s.routers.Save(ctx, router); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, router)

	return router, nil
}

// RefreshResult summarizes a fleet-wide health refresh
type RefreshResult struct {
	Checked int `json:"checked"`
	Online  int `json:"online"`
	Offline int `json:"offline"`
	Skipped int `json:"skipped"` // In maintenance
}

// RefreshAll health-checks every router not in maintenance. One unreachable
// device never stops the rest of the fleet refresh.
func (s *Service) RefreshAll(ctx context.Context) (*RefreshResult, error) {
	routers, err := s.routers.FindAll(ctx, shared.Filter{Page: 1, PageSize: 1000})
	if err != nil {
		return nil, err
	}

	result := &RefreshResult{}
	for i := range routers {
		router := &routers[i]
		if router.InMaintenance() {
			result.Skipped++
			continue
		}

		s.refresh(ctx, router)
		result.Checked++
		if router.IsOnline() {
			result.Online++
		} else {
			result.Offline++
		}

		if err := s.routers.Save(ctx, router); err != nil {
			s.logger.Error("router save failed", zap.String("router", router.Name), zap.Error(err))
			continue
		}
		s.publishEvents(ctx, router)
	}

	s.logger.Info("fleet refresh finished",
		zap.Int("checked", result.Checked),
		zap.Int("online", result.Online),
		zap.Int("offline", result.Offline),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

func (s *Service) refresh(ctx context.Context, router *network.Router) {
	dev, err := s.connector.Connect(ctx, router)
	if err != nil {
		s.logger.Warn("router unreachable",
			zap.String("router", router.Name),
			zap.String("host", router.Host),
			zap.Error(err))
		router.RecordFailure()
		return
	}
	defer dev.Close()

	info, err := dev.SystemInfo(ctx)
	if err != nil {
		router.RecordFailure()
		return
	}

	router.RecordHealth(network.HealthReport{
		Identity:    info.Identity,
		OSVersion:   info.Version,
		BoardName:   info.BoardName,
		Model:       info.Model,
		Uptime:      info.Uptime,
		CPULoad:     info.CPULoad,
		MemoryUsage: info.MemoryUsagePercent(),
	})
}

func (s *Service) publishEvents(ctx context.Context, router *network.Router) {
	events := router.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("event publish failed", zap.Error(err))
	}
	router.ClearDomainEvents()
}
