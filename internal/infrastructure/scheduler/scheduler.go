// Package scheduler runs the recurring billing jobs: the daily isolation
// sweep, the monthly invoice run and the router fleet health refresh.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	appbilling "github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/application/billing"
	appisolation "github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/application/isolation"
	appnetwork "github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/application/network"
)

// Sweeper evaluates all customers and applies or lifts isolation
type Sweeper interface {
	Sweep(ctx context.Context) (*appisolation.SweepResult, error)
}

// Biller generates the monthly invoices and ages unpaid ones
type Biller interface {
	MonthlyRun(ctx context.Context, year int, month time.Month) (*appbilling.RunResult, error)
	MarkOverdue(ctx context.Context, now time.Time) (int, error)
}

// FleetRefresher probes every router and records health
type FleetRefresher interface {
	RefreshAll(ctx context.Context) (*appnetwork.RefreshResult, error)
}

// Config holds the cron schedules and the per-job timeout
type Config struct {
	SweepSchedule   string
	DebtRunSchedule string
	HealthSchedule  string
	JobTimeout      time.Duration
}

// Scheduler wires the application jobs onto cron schedules
type Scheduler struct {
	cfg     Config
	sweeper Sweeper
	biller  Biller
	fleet   FleetRefresher
	logger  *zap.Logger

	cron *cron.Cron
	mu   sync.Mutex
	// Guards against overlapping sweeps when one run outlasts the schedule
	sweepActive bool
}

// New creates a scheduler. Any nil dependency disables its job.
func New(cfg Config, sweeper Sweeper, biller Biller, fleet FleetRefresher, logger *zap.Logger) *Scheduler {
	if cfg.JobTimeout == 0 {
		cfg.JobTimeout = 30 * time.Minute
	}
	return &Scheduler{
		cfg:     cfg,
		sweeper: sweeper,
		biller:  biller,
		fleet:   fleet,
		logger:  logger.Named("scheduler"),
	}
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start() error {
	s.cron = cron.New()

	if s.sweeper != nil {
		if _, err := s.cron.AddFunc(s.cfg.SweepSchedule, s.runSweep); err != nil {
			return err
		}
	}
	if s.biller != nil {
		if _, err := s.cron.AddFunc(s.cfg.DebtRunSchedule, s.runDebtRun); err != nil {
			return err
		}
	}
	if s.fleet != nil {
		if _, err := s.cron.AddFunc(s.cfg.HealthSchedule, s.runHealthRefresh); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.String("sweep", s.cfg.SweepSchedule),
		zap.String("debt_run", s.cfg.DebtRunSchedule),
		zap.String("health", s.cfg.HealthSchedule),
	)
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runSweep ages unpaid invoices, then evaluates and applies isolation
func (s *Scheduler) runSweep() {
	s.mu.Lock()
	if s.sweepActive {
		s.mu.Unlock()
		s.logger.Warn("previous sweep still running, skipping this trigger")
		return
	}
	s.sweepActive = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.sweepActive = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	if s.biller != nil {
		aged, err := s.biller.MarkOverdue(ctx, time.Now())
		if err != nil {
			s.logger.Error("marking overdue invoices failed", zap.Error(err))
		} else if aged > 0 {
			s.logger.Info("invoices marked overdue", zap.Int("count", aged))
		}
	}

	result, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.logger.Error("isolation sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("isolation sweep finished",
		zap.Int("evaluated", result.Evaluated),
		zap.Int("isolated", result.Isolated),
		zap.Int("reopened", result.Reopened),
		zap.Int("failed", result.Failed),
	)
}

// runDebtRun generates invoices for the month the trigger fires in
func (s *Scheduler) runDebtRun() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	now := time.Now()
	result, err := s.biller.MonthlyRun(ctx, now.Year(), now.Month())
	if err != nil {
		s.logger.Error("monthly invoice run failed", zap.Error(err))
		return
	}
	s.logger.Info("monthly invoice run finished",
		zap.String("period", result.Period),
		zap.Int("invoiced", result.Invoiced),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
}

// runHealthRefresh probes the router fleet
func (s *Scheduler) runHealthRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	result, err := s.fleet.RefreshAll(ctx)
	if err != nil {
		s.logger.Error("router health refresh failed", zap.Error(err))
		return
	}
	s.logger.Debug("router health refresh finished",
		zap.Int("checked", result.Checked),
		zap.Int("online", result.Online),
		zap.Int("offline", result.Offline),
	)
}
