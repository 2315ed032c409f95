package isolation

import (
	"context"
	"fmt"
	"time"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/billing"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/isolation"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/network"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SweepResult summarizes one full sweep over the subscriber base
type SweepResult struct {
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Evaluated  int           `json:"evaluated"`
	Isolated   int           `json:"isolated"`
	Reopened   int           `json:"reopened"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	RoutersHit int           `json:"routers_hit"`
}

// Sweep evaluates every debtor and every isolated customer, applying and
// reversing isolation as the engine dictates. Customers are grouped by router
// so each device is dialed once; one unreachable router fails only its own
// group and the sweep carries on.
func (s *Service) Sweep(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{StartedAt: time.Now()}
	now := time.Now()

	candidates, err := s.customers.FindWithDebt(ctx)
	if err != nil {
		return nil, err
	}
	isolated, err := s.customers.FindIsolated(ctx)
	if err != nil {
		return nil, err
	}

	type job struct {
		customer billing.Customer
		reopen   bool
	}
	byRouter := make(map[uuid.UUID][]job)

	for _, c := range candidates {
		if c.IsIsolated() {
			continue // handled by the reopen half
		}
		result.Evaluated++
		if !c.HasRouter() {
			result.Skipped++
			s.logger.Warn("sweep skipping customer without router", zap.String("customer", c.Code))
			continue
		}
		byRouter[*c.RouterID] = append(byRouter[*c.RouterID], job{customer: c})
	}

	for _, c := range isolated {
		result.Evaluated++
		if !c.HasRouter() {
			result.Skipped++
			continue
		}
		byRouter[*c.RouterID] = append(byRouter[*c.RouterID], job{customer: c, reopen: true})
	}

	for routerID, jobs := range byRouter {
		router, err := s.routers.FindByID(ctx, routerID)
		if err != nil {
			result.Failed += len(jobs)
			s.logger.Error("sweep router lookup failed", zap.String("router_id", routerID.String()), zap.Error(err))
			continue
		}
		if router.InMaintenance() {
			result.Skipped += len(jobs)
			s.logger.Info("sweep skipping router in maintenance", zap.String("router", router.Name))
			continue
		}

		dev, err := s.connector.Connect(ctx, router)
		if err != nil {
			result.Failed += len(jobs)
			s.audit(ctx, billing.LogActionSweep, false, nil, router, "",
				fmt.Sprintf("connect failed: %v", err), SystemActor)
			s.logger.Error("sweep cannot reach router",
				zap.String("router", router.Name),
				zap.Error(err))
			continue
		}
		result.RoutersHit++

		for _, j := range jobs {
			customer := j.customer
			if err := s.sweepOne(ctx, dev, router, &customer, j.reopen, now, result); err != nil {
				result.Failed++
				s.logger.Error("sweep customer failed",
					zap.String("customer", customer.Code),
					zap.Error(err))
			}
		}
		dev.Close()
	}

	result.Duration = time.Since(result.StartedAt)

	s.audit(ctx, billing.LogActionSweep, result.Failed == 0, nil, nil, "",
		fmt.Sprintf("evaluated=%d isolated=%d reopened=%d skipped=%d failed=%d",
			result.Evaluated, result.Isolated, result.Reopened, result.Skipped, result.Failed),
		SystemActor)

	s.logger.Info("sweep finished",
		zap.Int("evaluated", result.Evaluated),
		zap.Int("isolated", result.Isolated),
		zap.Int("reopened", result.Reopened),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", result.Duration))

	return result, nil
}

func (s *Service) sweepOne(ctx context.Context, dev Device, router *network.Router, customer *billing.Customer, reopen bool, now time.Time, result *SweepResult) error {
	release, acquired, err := s.locker.TryAcquire(ctx, lockKey(customer.ID), lockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		result.Skipped++
		return nil
	}
	defer release()

	snapshot, err := s.snapshotFor(ctx, customer)
	if err != nil {
		return err
	}

	if reopen {
		if !isolation.ReopenEligible(snapshot, now) {
			result.Skipped++
			return nil
		}
		method, err := isolation.ParseMethod(customer.IsolationMethod)
		if err != nil {
			return err
		}
		if err := s.reopenOnDevice(ctx, dev, router, customer, method, SystemActor); err != nil {
			return err
		}
		result.Reopened++
		return nil
	}

	verdict := isolation.Evaluate(snapshot, s.cfg.Policy, now)
	if !verdict.Isolate {
		result.Skipped++
		return nil
	}
	if err := s.isolateOnDevice(ctx, dev, router, customer, s.cfg.Method, verdict.Message, SystemActor); err != nil {
		return err
	}
	result.Isolated++
	return nil
}
