// Command isolirctl is the operations CLI: schema migration, token minting
// and one-shot runs of the scheduled jobs.
//
// Usage:
//
//	isolirctl migrate
//	isolirctl token -user admin -role admin [-ttl 24h]
//	isolirctl isolate -customer CUST001 [-reason "manual isolation"]
//	isolirctl reopen -customer CUST001
//	isolirctl sweep
//	isolirctl debt-run [-year 2026 -month 8]
//	isolirctl mark-overdue
//	isolirctl router-check
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appbilling "github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/application/billing"
	appisolation "github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/application/isolation"
	appnetwork "github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/application/network"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/billing"
	domisolation "github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/isolation"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/network"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/auth"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/config"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/event"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/lock"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/logger"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/mikrotik"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/persistence"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	defer func() { _ = log.Sync() }()

	var runErr error
	switch os.Args[1] {
	case "migrate":
		runErr = runMigrate(cfg, log)
	case "token":
		runErr = runToken(cfg, os.Args[2:])
	case "isolate":
		runErr = runIsolate(cfg, log, os.Args[2:])
	case "reopen":
		runErr = runReopen(cfg, log, os.Args[2:])
	case "sweep":
		runErr = runSweep(cfg, log)
	case "debt-run":
		runErr = runDebtRun(cfg, log, os.Args[2:])
	case "mark-overdue":
		runErr = runMarkOverdue(cfg, log)
	case "router-check":
		runErr = runRouterCheck(cfg, log)
	default:
		usage()
		os.Exit(2)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], runErr)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: isolirctl <migrate|token|isolate|reopen|sweep|debt-run|mark-overdue|router-check> [flags]")
}

func openDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	return persistence.NewDatabase(&cfg.Database, logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level)))
}

func runMigrate(cfg *config.Config, log *zap.Logger) error {
	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(); err != nil {
		return err
	}
	fmt.Println("migration complete")
	return nil
}

func runToken(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	user := fs.String("user", "", "username embedded in the token")
	role := fs.String("role", auth.RoleOperator, "role: admin or operator")
	ttl := fs.Duration("ttl", 0, "token lifetime, default from config")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		return fmt.Errorf("-user is required")
	}
	if *role != auth.RoleAdmin && *role != auth.RoleOperator {
		return fmt.Errorf("unknown role %q", *role)
	}

	jwtCfg := cfg.JWT
	if *ttl > 0 {
		jwtCfg.AccessTokenExpiration = *ttl
	}

	token, expiresAt, err := auth.NewJWTService(jwtCfg).GenerateToken(uuid.New(), *user, *role)
	if err != nil {
		return err
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format(time.RFC3339))
	return nil
}

// services wires the application layer against a live database connection
type services struct {
	db        *persistence.Database
	customers billing.CustomerRepository
	method    domisolation.Method
	isolation *appisolation.Service
	billing   *appbilling.Service
	network   *appnetwork.Service
}

func buildServices(cfg *config.Config, log *zap.Logger) (*services, error) {
	db, err := openDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	customers := persistence.NewGormCustomerRepository(db.DB)
	invoices := persistence.NewGormInvoiceRepository(db.DB)
	payments := persistence.NewGormPaymentRepository(db.DB)
	logs := persistence.NewGormBillingLogRepository(db.DB)
	routers := persistence.NewGormRouterRepository(db.DB)

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewAuditHandler(log))

	connector := mikrotik.NewConnector(cfg.Mikrotik.CommandTimeout, log)

	policy := domisolation.Policy{
		OverdueMonthsThreshold:   cfg.Isolation.OverdueMonthsThreshold,
		GracePeriodDays:          cfg.Isolation.GracePeriodDays,
		RecentPaymentAmnestyDays: cfg.Isolation.RecentPaymentAmnestyDays,
		LumpSumToleranceMonths:   cfg.Isolation.LumpSumToleranceMonths,
	}
	method, err := domisolation.ParseMethod(cfg.Isolation.Method)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	isolationSvc := appisolation.NewService(
		customers, invoices, logs, routers,
		deviceConnector{connector},
		lock.NewMemoryLocker(),
		nil,
		bus,
		appisolation.Config{
			Method:            method,
			AddressList:       cfg.Isolation.AddressList,
			RestrictedProfile: cfg.Isolation.RestrictedProfile,
			Policy:            policy,
		},
		log,
	)

	billingSvc := appbilling.NewService(
		customers, invoices, payments, logs, bus, isolationSvc,
		persistence.NewTxManager(db.DB),
		appbilling.Config{DueDay: cfg.Billing.DueDay, Policy: policy},
		log,
	)

	networkSvc := appnetwork.NewService(routers, infoConnector{connector}, bus, log)

	return &services{
		db:        db,
		customers: customers,
		method:    method,
		isolation: isolationSvc,
		billing:   billingSvc,
		network:   networkSvc,
	}, nil
}

// resolveCustomer accepts either a customer id or a customer code
func (s *services) resolveCustomer(ctx context.Context, key string) (*billing.Customer, error) {
	if id, err := uuid.Parse(key); err == nil {
		return s.customers.FindByID(ctx, id)
	}
	return s.customers.FindByCode(ctx, key)
}

func (s *services) close() {
	_ = s.db.Close()
}

func runIsolate(cfg *config.Config, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("isolate", flag.ExitOnError)
	key := fs.String("customer", "", "customer id or code")
	reason := fs.String("reason", "manual isolation", "reason recorded in the audit log")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *key == "" {
		return fmt.Errorf("-customer is required")
	}

	svcs, err := buildServices(cfg, log)
	if err != nil {
		return err
	}
	defer svcs.close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.JobTimeout)
	defer cancel()

	customer, err := svcs.resolveCustomer(ctx, *key)
	if err != nil {
		return err
	}
	if err := svcs.isolation.Isolate(ctx, customer.ID, svcs.method, *reason, "cli"); err != nil {
		return err
	}
	fmt.Printf("isolated %s (%s)\n", customer.Code, customer.Name)
	return nil
}

func runReopen(cfg *config.Config, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("reopen", flag.ExitOnError)
	key := fs.String("customer", "", "customer id or code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *key == "" {
		return fmt.Errorf("-customer is required")
	}

	svcs, err := buildServices(cfg, log)
	if err != nil {
		return err
	}
	defer svcs.close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.JobTimeout)
	defer cancel()

	customer, err := svcs.resolveCustomer(ctx, *key)
	if err != nil {
		return err
	}
	if err := svcs.isolation.Reopen(ctx, customer.ID, "cli"); err != nil {
		return err
	}
	fmt.Printf("reopened %s (%s)\n", customer.Code, customer.Name)
	return nil
}

func runSweep(cfg *config.Config, log *zap.Logger) error {
	svcs, err := buildServices(cfg, log)
	if err != nil {
		return err
	}
	defer svcs.close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.JobTimeout)
	defer cancel()

	if _, err := svcs.billing.MarkOverdue(ctx, time.Now()); err != nil {
		return err
	}
	result, err := svcs.isolation.Sweep(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("evaluated=%d isolated=%d reopened=%d skipped=%d failed=%d duration=%s\n",
		result.Evaluated, result.Isolated, result.Reopened, result.Skipped, result.Failed, result.Duration)
	return nil
}

func runDebtRun(cfg *config.Config, log *zap.Logger, args []string) error {
	now := time.Now()
	fs := flag.NewFlagSet("debt-run", flag.ExitOnError)
	year := fs.Int("year", now.Year(), "billing period year")
	month := fs.Int("month", int(now.Month()), "billing period month")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *month < 1 || *month > 12 {
		return fmt.Errorf("month must be 1..12")
	}

	svcs, err := buildServices(cfg, log)
	if err != nil {
		return err
	}
	defer svcs.close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.JobTimeout)
	defer cancel()

	result, err := svcs.billing.MonthlyRun(ctx, *year, time.Month(*month))
	if err != nil {
		return err
	}
	fmt.Printf("period=%s invoiced=%d skipped=%d failed=%d\n",
		result.Period, result.Invoiced, result.Skipped, result.Failed)
	return nil
}

func runMarkOverdue(cfg *config.Config, log *zap.Logger) error {
	svcs, err := buildServices(cfg, log)
	if err != nil {
		return err
	}
	defer svcs.close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.JobTimeout)
	defer cancel()

	marked, err := svcs.billing.MarkOverdue(ctx, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("marked=%d\n", marked)
	return nil
}

func runRouterCheck(cfg *config.Config, log *zap.Logger) error {
	svcs, err := buildServices(cfg, log)
	if err != nil {
		return err
	}
	defer svcs.close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.JobTimeout)
	defer cancel()

	result, err := svcs.network.RefreshAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("checked=%d online=%d offline=%d skipped=%d\n",
		result.Checked, result.Online, result.Offline, result.Skipped)
	return nil
}

// deviceConnector adapts the concrete session dialer to the isolation port
type deviceConnector struct {
	inner *mikrotik.Connector
}

func (c deviceConnector) Connect(ctx context.Context, r *network.Router) (appisolation.Device, error) {
	session, err := c.inner.Connect(ctx, r)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// infoConnector adapts the dialer to the health-check port
type infoConnector struct {
	inner *mikrotik.Connector
}

func (c infoConnector) Connect(ctx context.Context, r *network.Router) (appnetwork.InfoReader, error) {
	session, err := c.inner.Connect(ctx, r)
	if err != nil {
		return nil, err
	}
	return session, nil
}
