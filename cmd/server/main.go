// Command server runs the subscriber isolation API and its background jobs.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appbilling "github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/application/billing"
	appisolation "github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/application/isolation"
	appnetwork "github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/application/network"
	domisolation "github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/isolation"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/network"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/auth"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/config"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/event"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/lock"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/logger"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/mikrotik"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/notification"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/persistence"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/scheduler"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/telemetry"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/interfaces/http/handler"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/interfaces/http/router"
)

// version is stamped at build time via -ldflags
var version = "dev"

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

// infoConnector adapts the same dialer to the health-check port
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

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = log.Sync() }()

	log.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version))

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := persistence.NewDatabase(&cfg.Database, logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level)))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}
	log.Info("database ready", zap.String("host", cfg.Database.Host))

	customers := persistence.NewGormCustomerRepository(db.DB)
	invoices := persistence.NewGormInvoiceRepository(db.DB)
	payments := persistence.NewGormPaymentRepository(db.DB)
	logs := persistence.NewGormBillingLogRepository(db.DB)
	routers := persistence.NewGormRouterRepository(db.DB)

	// Redis backs the distributed lock; without it a local lock still
	// serializes work within this single process.
	var locker appisolation.Locker
	var redisPing handler.RedisPing
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Warn("redis unreachable, falling back to in-process locking", zap.Error(err))
		_ = redisClient.Close()
		locker = lock.NewMemoryLocker()
	} else {
		cancel()
		defer func() { _ = redisClient.Close() }()
		locker = lock.NewRedisLocker(redisClient, log)
		redisPing = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewAuditHandler(log))
	if err := bus.Start(ctx); err != nil {
		log.Fatal("failed to start event bus", zap.Error(err))
	}
	defer func() { _ = bus.Stop(context.Background()) }()

	connector := mikrotik.NewConnector(cfg.Mikrotik.CommandTimeout, log)

	policy := domisolation.Policy{
		OverdueMonthsThreshold:   cfg.Isolation.OverdueMonthsThreshold,
		GracePeriodDays:          cfg.Isolation.GracePeriodDays,
		RecentPaymentAmnestyDays: cfg.Isolation.RecentPaymentAmnestyDays,
		LumpSumToleranceMonths:   cfg.Isolation.LumpSumToleranceMonths,
	}
	method, err := domisolation.ParseMethod(cfg.Isolation.Method)
	if err != nil {
		log.Fatal("invalid isolation method", zap.Error(err))
	}

	isolationSvc := appisolation.NewService(
		customers, invoices, logs, routers,
		deviceConnector{connector},
		locker,
		notification.NewLogNotifier(log),
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

	jwtService := auth.NewJWTService(cfg.JWT)

	engine := router.Setup(cfg, log, jwtService, router.Handlers{
		System:    handler.NewSystemHandler(db, redisPing, customers, version, log),
		Customer:  handler.NewCustomerHandler(customers, log),
		Isolation: handler.NewIsolationHandler(isolationSvc, method, log),
		Billing:   handler.NewBillingHandler(billingSvc, invoices, payments, logs, log),
		Router:    handler.NewRouterHandler(networkSvc, routers, log),
	})

	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs = scheduler.New(scheduler.Config{
			SweepSchedule:   cfg.Scheduler.SweepCronSchedule,
			DebtRunSchedule: cfg.Scheduler.DebtRunCronSchedule,
			HealthSchedule:  cfg.Scheduler.HealthCronSchedule,
			JobTimeout:      cfg.Scheduler.JobTimeout,
		}, isolationSvc, billingSvc, networkSvc, log)
		if err := jobs.Start(); err != nil {
			log.Fatal("failed to start scheduler", zap.Error(err))
		}
	} else {
		log.Info("scheduler disabled")
	}

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if jobs != nil {
		if err := jobs.Stop(shutdownCtx); err != nil {
			log.Warn("scheduler shutdown incomplete", zap.Error(err))
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}

	log.Info("stopped")
}
