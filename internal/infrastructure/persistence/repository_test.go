package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/billing"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/network"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_fk=1"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		_ = sqlDB.Close()
	})
	return db
}

func seedCustomer(t *testing.T, repo *GormCustomerRepository, code, username string, debt int64) *billing.Customer {
	t.Helper()
	customer, err := billing.NewCustomer(code, "Customer "+code, username)
	require.NoError(t, err)
	customer.TotalDebt = decimal.NewFromInt(debt)
	customer.MonthlyFee = decimal.NewFromInt(150000)
	require.NoError(t, repo.Save(context.Background(), customer))
	return customer
}

func TestCustomerRepository(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewGormCustomerRepository(db)

	clean := seedCustomer(t, repo, "CUST-001", "budi01", 0)
	indebted := seedCustomer(t, repo, "CUST-002", "siti02", 450000)
	isolated := seedCustomer(t, repo, "CUST-003", "agus03", 300000)
	require.NoError(t, isolated.Isolate("profile", "3 consecutive overdue months"))
	isolated.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, isolated))
	churned := seedCustomer(t, repo, "CUST-004", "dewi04", 100000)
	require.NoError(t, churned.Deactivate())
	require.NoError(t, repo.Save(ctx, churned))

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, clean.ID)
		require.NoError(t, err)
		assert.Equal(t, "CUST-001", found.Code)
	})

	t.Run("find by code is case insensitive", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, "cust-002")
		require.NoError(t, err)
		assert.Equal(t, indebted.ID, found.ID)
	})

	t.Run("find by pppoe username", func(t *testing.T) {
		found, err := repo.FindByPPPoEUsername(ctx, "agus03")
		require.NoError(t, err)
		assert.Equal(t, isolated.ID, found.ID)
	})

	t.Run("missing customer yields ErrNotFound", func(t *testing.T) {
		_, err := repo.FindByCode(ctx, "NOPE")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("find with debt excludes isolated and churned", func(t *testing.T) {
		customers, err := repo.FindWithDebt(ctx)
		require.NoError(t, err)
		require.Len(t, customers, 1)
		assert.Equal(t, "CUST-002", customers[0].Code)
	})

	t.Run("find isolated", func(t *testing.T) {
		customers, err := repo.FindIsolated(ctx)
		require.NoError(t, err)
		require.Len(t, customers, 1)
		assert.Equal(t, "CUST-003", customers[0].Code)
	})

	t.Run("find billable excludes churned", func(t *testing.T) {
		customers, err := repo.FindBillable(ctx)
		require.NoError(t, err)
		assert.Len(t, customers, 3)
	})

	t.Run("search filter", func(t *testing.T) {
		customers, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 10, Search: "siti"})
		require.NoError(t, err)
		require.Len(t, customers, 1)
		assert.Equal(t, "CUST-002", customers[0].Code)
	})

	t.Run("count by status", func(t *testing.T) {
		count, err := repo.CountByStatus(ctx, billing.CustomerStatusActive)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, churned.ID))
		assert.ErrorIs(t, repo.Delete(ctx, churned.ID), shared.ErrNotFound)
	})
}

func TestInvoiceRepository(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	customers := NewGormCustomerRepository(db)
	repo := NewGormInvoiceRepository(db)

	customer := seedCustomer(t, customers, "CUST-010", "joko10", 450000)
	fee := decimal.NewFromInt(150000)

	// Three consecutive periods, newest created first to prove ordering
	// comes from the period columns and not insert order
	for _, period := range []struct {
		year  int
		month time.Month
	}{
		{2026, time.July},
		{2026, time.May},
		{2026, time.June},
	} {
		due := time.Date(period.year, period.month, 10, 0, 0, 0, 0, time.UTC)
		invoice, err := billing.NewInvoice(customer.ID, period.year, period.month, fee, due)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, invoice))
	}

	t.Run("unpaid invoices ordered oldest period first", func(t *testing.T) {
		invoices, err := repo.FindUnpaidByCustomer(ctx, customer.ID)
		require.NoError(t, err)
		require.Len(t, invoices, 3)
		assert.Equal(t, time.May, invoices[0].PeriodMonth)
		assert.Equal(t, time.June, invoices[1].PeriodMonth)
		assert.Equal(t, time.July, invoices[2].PeriodMonth)
	})

	t.Run("exists for period", func(t *testing.T) {
		exists, err := repo.ExistsForPeriod(ctx, customer.ID, 2026, time.June)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsForPeriod(ctx, customer.ID, 2026, time.August)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("unpaid due before cutoff", func(t *testing.T) {
		cutoff := time.Date(2026, time.June, 20, 0, 0, 0, 0, time.UTC)
		invoices, err := repo.FindUnpaidDueBefore(ctx, cutoff)
		require.NoError(t, err)
		require.Len(t, invoices, 2)
		assert.Equal(t, time.May, invoices[0].PeriodMonth)
	})

	t.Run("settled invoice drops out of unpaid set", func(t *testing.T) {
		invoices, err := repo.FindUnpaidByCustomer(ctx, customer.ID)
		require.NoError(t, err)
		first := invoices[0]
		_, err = first.ApplyPayment(fee, time.Now())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, &first))

		remaining, err := repo.FindUnpaidByCustomer(ctx, customer.ID)
		require.NoError(t, err)
		assert.Len(t, remaining, 2)
	})

	t.Run("find by number", func(t *testing.T) {
		invoices, err := repo.FindUnpaidByCustomer(ctx, customer.ID)
		require.NoError(t, err)
		found, err := repo.FindByNumber(ctx, invoices[0].Number)
		require.NoError(t, err)
		assert.Equal(t, invoices[0].ID, found.ID)
	})
}

func TestPaymentAndLogRepositories(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	customers := NewGormCustomerRepository(db)
	payments := NewGormPaymentRepository(db)
	logs := NewGormBillingLogRepository(db)

	customer := seedCustomer(t, customers, "CUST-020", "rina20", 300000)

	older, err := billing.NewPayment(customer.ID, decimal.NewFromInt(150000), billing.PaymentMethodCash, time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	newer, err := billing.NewPayment(customer.ID, decimal.NewFromInt(150000), billing.PaymentMethodTransfer, time.Now())
	require.NoError(t, err)
	require.NoError(t, payments.Save(ctx, older))
	require.NoError(t, payments.Save(ctx, newer))

	t.Run("payments newest first", func(t *testing.T) {
		found, err := payments.FindByCustomer(ctx, customer.ID, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, billing.PaymentMethodTransfer, found[0].Method)
	})

	t.Run("payments since cutoff", func(t *testing.T) {
		found, err := payments.FindSince(ctx, time.Now().Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("audit trail round trip", func(t *testing.T) {
		entry := billing.NewBillingLog(billing.LogActionIsolate, true, "method=profile", "admin").
			ForCustomer(customer.ID).
			WithMethod("profile")
		require.NoError(t, logs.Save(ctx, entry))

		found, err := logs.FindByCustomer(ctx, customer.ID, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, billing.LogActionIsolate, found[0].Action)
		assert.True(t, found[0].Success)

		recent, err := logs.FindRecent(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, recent, 1)
	})
}

func TestRouterRepository(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewGormRouterRepository(db)

	core, err := network.NewRouter("core-01", "10.0.0.1", 8728, "api", "pw")
	require.NoError(t, err)
	edge, err := network.NewRouter("edge-01", "10.0.0.2", 8728, "api", "pw")
	require.NoError(t, err)
	parked, err := network.NewRouter("parked-01", "10.0.0.3", 8728, "api", "pw")
	require.NoError(t, err)
	require.NoError(t, parked.EnterMaintenance())

	for _, router := range []*network.Router{core, edge, parked} {
		require.NoError(t, repo.Save(ctx, router))
	}

	t.Run("find by name", func(t *testing.T) {
		found, err := repo.FindByName(ctx, "edge-01")
		require.NoError(t, err)
		assert.Equal(t, edge.ID, found.ID)
	})

	t.Run("find active skips maintenance", func(t *testing.T) {
		routers, err := repo.FindActive(ctx)
		require.NoError(t, err)
		assert.Len(t, routers, 2)
	})

	t.Run("find by status", func(t *testing.T) {
		routers, err := repo.FindByStatus(ctx, network.RouterStatusMaintenance, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, routers, 1)
		assert.Equal(t, "parked-01", routers[0].Name)
	})

	t.Run("count", func(t *testing.T) {
		count, err := repo.Count(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, parked.ID))
		_, err := repo.FindByID(ctx, parked.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
