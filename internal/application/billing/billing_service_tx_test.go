package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/billing"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/isolation"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/persistence"
)

// rejectingCustomerRepo lets a test break the last write of a billing flow
type rejectingCustomerRepo struct {
	billing.CustomerRepository
	reject bool
}

func (r *rejectingCustomerRepo) Save(ctx context.Context, c *billing.Customer) error {
	if r.reject {
		return errors.New("customer write rejected")
	}
	return r.CustomerRepository.Save(ctx, c)
}

type txFixture struct {
	service   *Service
	customers *rejectingCustomerRepo
	invoices  *persistence.GormInvoiceRepository
	payments  *persistence.GormPaymentRepository
}

func newTxFixture(t *testing.T) *txFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_fk=1"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		_ = sqlDB.Close()
	})

	customers := &rejectingCustomerRepo{
		CustomerRepository: persistence.NewGormCustomerRepository(db),
	}
	invoices := persistence.NewGormInvoiceRepository(db)
	payments := persistence.NewGormPaymentRepository(db)
	logs := persistence.NewGormBillingLogRepository(db)

	service := NewService(
		customers, invoices, payments, logs,
		&memPublisher{}, nil,
		persistence.NewTxManager(db),
		Config{DueDay: 10, Policy: isolation.DefaultPolicy()},
		nil,
	)
	return &txFixture{service: service, customers: customers, invoices: invoices, payments: payments}
}

func TestProcessPaymentAtomicity(t *testing.T) {
	ctx := context.Background()
	f := newTxFixture(t)

	customer, err := billing.NewCustomer("cust-300", "Customer 300", "cust300@pppoe")
	require.NoError(t, err)
	require.NoError(t, customer.SetMonthlyFee(decimal.NewFromInt(150000)))
	require.NoError(t, customer.AddDebt(decimal.NewFromInt(150000)))
	require.NoError(t, f.customers.Save(ctx, customer))

	invoice, err := billing.NewInvoice(customer.ID, 2025, time.January,
		decimal.NewFromInt(150000), time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, f.invoices.Save(ctx, invoice))

	f.customers.reject = true
	_, err = f.service.ProcessPayment(ctx, customer.ID,
		decimal.NewFromInt(150000), billing.PaymentMethodCash, "", "teller")
	require.Error(t, err)

	// The failed customer write must take the payment row and the invoice
	// settlement down with it.
	count, err := f.payments.Count(ctx, shared.Filter{})
	require.NoError(t, err)
	assert.Zero(t, count)

	stored, err := f.invoices.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPending, stored.Status)
	assert.True(t, stored.Outstanding().Equal(decimal.NewFromInt(150000)))

	f.customers.reject = false
	reloaded, err := f.customers.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.TotalDebt.Equal(decimal.NewFromInt(150000)))

	// With the writes restored the same payment settles cleanly.
	result, err := f.service.ProcessPayment(ctx, customer.ID,
		decimal.NewFromInt(150000), billing.PaymentMethodCash, "", "teller")
	require.NoError(t, err)
	assert.Equal(t, 1, result.InvoicesSettled)
	assert.True(t, result.RemainingDebt.IsZero())
}

func TestMonthlyRunAtomicity(t *testing.T) {
	ctx := context.Background()
	f := newTxFixture(t)

	customer, err := billing.NewCustomer("cust-301", "Customer 301", "cust301@pppoe")
	require.NoError(t, err)
	require.NoError(t, customer.SetMonthlyFee(decimal.NewFromInt(150000)))
	require.NoError(t, f.customers.Save(ctx, customer))

	f.customers.reject = true
	result, err := f.service.MonthlyRun(ctx, 2025, time.June)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Invoiced)

	// No invoice may exist without its matching debt increment.
	exists, err := f.invoices.ExistsForPeriod(ctx, customer.ID, 2025, time.June)
	require.NoError(t, err)
	assert.False(t, exists)

	f.customers.reject = false
	result, err = f.service.MonthlyRun(ctx, 2025, time.June)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Invoiced)

	reloaded, err := f.customers.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.TotalDebt.Equal(decimal.NewFromInt(150000)))
}
