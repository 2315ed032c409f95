package isolation

import (
	"context"
	"fmt"
	"time"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/billing"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/isolation"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/network"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SystemActor is recorded as the performer of scheduled, unattended actions
const SystemActor = "system"

// lockTTL bounds how long a per-customer lock may be held before it expires
// on its own (crashed worker).
const lockTTL = 2 * time.Minute

// Config carries the operational isolation settings
type Config struct {
	// Method is the default isolation method for sweeps.
	Method isolation.Method
	// AddressList is the firewall list the address_list method populates.
	AddressList string
	// RestrictedProfile is the PPP profile the profile method switches to.
	RestrictedProfile string
	// Policy holds the decision thresholds.
	Policy isolation.Policy
}

// Service orchestrates isolation and reopening: it evaluates the billing
// projection, drives the device facade and keeps customer state, audit trail
// and events consistent.
type Service struct {
	customers billing.CustomerRepository
	invoices  billing.InvoiceRepository
	logs      billing.BillingLogRepository
	routers   network.RouterRepository
	connector DeviceConnector
	locker    Locker
	notifier  Notifier
	publisher shared.EventPublisher
	cfg       Config
	logger    *zap.Logger
}

// NewService creates the isolation service
func NewService(
	customers billing.CustomerRepository,
	invoices billing.InvoiceRepository,
	logs billing.BillingLogRepository,
	routers network.RouterRepository,
	connector DeviceConnector,
	locker Locker,
	notifier Notifier,
	publisher shared.EventPublisher,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		customers: customers,
		invoices:  invoices,
		logs:      logs,
		routers:   routers,
		connector: connector,
		locker:    locker,
		notifier:  notifier,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Evaluate runs the decision engine for one customer without touching any
// device. Operators use it to preview what a sweep would do.
func (s *Service) Evaluate(ctx context.Context, customerID uuid.UUID) (isolation.Verdict, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return isolation.Verdict{}, err
	}

	snapshot, err := s.snapshotFor(ctx, customer)
	if err != nil {
		return isolation.Verdict{}, err
	}

	return isolation.Evaluate(snapshot, s.cfg.Policy, time.Now()), nil
}

// Isolate restricts one customer's service using the given method and
// force-disconnects their session. The customer transition, the device
// changes and the audit entry succeed or fail together from the caller's
// point of view: a device failure leaves the customer active and is audited
// as a failure.
func (s *Service) Isolate(ctx context.Context, customerID uuid.UUID, method isolation.Method, reason, performedBy string) error {
	release, acquired, err := s.locker.TryAcquire(ctx, lockKey(customerID), lockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		return shared.NewDomainError("LOCKED", "Customer is being processed by another worker")
	}
	defer release()

	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return err
	}

	return s.isolateLocked(ctx, customer, method, reason, performedBy)
}

// isolateLocked performs the isolation flow; the caller holds the lock
func (s *Service) isolateLocked(ctx context.Context, customer *billing.Customer, method isolation.Method, reason, performedBy string) error {
	if customer.IsIsolated() {
		return shared.NewDomainError("ALREADY_ISOLATED", "Customer is already isolated")
	}
	if !customer.HasRouter() {
		return shared.ErrNoRouterAssigned
	}

	router, err := s.routers.FindByID(ctx, *customer.RouterID)
	if err != nil {
		return err
	}

	dev, err := s.connector.Connect(ctx, router)
	if err != nil {
		s.audit(ctx, billing.LogActionIsolate, false, customer, router,
			string(method), fmt.Sprintf("connect failed: %v", err), performedBy)
		return err
	}
	defer dev.Close()

	return s.isolateOnDevice(ctx, dev, router, customer, method, reason, performedBy)
}

// isolateOnDevice applies one isolation on an already-open device session.
// Sweeps call it repeatedly over a single connection per router.
func (s *Service) isolateOnDevice(ctx context.Context, dev Device, router *network.Router, customer *billing.Customer, method isolation.Method, reason, performedBy string) error {
	if err := s.applyMethod(ctx, dev, customer, method); err != nil {
		s.audit(ctx, billing.LogActionIsolate, false, customer, router,
			string(method), fmt.Sprintf("device command failed: %v", err), performedBy)
		return err
	}

	// A live session keeps old credentials and addressing until it drops.
	if err := dev.DisconnectSession(ctx, customer.PPPoEUsername); err != nil {
		s.logger.Warn("force disconnect failed",
			zap.String("customer", customer.Code),
			zap.Error(err))
	}

	if err := customer.Isolate(string(method), reason); err != nil {
		return err
	}
	if err := s.customers.Save(ctx, customer); err != nil {
		return err
	}

	s.publishEvents(ctx, customer)
	s.audit(ctx, billing.LogActionIsolate, true, customer, router, string(method), reason, performedBy)
	if s.notifier != nil {
		s.notifier.NotifyIsolated(ctx, customer, reason)
	}

	s.logger.Info("customer isolated",
		zap.String("customer", customer.Code),
		zap.String("method", string(method)),
		zap.String("reason", reason))

	return nil
}

// Reopen restores one customer's service by reversing the method that was
// applied at isolation time, then force-disconnects so the session comes back
// with normal parameters.
func (s *Service) Reopen(ctx context.Context, customerID uuid.UUID, performedBy string) error {
	release, acquired, err := s.locker.TryAcquire(ctx, lockKey(customerID), lockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		return shared.NewDomainError("LOCKED", "Customer is being processed by another worker")
	}
	defer release()

	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return err
	}

	return s.reopenLocked(ctx, customer, performedBy)
}

func (s *Service) reopenLocked(ctx context.Context, customer *billing.Customer, performedBy string) error {
	if !customer.IsIsolated() {
		return shared.NewDomainError("NOT_ISOLATED", "Customer is not isolated")
	}
	if !customer.HasRouter() {
		return shared.ErrNoRouterAssigned
	}

	method, err := isolation.ParseMethod(customer.IsolationMethod)
	if err != nil {
		return err
	}

	router, err := s.routers.FindByID(ctx, *customer.RouterID)
	if err != nil {
		return err
	}

	dev, err := s.connector.Connect(ctx, router)
	if err != nil {
		s.audit(ctx, billing.LogActionReopen, false, customer, router,
			string(method), fmt.Sprintf("connect failed: %v", err), performedBy)
		return err
	}
	defer dev.Close()

	return s.reopenOnDevice(ctx, dev, router, customer, method, performedBy)
}

// reopenOnDevice reverses one isolation on an already-open device session
func (s *Service) reopenOnDevice(ctx context.Context, dev Device, router *network.Router, customer *billing.Customer, method isolation.Method, performedBy string) error {
	if err := s.releaseMethod(ctx, dev, customer, method); err != nil {
		s.audit(ctx, billing.LogActionReopen, false, customer, router,
			string(method), fmt.Sprintf("device command failed: %v", err), performedBy)
		return err
	}

	if err := dev.DisconnectSession(ctx, customer.PPPoEUsername); err != nil {
		s.logger.Warn("force disconnect failed",
			zap.String("customer", customer.Code),
			zap.Error(err))
	}

	if err := customer.Reopen(); err != nil {
		return err
	}
	if err := s.customers.Save(ctx, customer); err != nil {
		return err
	}

	s.publishEvents(ctx, customer)
	s.audit(ctx, billing.LogActionReopen, true, customer, router, string(method), "service restored", performedBy)
	if s.notifier != nil {
		s.notifier.NotifyReopened(ctx, customer)
	}

	s.logger.Info("customer reopened",
		zap.String("customer", customer.Code),
		zap.String("method", string(method)))

	return nil
}

// applyMethod executes exactly one isolation mechanism on the device
func (s *Service) applyMethod(ctx context.Context, dev Device, customer *billing.Customer, method isolation.Method) error {
	switch method {
	case isolation.MethodAddressList:
		if customer.StaticIP == "" {
			return shared.NewDomainError("NO_STATIC_IP", "Customer has no static IP for the address-list method")
		}
		comment := fmt.Sprintf("%s %s", customer.Code, customer.Name)
		return dev.AddressListAdd(ctx, s.cfg.AddressList, customer.StaticIP, comment)
	case isolation.MethodProfile:
		return dev.ChangeProfile(ctx, customer.PPPoEUsername, s.cfg.RestrictedProfile)
	case isolation.MethodDisable:
		return dev.DisableSecret(ctx, customer.PPPoEUsername)
	default:
		return shared.NewDomainError("INVALID_METHOD", "Unknown isolation method")
	}
}

// releaseMethod reverses what applyMethod did for the same method
func (s *Service) releaseMethod(ctx context.Context, dev Device, customer *billing.Customer, method isolation.Method) error {
	switch method {
	case isolation.MethodAddressList:
		if customer.StaticIP == "" {
			return shared.NewDomainError("NO_STATIC_IP", "Customer has no static IP for the address-list method")
		}
		return dev.AddressListRemove(ctx, s.cfg.AddressList, customer.StaticIP)
	case isolation.MethodProfile:
		return dev.ChangeProfile(ctx, customer.PPPoEUsername, customer.Profile)
	case isolation.MethodDisable:
		return dev.EnableSecret(ctx, customer.PPPoEUsername)
	default:
		return shared.NewDomainError("INVALID_METHOD", "Unknown isolation method")
	}
}

// StatusProbe reports what the device actually enforces for one customer,
// independent of what billing believes.
type StatusProbe struct {
	SecretFound     bool   `json:"secret_found"`
	SecretDisabled  bool   `json:"secret_disabled"`
	ActiveProfile   string `json:"active_profile"`
	OnAddressList   bool   `json:"on_address_list"`
	BillingIsolated bool   `json:"billing_isolated"`
	// Consistent is false when device state and billing state disagree.
	Consistent bool `json:"consistent"`
}

// ProbeStatus inspects the device and compares it with the billing state
func (s *Service) ProbeStatus(ctx context.Context, customerID uuid.UUID) (*StatusProbe, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !customer.HasRouter() {
		return nil, shared.ErrNoRouterAssigned
	}

	router, err := s.routers.FindByID(ctx, *customer.RouterID)
	if err != nil {
		return nil, err
	}

	dev, err := s.connector.Connect(ctx, router)
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	probe := &StatusProbe{BillingIsolated: customer.IsIsolated()}

	secret, err := dev.FindSecret(ctx, customer.PPPoEUsername)
	if err == nil {
		probe.SecretFound = true
		probe.SecretDisabled = secret.Get("disabled") == "true" || secret.Get("disabled") == "yes"
		probe.ActiveProfile = secret.Get("profile")
	}

	if customer.StaticIP != "" {
		listed, err := dev.AddressListContains(ctx, s.cfg.AddressList, customer.StaticIP)
		if err != nil {
			return nil, err
		}
		probe.OnAddressList = listed
	}

	deviceRestricted := probe.SecretDisabled ||
		probe.OnAddressList ||
		(probe.ActiveProfile != "" && probe.ActiveProfile == s.cfg.RestrictedProfile)
	probe.Consistent = deviceRestricted == probe.BillingIsolated

	return probe, nil
}

// audit writes an audit entry; audit failures are logged, never propagated
func (s *Service) audit(ctx context.Context, action billing.BillingLogAction, success bool, customer *billing.Customer, router *network.Router, method, detail, performedBy string) {
	entry := billing.NewBillingLog(action, success, detail, performedBy).WithMethod(method)
	if customer != nil {
		entry.ForCustomer(customer.ID)
	}
	if router != nil {
		entry.ForRouter(router.ID)
	}
	if err := s.logs.Save(ctx, entry); err != nil {
		s.logger.Error("audit write failed", zap.Error(err))
	}
}

// publishEvents drains the aggregate's pending events onto the bus
func (s *Service) publishEvents(ctx context.Context, customer *billing.Customer) {
	events := customer.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("event publish failed", zap.Error(err))
	}
	customer.ClearDomainEvents()
}

func (s *Service) snapshotFor(ctx context.Context, customer *billing.Customer) (isolation.Snapshot, error) {
	unpaid, err := s.invoices.FindUnpaidByCustomer(ctx, customer.ID)
	if err != nil {
		return isolation.Snapshot{}, err
	}
	return billing.BuildSnapshot(customer, unpaid), nil
}

func lockKey(customerID uuid.UUID) string {
	return "isolation:customer:" + customerID.String()
}
