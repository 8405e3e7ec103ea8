package service

import (
	"log/slog"
	"time"

	"webshop/internal/docstore"
	fareContractSub "webshop/internal/farecontract/subscription"
	"webshop/internal/identity"
	"webshop/internal/platform/clock"
	"webshop/internal/platform/tracing"
	profileSub "webshop/internal/profile/subscription"
	"webshop/internal/session/device"
	"webshop/internal/session/metrics"
	"webshop/pkg/domain"
)

// LocalStore is everything an installation remembers between visits: the
// logged-in marker and the refresh token of its sign-in.
type LocalStore interface {
	LocalState
	identity.TokenStore
}

// FactoryConfig holds the process-wide dependencies shared by every Manager.
type FactoryConfig struct {
	Client    *identity.Client
	Verifier  identity.TokenVerifier
	Local     LocalStore
	Documents docstore.Store

	CustomerCollection     string
	FareContractCollection string
	Location               *time.Location
	PhoneRegion            string

	Logger      *slog.Logger
	Audit       AuditPublisher
	Metrics     *metrics.Metrics
	Tracer      tracing.Tracer
	Clock       clock.Clock
	RefreshLead time.Duration
	RetryDelay  time.Duration
	RetryBudget int
}

// Factory builds one Manager per connection.
type Factory struct {
	cfg FactoryConfig
}

func NewFactory(cfg FactoryConfig) *Factory {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Factory{cfg: cfg}
}

// NewManager wires a Manager for installID. The caller starts it.
func (f *Factory) NewManager(installID domain.InstallID, info device.Info, notifier Notifier) *Manager {
	cfg := f.cfg
	logger := cfg.Logger.With("install_id", installID.String())

	idp := identity.NewSession(cfg.Client, cfg.Verifier, cfg.Local, installID,
		identity.WithSessionLogger(logger),
		identity.WithPhoneRegion(cfg.PhoneRegion),
	)
	profiles := profileSub.New(cfg.Documents,
		profileSub.WithCollection(cfg.CustomerCollection),
		profileSub.WithLocation(cfg.Location),
		profileSub.WithLogger(logger),
	)
	fareContracts := fareContractSub.New(cfg.Documents,
		fareContractSub.WithCollections(cfg.CustomerCollection, cfg.FareContractCollection),
		fareContractSub.WithLocation(cfg.Location),
		fareContractSub.WithLogger(logger),
	)

	return New(installID, idp, cfg.Local, profiles, fareContracts, notifier,
		WithLogger(cfg.Logger),
		WithClock(cfg.Clock),
		WithAuditPublisher(cfg.Audit),
		WithMetrics(cfg.Metrics),
		WithTracer(cfg.Tracer),
		WithDevice(info),
		WithRefreshLead(cfg.RefreshLead),
		WithRetryDelay(cfg.RetryDelay),
		WithRetryBudget(cfg.RetryBudget),
	)
}
