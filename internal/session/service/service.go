// Package service runs the session manager: one state machine per browser
// connection that follows the identity provider's auth state, keeps the
// credential fresh, and streams profile and fare-contract data to the UI.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"webshop/internal/platform/clock"
	"webshop/internal/platform/tracing"
	"webshop/internal/session/device"
	"webshop/internal/session/metrics"
	"webshop/internal/session/models"
	"webshop/internal/session/scheduler"
	"webshop/pkg/domain"
	dErrors "webshop/pkg/domain-errors"
)

var (
	// ErrNoPendingIdentity is returned by the onboarding calls when no user
	// is bound to the session.
	ErrNoPendingIdentity = dErrors.New(dErrors.CodeInvalidState, "no pending identity")
	ErrAlreadyStarted    = dErrors.New(dErrors.CodeInvalidState, "session manager already started")
)

// Manager owns the authentication-session lifecycle of one installation.
//
// subMu serializes subscription changes, mu guards the state below it.
// Lock order is subMu then mu. Network calls other than subscription opens
// run with no lock held.
type Manager struct {
	installID     domain.InstallID
	identity      IdentityProvider
	local         LocalState
	profiles      ProfileSubscription
	fareContracts FareContractSubscription
	notifier      Notifier
	scheduler     *scheduler.Scheduler

	logger         *slog.Logger
	clock          clock.Clock
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         tracing.Tracer
	device         device.Info
	refreshLead    time.Duration
	retryDelay     time.Duration
	retryBudget    int

	subMu     sync.Mutex
	persistMu sync.Mutex

	mu             sync.Mutex
	ctx            context.Context
	started        bool
	stopped        bool
	unsubscribe    func()
	gen            uint64
	state          models.State
	user           *models.User
	cred           *models.Credential
	loggedIn       bool
	onboardingDone bool
	// generation the fare-contract watch belongs to; 0 when closed
	fareContractsGen uint64
	// watch reopens spent in reopenGen, bounded by retryBudget
	reopenGen      uint64
	reopenAttempts int
}

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(m *Manager) {
		m.auditPublisher = publisher
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

func WithTracer(t tracing.Tracer) Option {
	return func(m *Manager) {
		if t != nil {
			m.tracer = t
		}
	}
}

// WithDevice records the connecting browser in logs and audit events.
func WithDevice(info device.Info) Option {
	return func(m *Manager) {
		m.device = info
	}
}

// WithRefreshLead sets how long before expiry the credential is refreshed.
func WithRefreshLead(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.refreshLead = d
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.retryDelay = d
		}
	}
}

// WithRetryBudget bounds consecutive immediate refreshes and fetch retries.
// Each fetch also gets this many reopens of dropped watches.
func WithRetryBudget(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retryBudget = n
		}
	}
}

func New(
	installID domain.InstallID,
	idp IdentityProvider,
	local LocalState,
	profiles ProfileSubscription,
	fareContracts FareContractSubscription,
	notifier Notifier,
	opts ...Option,
) *Manager {
	m := &Manager{
		installID:     installID,
		identity:      idp,
		local:         local,
		profiles:      profiles,
		fareContracts: fareContracts,
		notifier:      notifier,
		clock:         clock.Real(),
		tracer:        tracing.NewNoop(),
		refreshLead:   scheduler.DefaultLead,
		retryDelay:    scheduler.DefaultRetryDelay,
		retryBudget:   scheduler.DefaultRetryBudget,
		state:         models.StateUnauthenticated,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.logger = m.logger.With("install_id", installID.String())
	m.scheduler = scheduler.New(m.onRefreshDue,
		scheduler.WithClock(m.clock),
		scheduler.WithLead(m.refreshLead),
		scheduler.WithRetryDelay(m.retryDelay),
		scheduler.WithRetryPolicy(scheduler.NewRetryPolicy(m.retryBudget)),
		scheduler.WithLogger(m.logger),
	)
	return m
}

// Start loads the persisted marker, registers with the identity provider
// and restores a persisted sign-in. ctx bounds every asynchronous delivery
// of this session.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.ctx = ctx
	m.mu.Unlock()

	loggedIn, err := m.local.LoggedIn(ctx, m.installID)
	if err != nil {
		m.logger.WarnContext(ctx, "failed to read logged-in marker", "error", err)
		loggedIn = false
	}

	m.mu.Lock()
	m.loggedIn = loggedIn
	m.mu.Unlock()
	unsubscribe := m.identity.OnAuthStateChanged(m.HandleAuthStateChanged)
	m.mu.Lock()
	m.unsubscribe = unsubscribe
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.IncrementActiveConnections()
	}
	m.logger.InfoContext(ctx, "session started",
		"device", m.device.Name,
		"logged_in", loggedIn,
	)

	ctx, span := m.tracer.Start(ctx, tracing.SpanRestore)
	err = m.identity.Restore(ctx)
	span.End(err)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to restore sign-in")
	}
	return nil
}

// Stop cancels the refresh timer and both subscriptions and detaches from
// the identity provider. The persisted marker is left untouched.
func (m *Manager) Stop() {
	m.subMu.Lock()
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		m.subMu.Unlock()
		return
	}
	m.stopped = true
	m.gen++
	m.fareContractsGen = 0
	m.scheduler.Clear()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	started := m.started
	m.mu.Unlock()
	m.profiles.Cancel()
	m.fareContracts.Cancel()
	m.subMu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if started && m.metrics != nil {
		m.metrics.DecrementActiveConnections()
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() models.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LoggedIn reports the in-memory copy of the persisted marker.
func (m *Manager) LoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loggedIn
}

// RefreshPending reports whether a refresh timer is armed.
func (m *Manager) RefreshPending() bool {
	return m.scheduler.Pending()
}

// HandleAuthStateChanged is the identity provider listener. A present user
// triggers a credential fetch; no user tears the session down.
func (m *Manager) HandleAuthStateChanged(ctx context.Context, user *models.User) {
	if user == nil {
		m.handleNoUser(ctx)
		return
	}
	m.fetch(ctx, *user, false)
}

// SignOut cleans up silently and then signs the identity provider out.
func (m *Manager) SignOut(ctx context.Context) error {
	user, cred, _, ok := m.teardown(ctx, false)
	if !ok {
		return nil
	}
	m.persistMarker(ctx)
	if user != nil {
		m.emitAudit(ctx, eventSignedOut, user, cred, "")
	}
	if err := m.identity.SignOut(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeAuthProvider, "failed to sign out")
	}
	return nil
}

// OnboardingDone re-runs the fetch for the held identity after the UI
// created the profile. A missing profile snapshot right after is ignored.
func (m *Manager) OnboardingDone(ctx context.Context) error {
	return m.refetch(ctx, true)
}

// OnboardingRefreshAuth re-runs the fetch for the held identity, e.g.
// after the user verified their email address.
func (m *Manager) OnboardingRefreshAuth(ctx context.Context) error {
	return m.refetch(ctx, false)
}

func (m *Manager) refetch(ctx context.Context, onboardingDone bool) error {
	m.mu.Lock()
	var user *models.User
	if m.user != nil && !m.stopped {
		u := *m.user
		user = &u
	}
	m.mu.Unlock()
	if user == nil {
		return ErrNoPendingIdentity
	}
	m.fetch(ctx, *user, onboardingDone)
	return nil
}

func (m *Manager) onRefreshDue(user models.User) {
	m.mu.Lock()
	current := m.user
	stopped := m.stopped
	onboardingDone := m.onboardingDone
	ctx := m.baseContextLocked()
	m.mu.Unlock()
	if stopped || current == nil || current.UID != user.UID {
		return
	}
	m.fetch(ctx, user, onboardingDone)
}

func (m *Manager) handleNoUser(ctx context.Context) {
	user, cred, stale, ok := m.teardown(ctx, true)
	if !ok || !stale {
		return
	}
	m.persistMarker(ctx)
	if m.metrics != nil {
		m.metrics.IncrementStaleLogout("no_user")
	}
	m.emitAudit(ctx, eventForcedLogout, user, cred, "no_user")
}

// expire handles authorization loss on a live subscription of generation
// gen: notice, cleanup, then the provider is signed out silently.
func (m *Manager) expire(ctx context.Context, gen uint64, reason string) {
	m.subMu.Lock()
	m.mu.Lock()
	if gen != m.gen || m.stopped {
		m.mu.Unlock()
		m.subMu.Unlock()
		return
	}
	user, cred := m.resetLocked()
	m.loggedIn = false
	m.notifyLocked(ctx, loggedOutNotice())
	m.mu.Unlock()
	m.profiles.Cancel()
	m.fareContracts.Cancel()
	m.subMu.Unlock()

	m.logger.WarnContext(ctx, "session expired", "reason", reason)
	if m.metrics != nil {
		m.metrics.IncrementStaleLogout(reason)
	}
	m.persistMarker(ctx)
	m.emitAudit(ctx, eventForcedLogout, user, cred, reason)
	if err := m.identity.SignOut(ctx); err != nil {
		m.logger.WarnContext(ctx, "failed to sign out after session expiry", "error", err)
	}
}

// teardown supersedes every in-flight fetch, clears the timer, both
// subscriptions and the marker copy. With notice set, a session whose marker
// said logged in gets the single logged-out notice. stale reports that.
func (m *Manager) teardown(ctx context.Context, notice bool) (user *models.User, cred *models.Credential, stale, ok bool) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil, nil, false, false
	}
	user, cred = m.resetLocked()
	stale = m.loggedIn
	m.loggedIn = false
	if notice && stale {
		m.notifyLocked(ctx, loggedOutNotice())
	}
	m.mu.Unlock()
	m.profiles.Cancel()
	m.fareContracts.Cancel()
	return user, cred, stale, true
}

// resetLocked bumps the generation and returns the session to
// Unauthenticated. Callers cancel the subscriptions under subMu.
func (m *Manager) resetLocked() (*models.User, *models.Credential) {
	user, cred := m.user, m.cred
	m.gen++
	m.scheduler.Clear()
	m.state = models.StateUnauthenticated
	m.user = nil
	m.cred = nil
	m.onboardingDone = false
	m.fareContractsGen = 0
	return user, cred
}

func (m *Manager) isCurrent(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gen == m.gen && !m.stopped
}

func (m *Manager) baseContext() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseContextLocked()
}

func (m *Manager) baseContextLocked() context.Context {
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}

// persistMarker writes the current in-memory marker. Writes are serialized
// and always carry the latest value, so racing transitions cannot leave a
// stale marker behind.
func (m *Manager) persistMarker(ctx context.Context) {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()
	loggedIn := m.LoggedIn()
	if err := m.local.SetLoggedIn(ctx, m.installID, loggedIn); err != nil {
		m.logger.WarnContext(ctx, "failed to persist logged-in marker",
			"logged_in", loggedIn,
			"error", err,
		)
	}
}
