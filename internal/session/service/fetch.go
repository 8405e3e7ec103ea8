package service

import (
	"context"
	"errors"

	"webshop/internal/docstore"
	fareContractModels "webshop/internal/farecontract/models"
	"webshop/internal/identity"
	"webshop/internal/platform/tracing"
	profileModels "webshop/internal/profile/models"
	"webshop/internal/session/models"
	"webshop/internal/session/scheduler"
	"webshop/pkg/domain"
)

const (
	subscriptionProfile       = "profile"
	subscriptionFareContracts = "fare_contracts"
)

// fetch force-refreshes the credential of user and moves the session to
// the state its claims call for. A newer fetch or a teardown supersedes it.
func (m *Manager) fetch(ctx context.Context, user models.User, onboardingDone bool) {
	gen, ok := m.beginFetch(user, onboardingDone)
	if !ok {
		return
	}

	ctx, span := m.tracer.Start(ctx, tracing.SpanFetchCredential,
		tracing.String(tracing.AttrUser, tracing.HashIdentifier(user.UID)),
		tracing.Int64(tracing.AttrGeneration, int64(gen)),
	)
	start := m.clock.Now()
	cred, err := m.identity.FetchCredential(ctx, user)
	elapsedMs := float64(m.clock.Now().Sub(start).Milliseconds())
	span.End(err)

	if err != nil {
		m.fetchFailed(ctx, gen, user, err, elapsedMs)
		return
	}
	m.fetchSucceeded(ctx, gen, user, cred, elapsedMs)
}

// beginFetch starts a new generation and cancels the subscriptions of the
// previous one.
func (m *Manager) beginFetch(user models.User, onboardingDone bool) (uint64, bool) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return 0, false
	}
	m.gen++
	gen := m.gen
	m.user = &user
	m.onboardingDone = onboardingDone
	m.fareContractsGen = 0
	m.mu.Unlock()
	m.profiles.Cancel()
	m.fareContracts.Cancel()
	return gen, true
}

func (m *Manager) fetchFailed(ctx context.Context, gen uint64, user models.User, err error, elapsedMs float64) {
	m.mu.Lock()
	if gen != m.gen || m.stopped {
		m.mu.Unlock()
		m.observeFetch("superseded", elapsedMs)
		return
	}
	if identity.IsSessionInvalid(err) || errors.Is(err, identity.ErrNoCurrentUser) {
		// The provider reports the sign-out through the listener.
		m.mu.Unlock()
		m.observeFetch("invalid", elapsedMs)
		m.logger.InfoContext(ctx, "credential fetch rejected", "error", err)
		return
	}
	outcome := m.scheduler.Retry(user)
	m.mu.Unlock()

	m.observeFetch("failed", elapsedMs)
	m.observeRefresh(outcome)
	m.logger.WarnContext(ctx, "credential fetch failed",
		"error", err,
		"retry", outcome.String(),
	)
	if outcome == scheduler.Abandoned {
		m.emitAudit(ctx, eventRefreshAbandoned, &user, nil, "fetch_failed")
	}
}

func (m *Manager) fetchSucceeded(ctx context.Context, gen uint64, user models.User, cred models.Credential, elapsedMs float64) {
	m.mu.Lock()
	if gen != m.gen || m.stopped {
		m.mu.Unlock()
		m.observeFetch("superseded", elapsedMs)
		return
	}
	m.cred = &cred

	switch {
	case !cred.HasAccountID():
		m.state = models.StateOnboarding
		m.scheduler.Clear()
		m.notifyLocked(ctx, onboardingStart(cred))
		m.mu.Unlock()
		m.observeFetch(string(models.StateOnboarding), elapsedMs)
		m.emitAudit(ctx, eventOnboardingStarted, &user, &cred, "missing_account_id")
		return

	case cred.NeedsEmailVerification():
		m.state = models.StateVerifyEmail
		m.scheduler.Clear()
		m.notifyLocked(ctx, models.Notification{
			Type:    models.NotifyVerifyUserStart,
			Payload: models.VerifyUserStart{Email: cred.Email},
		})
		m.mu.Unlock()
		m.observeFetch(string(models.StateVerifyEmail), elapsedMs)
		m.emitAudit(ctx, eventVerifyEmail, &user, &cred, "")
		return
	}

	outcome := m.scheduler.Schedule(user, cred.ExpiresAt)
	m.loggedIn = true
	m.mu.Unlock()

	m.observeFetch(string(models.StateAuthenticated), elapsedMs)
	m.observeRefresh(outcome)
	if outcome == scheduler.Abandoned {
		m.logger.WarnContext(ctx, "credential already expired and retry budget exhausted",
			"expires_at", cred.ExpiresAt,
		)
	}
	m.persistMarker(ctx)
	m.openProfile(ctx, gen, cred.AccountID)
}

func (m *Manager) openProfile(ctx context.Context, gen uint64, accountID domain.AccountID) {
	m.subMu.Lock()
	if !m.isCurrent(gen) {
		m.subMu.Unlock()
		return
	}
	ctx, span := m.tracer.Start(ctx, tracing.SpanOpenProfile,
		tracing.String(tracing.AttrAccount, tracing.HashIdentifier(accountID.String())),
	)
	err := m.profiles.Open(ctx, accountID, func(snap profileModels.Snapshot, err error) {
		m.onProfile(gen, accountID, snap, err)
	})
	span.End(err)
	m.subMu.Unlock()
	if err != nil {
		m.subscriptionFailed(ctx, gen, subscriptionProfile, err)
	}
}

func (m *Manager) onProfile(gen uint64, accountID domain.AccountID, snap profileModels.Snapshot, err error) {
	ctx := m.baseContext()
	if err != nil {
		m.subscriptionFailed(ctx, gen, subscriptionProfile, err)
		return
	}

	m.subMu.Lock()
	m.mu.Lock()
	if gen != m.gen || m.stopped || m.cred == nil {
		m.mu.Unlock()
		m.subMu.Unlock()
		return
	}
	cred := *m.cred
	var user models.User
	if m.user != nil {
		user = *m.user
	}

	if !snap.Exists {
		if m.onboardingDone {
			m.mu.Unlock()
			m.subMu.Unlock()
			m.logger.DebugContext(ctx, "ignoring missing profile right after onboarding",
				"account_id", accountID.String(),
			)
			return
		}
		m.state = models.StateOnboarding
		m.fareContractsGen = 0
		m.notifyLocked(ctx, onboardingStart(cred))
		m.mu.Unlock()
		m.fareContracts.Cancel()
		m.subMu.Unlock()
		m.emitAudit(ctx, eventOnboardingStarted, &user, &cred, "missing_profile")
		return
	}

	wasAuthenticated := m.state == models.StateAuthenticated
	m.state = models.StateAuthenticated
	m.onboardingDone = false
	m.notifyLocked(ctx, models.Notification{
		Type: models.NotifySignInInfo,
		Payload: models.SignInInfo{
			Token:     cred.Token,
			Email:     cred.Email,
			Phone:     cred.Phone,
			AccountID: accountID.String(),
			Provider:  cred.SignInProvider,
			Profile:   snap.Profile,
		},
	})
	openFareContracts := m.fareContractsGen != gen
	m.fareContractsGen = gen
	m.mu.Unlock()

	if openFareContracts {
		err = m.openFareContracts(ctx, gen, accountID)
	}
	m.subMu.Unlock()

	if !wasAuthenticated {
		m.emitAudit(ctx, eventSignedIn, &user, &cred, "")
	}
	if err != nil {
		m.subscriptionFailed(ctx, gen, subscriptionFareContracts, err)
	}
}

// openFareContracts runs with subMu held.
func (m *Manager) openFareContracts(ctx context.Context, gen uint64, accountID domain.AccountID) error {
	ctx, span := m.tracer.Start(ctx, tracing.SpanOpenFareContract,
		tracing.String(tracing.AttrAccount, tracing.HashIdentifier(accountID.String())),
	)
	err := m.fareContracts.Open(ctx, accountID, func(contracts []fareContractModels.FareContract, err error) {
		m.onFareContracts(gen, contracts, err)
	})
	span.End(err)
	if err != nil {
		m.mu.Lock()
		if m.fareContractsGen == gen {
			m.fareContractsGen = 0
		}
		m.mu.Unlock()
	}
	return err
}

func (m *Manager) onFareContracts(gen uint64, contracts []fareContractModels.FareContract, err error) {
	ctx := m.baseContext()
	if err != nil {
		m.subscriptionFailed(ctx, gen, subscriptionFareContracts, err)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen || m.stopped || m.fareContractsGen != gen {
		return
	}
	m.notifyLocked(ctx, models.Notification{
		Type:    models.NotifyFareContracts,
		Payload: models.FareContracts{Contracts: contracts},
	})
}

// subscriptionFailed must be called without subMu held.
func (m *Manager) subscriptionFailed(ctx context.Context, gen uint64, name string, err error) {
	if !m.isCurrent(gen) {
		return
	}
	if m.metrics != nil {
		m.metrics.IncrementSubscriptionFailure(name)
	}
	if docstore.IsPermissionDenied(err) {
		m.expire(ctx, gen, "permission_denied")
		return
	}
	m.reopenLater(ctx, gen, name, err)
}

// reopenLater re-establishes a watch the backend dropped, after the retry
// delay and within the retry budget of the current generation.
func (m *Manager) reopenLater(ctx context.Context, gen uint64, name string, cause error) {
	m.mu.Lock()
	if gen != m.gen || m.stopped || m.cred == nil {
		m.mu.Unlock()
		return
	}
	if m.reopenGen != gen {
		m.reopenGen = gen
		m.reopenAttempts = 0
	}
	if m.reopenAttempts >= m.retryBudget {
		m.mu.Unlock()
		m.logger.WarnContext(ctx, "subscription failed, reopen budget exhausted",
			"subscription", name,
			"error", cause,
		)
		return
	}
	m.reopenAttempts++
	attempt := m.reopenAttempts
	accountID := m.cred.AccountID
	m.mu.Unlock()

	m.logger.WarnContext(ctx, "subscription failed, reopening",
		"subscription", name,
		"error", cause,
		"attempt", attempt,
		"delay", m.retryDelay,
	)
	m.clock.AfterFunc(m.retryDelay, func() {
		m.reopen(gen, name, accountID)
	})
}

func (m *Manager) reopen(gen uint64, name string, accountID domain.AccountID) {
	ctx := m.baseContext()
	if name == subscriptionProfile {
		m.openProfile(ctx, gen, accountID)
		return
	}

	m.subMu.Lock()
	m.mu.Lock()
	current := gen == m.gen && !m.stopped && m.state == models.StateAuthenticated
	if current {
		m.fareContractsGen = gen
	}
	m.mu.Unlock()
	var err error
	if current {
		err = m.openFareContracts(ctx, gen, accountID)
	}
	m.subMu.Unlock()
	if err != nil {
		m.subscriptionFailed(ctx, gen, subscriptionFareContracts, err)
	}
}

func onboardingStart(cred models.Credential) models.Notification {
	return models.Notification{
		Type: models.NotifyOnboardingStart,
		Payload: models.OnboardingStart{
			Token: cred.Token,
			Email: cred.Email,
			Phone: cred.Phone,
		},
	}
}

func loggedOutNotice() models.Notification {
	return models.Notification{
		Type: models.NotifySignInError,
		Payload: models.ErrorInfo{
			Code:    identity.CodeTokenExpired,
			Message: models.LoggedOutNotice,
		},
	}
}
