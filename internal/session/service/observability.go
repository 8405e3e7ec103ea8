package service

import (
	"context"

	"webshop/internal/audit"
	"webshop/internal/session/models"
	"webshop/internal/session/scheduler"
)

const (
	eventSignedIn          = audit.EventSignedIn
	eventSignedOut         = audit.EventSignedOut
	eventForcedLogout      = audit.EventForcedLogout
	eventOnboardingStarted = audit.EventOnboardingStarted
	eventVerifyEmail       = audit.EventVerifyEmail
	eventRefreshAbandoned  = audit.EventRefreshAbandoned
)

// notifyLocked sends n with mu held, which keeps notifications ordered with
// the state transitions that produce them.
func (m *Manager) notifyLocked(ctx context.Context, n models.Notification) {
	m.notifier.Notify(ctx, n)
	if m.metrics != nil {
		m.metrics.IncrementNotification(string(n.Type))
	}
}

func (m *Manager) notify(ctx context.Context, n models.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.notifyLocked(ctx, n)
}

func (m *Manager) emitAudit(ctx context.Context, event audit.AuditEvent, user *models.User, cred *models.Credential, reason string) {
	e := audit.Event{
		InstallID: m.installID.String(),
		Action:    string(event),
		Reason:    reason,
		Device:    m.device.Name,
	}
	if user != nil {
		e.UserID = user.UID
	}
	if cred != nil {
		e.AccountID = cred.AccountID.String()
		e.Provider = cred.SignInProvider
	}
	m.logger.InfoContext(ctx, string(event),
		"user_id", e.UserID,
		"account_id", e.AccountID,
		"reason", reason,
		"log_type", "audit",
	)
	if m.auditPublisher == nil {
		return
	}
	if err := m.auditPublisher.Emit(ctx, e); err != nil {
		m.logger.ErrorContext(ctx, "failed to emit audit event", "error", err)
	}
}

func (m *Manager) observeFetch(result string, elapsedMs float64) {
	if m.metrics != nil {
		m.metrics.ObserveCredentialFetch(result, elapsedMs)
	}
}

func (m *Manager) observeRefresh(outcome scheduler.Outcome) {
	if m.metrics != nil {
		m.metrics.IncrementRefreshOutcome(outcome.String())
	}
}
