package audit

import "time"

// Event is emitted by the session bridge to capture sign-in lifecycle
// actions. Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	InstallID string    `json:"install_id"`
	AccountID string    `json:"account_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Provider  string    `json:"provider,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Device    string    `json:"device,omitempty"`
}

type AuditEvent string

const (
	EventSignedIn          AuditEvent = "signed_in"
	EventSignedOut         AuditEvent = "signed_out"
	EventForcedLogout      AuditEvent = "forced_logout"
	EventOnboardingStarted AuditEvent = "onboarding_started"
	EventVerifyEmail       AuditEvent = "verify_email_required"
	EventRefreshAbandoned  AuditEvent = "refresh_abandoned"
)
