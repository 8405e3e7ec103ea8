package service

import (
	"context"

	"webshop/internal/identity"
	"webshop/internal/session/models"
)

// The actions below forward UI requests to the identity provider. A
// successful sign-in reaches the Manager through the auth-state listener;
// failures become phoneError or emailError notifications.

func (m *Manager) LoginWithEmail(ctx context.Context, email, password string) {
	if err := m.identity.SignInWithPassword(ctx, email, password); err != nil {
		m.notifyError(ctx, models.NotifyEmailError, err)
	}
}

func (m *Manager) RegisterEmail(ctx context.Context, email, password string) {
	if err := m.identity.SignUp(ctx, email, password); err != nil {
		m.notifyError(ctx, models.NotifyEmailError, err)
	}
}

func (m *Manager) ResetPassword(ctx context.Context, email string) {
	if err := m.identity.SendPasswordReset(ctx, email); err != nil {
		m.notifyError(ctx, models.NotifyEmailError, err)
		return
	}
	m.notify(ctx, models.Notification{
		Type:    models.NotifyPasswordResetSent,
		Payload: models.PasswordResetSent{Email: email},
	})
}

// ResendVerification mails a new verification link to the held identity.
func (m *Manager) ResendVerification(ctx context.Context) {
	if err := m.identity.SendEmailVerification(ctx); err != nil {
		m.notifyError(ctx, models.NotifyEmailError, err)
		return
	}
	m.mu.Lock()
	var email string
	if m.cred != nil {
		email = m.cred.Email
	} else if m.user != nil {
		email = m.user.Email
	}
	m.mu.Unlock()
	m.notify(ctx, models.Notification{
		Type:    models.NotifyVerifyUserStart,
		Payload: models.VerifyUserStart{Email: email},
	})
}

func (m *Manager) StartPhoneLogin(ctx context.Context, phone, recaptchaToken string) {
	normalized, err := m.identity.StartPhoneLogin(ctx, phone, recaptchaToken)
	if err != nil {
		m.notifyError(ctx, models.NotifyPhoneError, err)
		return
	}
	m.notify(ctx, models.Notification{
		Type:    models.NotifyPhoneLoginStarted,
		Payload: models.PhoneLoginStarted{Phone: normalized},
	})
}

func (m *Manager) ConfirmPhoneLogin(ctx context.Context, code string) {
	if err := m.identity.ConfirmPhoneLogin(ctx, code); err != nil {
		m.notifyError(ctx, models.NotifyPhoneError, err)
	}
}

func (m *Manager) notifyError(ctx context.Context, t models.NotificationType, err error) {
	code, message := identity.ErrorInfo(err)
	m.logger.InfoContext(ctx, "auth action failed",
		"notification", string(t),
		"code", code,
		"error", err,
	)
	m.notify(ctx, models.Notification{
		Type:    t,
		Payload: models.ErrorInfo{Code: code, Message: message},
	})
}
