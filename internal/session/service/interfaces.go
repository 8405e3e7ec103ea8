package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"webshop/internal/audit"
	fareContractSub "webshop/internal/farecontract/subscription"
	"webshop/internal/identity"
	profileSub "webshop/internal/profile/subscription"
	"webshop/internal/session/models"
	"webshop/pkg/domain"
)

// IdentityProvider is the signed-in state of one browser installation.
// Auth-state listeners are called synchronously from the operation that
// caused the change.
type IdentityProvider interface {
	OnAuthStateChanged(l identity.AuthStateListener) func()
	Restore(ctx context.Context) error
	FetchCredential(ctx context.Context, user models.User) (models.Credential, error)
	SignOut(ctx context.Context) error
	SignInWithPassword(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) error
	StartPhoneLogin(ctx context.Context, phone, recaptchaToken string) (string, error)
	ConfirmPhoneLogin(ctx context.Context, code string) error
	SendPasswordReset(ctx context.Context, email string) error
	SendEmailVerification(ctx context.Context) error
}

// LocalState persists the logged-in marker of an installation.
type LocalState interface {
	LoggedIn(ctx context.Context, installID domain.InstallID) (bool, error)
	SetLoggedIn(ctx context.Context, installID domain.InstallID, loggedIn bool) error
}

// ProfileSubscription keeps at most one live profile watch.
type ProfileSubscription interface {
	Open(ctx context.Context, accountID domain.AccountID, handler profileSub.Handler) error
	Cancel()
}

// FareContractSubscription keeps at most one live fare-contract watch.
type FareContractSubscription interface {
	Open(ctx context.Context, accountID domain.AccountID, handler fareContractSub.Handler) error
	Cancel()
}

// Notifier delivers one-way messages to the UI. Notify must not block on
// the UI and must not call back into the Manager.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}
