package models

import (
	"time"

	"webshop/pkg/domain"
)

// Sign-in provider identifiers carried in the credential's firebase claim.
const (
	ProviderPassword  = "password"
	ProviderPhone     = "phone"
	ProviderCustom    = "custom"
	ProviderAnonymous = "anonymous"
)

// LoggedOutNotice is shown when a session turns out to be stale.
const LoggedOutNotice = "Du er utlogget."

// User is the identity-provider user a session is bound to.
type User struct {
	UID           string
	Email         string
	EmailVerified bool
	Phone         string
}

// Credential is a freshly minted ID token and the claims the session
// manager acts on. AccountID is empty when the token lacks the claim.
type Credential struct {
	Token          string
	IssuedAt       time.Time
	ExpiresAt      time.Time
	SignInProvider string
	AccountID      domain.AccountID
	Email          string
	EmailVerified  bool
	Phone          string
}

// HasAccountID reports whether the stable account id claim is present.
func (c Credential) HasAccountID() bool {
	return !c.AccountID.IsNil()
}

// NeedsEmailVerification is true for password accounts with an
// unverified address.
func (c Credential) NeedsEmailVerification() bool {
	return c.SignInProvider == ProviderPassword && !c.EmailVerified
}

// State is the session manager's lifecycle state.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateOnboarding      State = "onboarding"
	StateVerifyEmail     State = "verify_email"
	StateAuthenticated   State = "authenticated"
)

func (s State) String() string { return string(s) }

// IsSignedIn is true for every state bound to a user.
func (s State) IsSignedIn() bool {
	return s != StateUnauthenticated && s != ""
}
