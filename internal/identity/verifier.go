package identity

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"

	"webshop/internal/session/models"
	"webshop/pkg/domain"
)

// clockSkewLeeway absorbs small clock differences on exp, nbf and iat.
const clockSkewLeeway = 5 * time.Second

// Claims is the ID token payload.
type Claims struct {
	Email         string         `json:"email,omitempty"`
	EmailVerified bool           `json:"email_verified,omitempty"`
	Phone         string         `json:"phone_number,omitempty"`
	Firebase      FirebaseClaims `json:"firebase"`
	jwt.RegisteredClaims
}

// FirebaseClaims holds the provider block of the token.
type FirebaseClaims struct {
	SignInProvider string `json:"sign_in_provider"`
}

// Verifier checks ID token signatures and registered claims.
type Verifier struct {
	keyfunc  jwt.Keyfunc
	issuer   string
	audience string
	now      func() time.Time
	jwks     *keyfunc.JWKS
}

type VerifierOption func(*Verifier)

// WithKeyfunc replaces remote key discovery, mostly for tests.
func WithKeyfunc(kf jwt.Keyfunc) VerifierOption {
	return func(v *Verifier) {
		v.keyfunc = kf
	}
}

// WithTimeFunc sets the clock used for exp/iat validation.
func WithTimeFunc(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// NewVerifier builds a verifier for tokens issued to projectID. Without
// WithKeyfunc the signing keys are fetched from jwksURL and refreshed in
// the background.
func NewVerifier(jwksURL, issuer, projectID string, logger *slog.Logger, opts ...VerifierOption) (*Verifier, error) {
	v := &Verifier{issuer: issuer, audience: projectID, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	if v.keyfunc != nil {
		return v, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			logger.Warn("failed to refresh identity signing keys", "error", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("load signing keys: %w", err)
	}
	v.jwks = jwks
	v.keyfunc = jwks.Keyfunc
	return v, nil
}

// Verify parses idToken into a Credential. A missing subject is not an
// error: the credential comes back without an account id.
func (v *Verifier) Verify(idToken string) (models.Credential, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(idToken, claims, v.keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkewLeeway),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		// Only expiry ends the session; key rotation or skew is retried.
		code := CodeInvalidIDToken
		if errors.Is(err, jwt.ErrTokenExpired) {
			code = CodeTokenExpired
		}
		return models.Credential{}, &ProviderError{Code: code, Detail: err.Error()}
	}

	cred := models.Credential{
		Token:          idToken,
		SignInProvider: claims.Firebase.SignInProvider,
		Email:          claims.Email,
		EmailVerified:  claims.EmailVerified,
		Phone:          claims.Phone,
	}
	if claims.ExpiresAt != nil {
		cred.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		cred.IssuedAt = claims.IssuedAt.Time
	}
	if accountID, err := domain.ParseAccountID(claims.Subject); err == nil {
		cred.AccountID = accountID
	}
	return cred, nil
}

// Close stops background key refresh.
func (v *Verifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
