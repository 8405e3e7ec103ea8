package identity

import (
	"context"
	"log/slog"
	"sync"

	"webshop/internal/session/models"
	"webshop/pkg/domain"
)

// TokenStore persists the refresh token of each browser installation.
type TokenStore interface {
	RefreshToken(ctx context.Context, installID domain.InstallID) (string, error)
	SaveRefreshToken(ctx context.Context, installID domain.InstallID, token string) error
	ClearRefreshToken(ctx context.Context, installID domain.InstallID) error
}

// TokenVerifier turns an ID token into a Credential.
type TokenVerifier interface {
	Verify(idToken string) (models.Credential, error)
}

// AuthStateListener observes sign-in and sign-out. user is nil when no
// one is signed in.
type AuthStateListener func(ctx context.Context, user *models.User)

// Session is the identity state of one browser installation: the signed-in
// user, its tokens, and the listeners told about every change.
type Session struct {
	client    *Client
	verifier  TokenVerifier
	tokens    TokenStore
	installID domain.InstallID
	region    string
	logger    *slog.Logger

	mu           sync.Mutex
	user         *models.User
	refreshToken string
	idToken      string
	phoneSession string
	listeners    map[int]AuthStateListener
	nextID       int
}

type SessionOption func(*Session)

func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithPhoneRegion sets the region assumed for national phone numbers.
func WithPhoneRegion(region string) SessionOption {
	return func(s *Session) {
		if region != "" {
			s.region = region
		}
	}
}

func NewSession(client *Client, verifier TokenVerifier, tokens TokenStore, installID domain.InstallID, opts ...SessionOption) *Session {
	s := &Session{
		client:    client,
		verifier:  verifier,
		tokens:    tokens,
		installID: installID,
		region:    DefaultRegion,
		logger:    slog.Default(),
		listeners: make(map[int]AuthStateListener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnAuthStateChanged registers l and returns its unsubscribe function.
func (s *Session) OnAuthStateChanged(l AuthStateListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *Session) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Restore resumes the sign-in persisted for this installation and reports
// the outcome to listeners. A rejected refresh token reports "no user".
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.tokens.RefreshToken(ctx, s.installID)
	if err != nil {
		return err
	}
	if token == "" {
		s.notify(ctx, nil)
		return nil
	}
	tokens, err := s.client.Refresh(ctx, token)
	if err != nil {
		if IsSessionInvalid(err) {
			s.logger.InfoContext(ctx, "persisted sign-in rejected",
				"install_id", s.installID.String(),
				"error", err,
			)
			s.drop(ctx)
			return nil
		}
		return err
	}
	return s.establish(ctx, tokens)
}

// FetchCredential force-refreshes the ID token of user. It fails with
// ErrNoCurrentUser when user is no longer the signed-in user.
func (s *Session) FetchCredential(ctx context.Context, user models.User) (models.Credential, error) {
	s.mu.Lock()
	if s.user == nil || s.user.UID != user.UID {
		s.mu.Unlock()
		return models.Credential{}, ErrNoCurrentUser
	}
	refreshToken := s.refreshToken
	s.mu.Unlock()

	tokens, err := s.client.Refresh(ctx, refreshToken)
	if err != nil {
		if IsSessionInvalid(err) {
			s.drop(ctx)
		}
		return models.Credential{}, err
	}
	cred, err := s.verifier.Verify(tokens.IDToken)
	if err != nil {
		if IsSessionInvalid(err) {
			s.drop(ctx)
		}
		return models.Credential{}, err
	}

	s.mu.Lock()
	if s.user == nil || s.user.UID != user.UID {
		s.mu.Unlock()
		return models.Credential{}, ErrNoCurrentUser
	}
	s.idToken = tokens.IDToken
	if tokens.RefreshToken != "" {
		s.refreshToken = tokens.RefreshToken
	}
	refreshToken = s.refreshToken
	// Claims carry the latest verification state.
	s.user.EmailVerified = cred.EmailVerified
	s.mu.Unlock()

	if err := s.tokens.SaveRefreshToken(ctx, s.installID, refreshToken); err != nil {
		s.logger.WarnContext(ctx, "failed to persist refresh token", "error", err)
	}
	if cred.Email == "" {
		cred.Email = user.Email
	}
	if cred.Phone == "" {
		cred.Phone = user.Phone
	}
	return cred, nil
}

func (s *Session) SignInWithPassword(ctx context.Context, email, password string) error {
	tokens, err := s.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		return err
	}
	return s.establish(ctx, tokens)
}

// SignUp registers an email account, signs it in and sends the
// verification mail.
func (s *Session) SignUp(ctx context.Context, email, password string) error {
	tokens, err := s.client.SignUp(ctx, email, password)
	if err != nil {
		return err
	}
	if err := s.client.SendEmailVerification(ctx, tokens.IDToken); err != nil {
		s.logger.WarnContext(ctx, "failed to send verification email", "error", err)
	}
	return s.establish(ctx, tokens)
}

// StartPhoneLogin texts a one-time code and returns the normalized number.
func (s *Session) StartPhoneLogin(ctx context.Context, phone, recaptchaToken string) (string, error) {
	normalized, err := NormalizePhone(phone, s.region)
	if err != nil {
		return "", err
	}
	sessionInfo, err := s.client.SendVerificationCode(ctx, normalized, recaptchaToken)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.phoneSession = sessionInfo
	s.mu.Unlock()
	return normalized, nil
}

// ConfirmPhoneLogin signs in with the code sent by StartPhoneLogin.
func (s *Session) ConfirmPhoneLogin(ctx context.Context, code string) error {
	s.mu.Lock()
	sessionInfo := s.phoneSession
	s.mu.Unlock()
	if sessionInfo == "" {
		return &ProviderError{Code: CodeCodeExpired, Detail: "no pending phone login"}
	}
	tokens, err := s.client.SignInWithPhoneNumber(ctx, sessionInfo, code)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.phoneSession = ""
	s.mu.Unlock()
	return s.establish(ctx, tokens)
}

func (s *Session) SendPasswordReset(ctx context.Context, email string) error {
	return s.client.SendPasswordReset(ctx, email)
}

// SendEmailVerification re-sends the verification mail to the signed-in user.
func (s *Session) SendEmailVerification(ctx context.Context) error {
	s.mu.Lock()
	idToken := s.idToken
	s.mu.Unlock()
	if idToken == "" {
		return ErrNoCurrentUser
	}
	return s.client.SendEmailVerification(ctx, idToken)
}

// SignOut forgets the user and its persisted token, then reports "no user".
func (s *Session) SignOut(ctx context.Context) error {
	s.drop(ctx)
	return nil
}

func (s *Session) establish(ctx context.Context, tokens Tokens) error {
	account, err := s.client.Lookup(ctx, tokens.IDToken)
	if err != nil {
		return err
	}
	user := &models.User{
		UID:           account.UID,
		Email:         account.Email,
		EmailVerified: account.EmailVerified,
		Phone:         account.Phone,
	}
	if user.UID == "" {
		user.UID = tokens.UID
	}

	s.mu.Lock()
	s.user = user
	s.idToken = tokens.IDToken
	s.refreshToken = tokens.RefreshToken
	s.mu.Unlock()

	if err := s.tokens.SaveRefreshToken(ctx, s.installID, tokens.RefreshToken); err != nil {
		s.logger.WarnContext(ctx, "failed to persist refresh token", "error", err)
	}
	u := *user
	s.notify(ctx, &u)
	return nil
}

func (s *Session) drop(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.idToken = ""
	s.refreshToken = ""
	s.phoneSession = ""
	s.mu.Unlock()

	if err := s.tokens.ClearRefreshToken(ctx, s.installID); err != nil {
		s.logger.WarnContext(ctx, "failed to clear refresh token", "error", err)
	}
	s.notify(ctx, nil)
}

func (s *Session) notify(ctx context.Context, user *models.User) {
	s.mu.Lock()
	listeners := make([]AuthStateListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(ctx, user)
	}
}
