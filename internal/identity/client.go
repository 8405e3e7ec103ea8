package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig configures the identity toolkit REST client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string // e.g. https://identitytoolkit.googleapis.com/v1
	TokenURL   string // e.g. https://securetoken.googleapis.com/v1/token
	Timeout    time.Duration
	HTTPClient HTTPDoer
}

// Client talks to the identity toolkit REST API.
type Client struct {
	apiKey   string
	baseURL  string
	tokenURL string
	http     HTTPDoer
}

// Tokens is the result of any sign-in or token refresh.
type Tokens struct {
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
	UID          string
	Email        string
}

// Account is the subset of the account lookup used by the bridge.
type Account struct {
	UID           string `json:"localId"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	Phone         string `json:"phoneNumber"`
	Disabled      bool   `json:"disabled"`
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		tokenURL: cfg.TokenURL,
		http:     doer,
	}
}

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
}

func (r signInResponse) tokens() Tokens {
	secs, _ := strconv.Atoi(r.ExpiresIn)
	return Tokens{
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
		ExpiresIn:    time.Duration(secs) * time.Second,
		UID:          r.LocalID,
		Email:        r.Email,
	}
}

// SignInWithPassword signs in an email/password account.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (Tokens, error) {
	var resp signInResponse
	err := c.call(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return Tokens{}, err
	}
	return resp.tokens(), nil
}

// SignUp creates an email/password account and signs it in.
func (c *Client) SignUp(ctx context.Context, email, password string) (Tokens, error) {
	var resp signInResponse
	err := c.call(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return Tokens{}, err
	}
	return resp.tokens(), nil
}

// SendPasswordReset mails a password reset link.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.call(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
}

// SendEmailVerification mails a verification link to the token's owner.
func (c *Client) SendEmailVerification(ctx context.Context, idToken string) error {
	return c.call(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "VERIFY_EMAIL",
		"idToken":     idToken,
	}, nil)
}

// SendVerificationCode texts a one-time code and returns the session info
// needed to confirm it.
func (c *Client) SendVerificationCode(ctx context.Context, phone, recaptchaToken string) (string, error) {
	var resp struct {
		SessionInfo string `json:"sessionInfo"`
	}
	err := c.call(ctx, "accounts:sendVerificationCode", map[string]any{
		"phoneNumber":    phone,
		"recaptchaToken": recaptchaToken,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.SessionInfo, nil
}

// SignInWithPhoneNumber confirms a one-time code.
func (c *Client) SignInWithPhoneNumber(ctx context.Context, sessionInfo, code string) (Tokens, error) {
	var resp signInResponse
	err := c.call(ctx, "accounts:signInWithPhoneNumber", map[string]any{
		"sessionInfo": sessionInfo,
		"code":        code,
	}, &resp)
	if err != nil {
		return Tokens{}, err
	}
	return resp.tokens(), nil
}

// Lookup returns the account behind an ID token.
func (c *Client) Lookup(ctx context.Context, idToken string) (Account, error) {
	var resp struct {
		Users []Account `json:"users"`
	}
	if err := c.call(ctx, "accounts:lookup", map[string]any{"idToken": idToken}, &resp); err != nil {
		return Account{}, err
	}
	if len(resp.Users) == 0 {
		return Account{}, &ProviderError{Code: CodeEmailNotFound, Status: http.StatusOK}
	}
	return resp.Users[0], nil
}

// Refresh exchanges a refresh token for a fresh ID token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := c.tokenURL + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Tokens{}, fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
		UserID       string `json:"user_id"`
	}
	if err := c.do(req, &resp); err != nil {
		return Tokens{}, err
	}
	secs, _ := strconv.Atoi(resp.ExpiresIn)
	return Tokens{
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    time.Duration(secs) * time.Second,
		UID:          resp.UserID,
	}, nil
}

func (c *Client) call(ctx context.Context, method string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}
	endpoint := fmt.Sprintf("%s/%s?key=%s", c.baseURL, method, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &ProviderError{Code: CodeNetwork, Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ProviderError{Code: CodeNetwork, Detail: err.Error(), Status: resp.StatusCode}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var er errorResponse
		if err := json.Unmarshal(body, &er); err != nil || er.Error.Message == "" {
			return &ProviderError{Code: CodeInternal, Detail: http.StatusText(resp.StatusCode), Status: resp.StatusCode}
		}
		return fromREST(resp.StatusCode, er.Error.Message)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode identity response: %w", err)
	}
	return nil
}
