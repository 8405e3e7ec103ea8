package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Provider error codes surfaced by the identity toolkit, in the
// "auth/..." form the UI already understands.
const (
	CodeEmailNotFound       = "auth/user-not-found"
	CodeWrongPassword       = "auth/wrong-password"
	CodeInvalidCredential   = "auth/invalid-credential"
	CodeEmailExists         = "auth/email-already-in-use"
	CodeInvalidEmail        = "auth/invalid-email"
	CodeWeakPassword        = "auth/weak-password"
	CodeUserDisabled        = "auth/user-disabled"
	CodeTooManyRequests     = "auth/too-many-requests"
	CodeInvalidPhone        = "auth/invalid-phone-number"
	CodeInvalidCode         = "auth/invalid-verification-code"
	CodeCodeExpired         = "auth/code-expired"
	CodeMissingCode         = "auth/missing-verification-code"
	CodeTokenExpired        = "auth/user-token-expired"
	CodeInvalidIDToken      = "auth/invalid-id-token"
	CodeInvalidRefreshToken = "auth/invalid-refresh-token"
	CodeNetwork             = "auth/network-request-failed"
	CodeInternal            = "auth/internal-error"
)

// Norwegian messages shown to the customer. The set is closed: unknown
// codes fall back to the generic service message.
const (
	MessageGeneric         = "Det oppstod en feil med tjenesten."
	MessageWrongCredential = "E-post og passord stemmer ikke."
	MessageEmailExists     = "E-postadressen er allerede i bruk."
	MessageInvalidEmail    = "E-postadressen er ugyldig."
	MessageWeakPassword    = "Passordet må være minst 6 tegn."
	MessageUserDisabled    = "Kontoen er deaktivert."
	MessageTooManyRequests = "For mange forsøk. Prøv igjen senere."
	MessageInvalidPhone    = "Telefonnummeret må bestå av 8 siffer"
	MessageInvalidCode     = "Engangskoden er ugyldig."
	MessageCodeExpired     = "Engangskoden er utløpt. Send en ny kode."
	MessageNetwork         = "Får ikke kontakt med tjenesten. Sjekk nettverket."
)

var userMessages = map[string]string{
	CodeEmailNotFound:     MessageWrongCredential,
	CodeWrongPassword:     MessageWrongCredential,
	CodeInvalidCredential: MessageWrongCredential,
	CodeEmailExists:       MessageEmailExists,
	CodeInvalidEmail:      MessageInvalidEmail,
	CodeWeakPassword:      MessageWeakPassword,
	CodeUserDisabled:      MessageUserDisabled,
	CodeTooManyRequests:   MessageTooManyRequests,
	CodeInvalidPhone:      MessageInvalidPhone,
	CodeInvalidCode:       MessageInvalidCode,
	CodeMissingCode:       MessageInvalidCode,
	CodeCodeExpired:       MessageCodeExpired,
	CodeNetwork:           MessageNetwork,
}

// REST error messages mapped to provider codes.
var restCodes = map[string]string{
	"EMAIL_NOT_FOUND":             CodeEmailNotFound,
	"INVALID_PASSWORD":            CodeWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":   CodeInvalidCredential,
	"EMAIL_EXISTS":                CodeEmailExists,
	"INVALID_EMAIL":               CodeInvalidEmail,
	"MISSING_EMAIL":               CodeInvalidEmail,
	"WEAK_PASSWORD":               CodeWeakPassword,
	"USER_DISABLED":               CodeUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER": CodeTooManyRequests,
	"INVALID_PHONE_NUMBER":        CodeInvalidPhone,
	"MISSING_PHONE_NUMBER":        CodeInvalidPhone,
	"INVALID_CODE":                CodeInvalidCode,
	"MISSING_CODE":                CodeMissingCode,
	"SESSION_EXPIRED":             CodeCodeExpired,
	"TOKEN_EXPIRED":               CodeTokenExpired,
	"USER_NOT_FOUND":              CodeEmailNotFound,
	"INVALID_REFRESH_TOKEN":       CodeInvalidRefreshToken,
	"INVALID_GRANT_TYPE":          CodeInvalidRefreshToken,
	"MISSING_REFRESH_TOKEN":       CodeInvalidRefreshToken,
	"INVALID_ID_TOKEN":            CodeTokenExpired,
}

// ProviderError is a failed identity toolkit operation.
type ProviderError struct {
	Code   string
	Detail string
	Status int
}

func (e *ProviderError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("identity provider: %s (%s)", e.Code, e.Detail)
	}
	return "identity provider: " + e.Code
}

// Is lets errors.Is match on code.
func (e *ProviderError) Is(target error) bool {
	t, ok := target.(*ProviderError)
	return ok && t.Code == e.Code
}

// Message is the customer-facing text for the error.
func (e *ProviderError) Message() string {
	return UserMessage(e.Code)
}

// UserMessage maps a provider code to its Norwegian message.
func UserMessage(code string) string {
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	return MessageGeneric
}

// ErrorInfo extracts the provider code and user message from any error.
// Errors that did not come from the provider map to the internal code.
func ErrorInfo(err error) (code, message string) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code, pe.Message()
	}
	return CodeInternal, MessageGeneric
}

// IsSessionInvalid reports errors meaning the stored sign-in can no
// longer be used.
func IsSessionInvalid(err error) bool {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return errors.Is(err, ErrNoCurrentUser)
	}
	switch pe.Code {
	case CodeInvalidRefreshToken, CodeTokenExpired, CodeUserDisabled, CodeEmailNotFound:
		return true
	}
	return false
}

// ErrNoCurrentUser is returned when an operation needs a signed-in user.
var ErrNoCurrentUser = errors.New("identity: no signed-in user")

// fromREST converts a toolkit error message such as
// "TOO_MANY_ATTEMPTS_TRY_LATER : Access disabled" to a ProviderError.
func fromREST(status int, message string) *ProviderError {
	key, detail, _ := strings.Cut(message, ":")
	key = strings.TrimSpace(key)
	code, ok := restCodes[key]
	if !ok {
		code = CodeInternal
		detail = message
	}
	return &ProviderError{Code: code, Detail: strings.TrimSpace(detail), Status: status}
}
