package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	dErrors "webshop/pkg/domain-errors"
)

const sealInfo = "webshop local-state refresh token"

// Generate creates a cryptographically secure random secret.
// Returns a base64-encoded string suitable for use as a sealing secret.
func Generate() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate secret")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Sealer encrypts short values such as refresh tokens before they are
// written to shared storage.
type Sealer struct {
	key []byte
}

// NewSealer derives an XChaCha20-Poly1305 key from secret.
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "secret cannot be empty")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(sealInfo)), key); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not derive sealing key")
	}
	return &Sealer{key: key}, nil
}

// Seal encrypts plaintext with a random nonce. The empty string stays empty.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not init cipher")
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate nonce")
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "sealed value is not base64")
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not init cipher")
	}
	if len(raw) < aead.NonceSize() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "sealed value is too short")
	}
	plain, err := aead.Open(nil, raw[:aead.NonceSize()], raw[aead.NonceSize():], nil)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnauthorized, "sealed value was tampered with")
	}
	return string(plain), nil
}
