// Package domain provides type-safe identifiers and value objects shared by
// the session bridge modules.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "webshop/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing an InstallID where an AccountID is expected.
type (
	// AccountID is the stable customer id carried in the credential's `sub` claim.
	AccountID string
	// InstallID identifies one browser installation of the webshop.
	InstallID uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, credential claims).

func ParseAccountID(s string) (AccountID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account ID cannot be empty")
	}
	if strings.Contains(s, "/") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account ID cannot contain '/'")
	}
	return AccountID(s), nil
}

func ParseInstallID(s string) (InstallID, error) {
	if s == "" {
		return InstallID{}, dErrors.New(dErrors.CodeInvalidInput, "install ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return InstallID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid install ID")
	}
	if parsed == uuid.Nil {
		return InstallID{}, dErrors.New(dErrors.CodeInvalidInput, "install ID cannot be nil")
	}
	return InstallID(parsed), nil
}

// NewInstallID mints a random (v4) install id for browsers that have none yet.
func NewInstallID() InstallID {
	return InstallID(uuid.New())
}

func (id AccountID) String() string { return string(id) }
func (id InstallID) String() string { return uuid.UUID(id).String() }

func (id AccountID) IsNil() bool { return id == "" }
func (id InstallID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
