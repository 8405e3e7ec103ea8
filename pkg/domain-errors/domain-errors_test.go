package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives used at the bridge boundary.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotFound, Message: "profile not found"}
		s.Equal("profile not found", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodePermissionDenied}
		s.Equal("permission_denied", err.Error())
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		s.True(errors.Is(New(CodeUnauthorized, "a"), &Error{Code: CodeUnauthorized}))
	})

	s.Run("does not match different codes", func() {
		s.False(errors.Is(New(CodeUnauthorized, "a"), &Error{Code: CodeInternal}))
	})

	s.Run("finds code through fmt wrapping", func() {
		err := fmt.Errorf("open profile: %w", New(CodePermissionDenied, "denied"))
		s.True(errors.Is(err, &Error{Code: CodePermissionDenied}))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("preserves original domain code", func() {
		wrapped := Wrap(New(CodeNotFound, "no such document"), CodeInternal, "fetch failed")
		s.True(HasCode(wrapped, CodeNotFound))
		s.Equal("fetch failed", wrapped.Error())
	})

	s.Run("uses provided code for foreign errors", func() {
		root := errors.New("dial tcp: refused")
		wrapped := Wrap(root, CodeUnavailable, "identity backend unreachable")
		s.True(HasCode(wrapped, CodeUnavailable))
		s.True(errors.Is(wrapped, root))
	})
}

func (s *DomainErrorsSuite) TestCodeOf() {
	s.Equal(CodeValidation, CodeOf(New(CodeValidation, "x")))
	s.Equal(CodeInternal, CodeOf(errors.New("plain")))
	s.Equal(CodeInternal, CodeOf(nil))
	s.False(HasCode(nil, CodeNotFound))
}
