package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives shared by the store,
// service and transport layers.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorString() {
	s.Run("message wins over code", func() {
		err := &Error{Code: CodeAlreadyClaimed, Message: "bag 5 already claimed"}
		s.Equal("bag 5 already claimed", err.Error())
	})

	s.Run("falls back to code", func() {
		err := &Error{Code: CodeInvalidIdentifier}
		s.Equal("invalid_identifier", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrapAndIs() {
	s.Run("unwraps to the cause", func() {
		cause := errors.New("connection reset")
		err := &Error{Code: CodeInternal, Message: "read bag", Err: cause}
		s.Equal(cause, errors.Unwrap(err))
		s.True(errors.Is(err, cause))
	})

	s.Run("matches by code only", func() {
		a := &Error{Code: CodeNotFound, Message: "bag 1 not found"}
		b := &Error{Code: CodeNotFound, Message: "bag 2 not found"}
		s.True(errors.Is(a, b))
		s.False(errors.Is(a, &Error{Code: CodeAlreadyClaimed}))
		s.False(a.Is(errors.New("not_found")))
	})

	s.Run("finds inner code through the chain", func() {
		inner := &Error{Code: CodeUnauthorized, Message: "caller is an intermediary"}
		outer := fmt.Errorf("claim: %w", inner)
		s.True(errors.Is(outer, &Error{Code: CodeUnauthorized}))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("keeps the original domain code", func() {
		wrapped := Wrap(New(CodeAlreadyClaimed, "taken"), CodeInternal, "claim failed")
		var de *Error
		s.Require().True(errors.As(wrapped, &de))
		s.Equal(CodeAlreadyClaimed, de.Code)
		s.Equal("claim failed", de.Message)
	})

	s.Run("applies the given code to plain errors", func() {
		cause := errors.New("redis: nil")
		wrapped := Wrap(cause, CodeInternal, "read registry")
		s.True(HasCode(wrapped, CodeInternal))
		s.True(errors.Is(wrapped, cause))
	})
}

func (s *DomainErrorsSuite) TestHasCodeAndCodeOf() {
	s.True(HasCode(New(CodeInvalidIdentifier, "out of range"), CodeInvalidIdentifier))
	s.False(HasCode(New(CodeInvalidIdentifier, "out of range"), CodeNotFound))
	s.False(HasCode(errors.New("plain"), CodeNotFound))
	s.False(HasCode(nil, CodeNotFound))

	s.Equal(CodeUnavailable, CodeOf(fmt.Errorf("ctx: %w", New(CodeUnavailable, "paused"))))
	s.Equal(CodeInternal, CodeOf(errors.New("plain")))
}
