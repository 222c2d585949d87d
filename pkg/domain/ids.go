// Package domain provides the value types shared across the bag context:
// token identifiers, owner addresses and credentials.
package domain

import (
	"encoding/hex"
	"strconv"
	"strings"

	dErrors "loot/pkg/domain-errors"
)

// TokenID is the externally visible bag identifier chosen by the claimer.
type TokenID uint64

// AddressLength is the byte length of an owner address (160 bits).
const AddressLength = 20

// Address is an opaque 160-bit owner address.
type Address [AddressLength]byte

// Parse functions - use at trust boundaries (handlers, API inputs).

// ParseTokenID parses the decimal form of a token identifier.
func ParseTokenID(s string) (TokenID, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidIdentifier, "token ID cannot be empty")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidIdentifier, "invalid token ID format")
	}
	return TokenID(n), nil
}

// ParseAddress parses a hex address with or without the 0x prefix.
func ParseAddress(s string) (Address, error) {
	var a Address
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if trimmed == "" {
		return a, dErrors.New(dErrors.CodeInvalidInput, "address cannot be empty")
	}
	if len(trimmed) != AddressLength*2 {
		return a, dErrors.New(dErrors.CodeInvalidInput, "address must be 20 bytes")
	}
	if _, err := hex.Decode(a[:], []byte(trimmed)); err != nil {
		return Address{}, dErrors.New(dErrors.CodeInvalidInput, "invalid address format")
	}
	return a, nil
}

// String methods - for keys, logging and display.

func (id TokenID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (a Address) String() string  { return "0x" + hex.EncodeToString(a[:]) }

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool { return a == Address{} }

// MarshalText encodes the address in its 0x-prefixed hex form.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes a hex address.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
