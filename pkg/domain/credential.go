package domain

import (
	"math/big"

	dErrors "loot/pkg/domain-errors"
)

// CredentialBits bounds the size of a credential.
const CredentialBits = 256

// Credential is the unpredictable value drawn at issuance that seeds trait
// derivation. It is immutable: accessors hand out copies.
type Credential struct {
	n *big.Int
}

// NewCredential copies n into a credential. n must be non-negative and fit in 256 bits.
func NewCredential(n *big.Int) (Credential, error) {
	if n == nil {
		return Credential{}, dErrors.New(dErrors.CodeInvalidInput, "credential cannot be nil")
	}
	if n.Sign() < 0 {
		return Credential{}, dErrors.New(dErrors.CodeInvalidInput, "credential cannot be negative")
	}
	if n.BitLen() > CredentialBits {
		return Credential{}, dErrors.New(dErrors.CodeInvalidInput, "credential exceeds 256 bits")
	}
	return Credential{n: new(big.Int).Set(n)}, nil
}

// CredentialFromUint64 builds a credential from a small value.
func CredentialFromUint64(v uint64) Credential {
	return Credential{n: new(big.Int).SetUint64(v)}
}

// ParseCredential parses the decimal form of a credential.
func ParseCredential(s string) (Credential, error) {
	if s == "" {
		return Credential{}, dErrors.New(dErrors.CodeInvalidInput, "credential cannot be empty")
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Credential{}, dErrors.New(dErrors.CodeInvalidInput, "invalid credential format")
	}
	return NewCredential(n)
}

// Big returns a copy of the credential value.
func (c Credential) Big() *big.Int {
	if c.n == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(c.n)
}

func (c Credential) String() string {
	if c.n == nil {
		return "0"
	}
	return c.n.String()
}

func (c Credential) IsZero() bool { return c.n == nil || c.n.Sign() == 0 }

func (c Credential) Equal(other Credential) bool {
	return c.Big().Cmp(other.Big()) == 0
}

// MarshalText encodes the credential as a decimal string so JSON keeps full precision.
func (c Credential) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a decimal credential.
func (c *Credential) UnmarshalText(text []byte) error {
	parsed, err := ParseCredential(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
