// Package credential supplies the per-bag credential drawn at issuance.
//
// The service calls a Source exactly once per issuance that passed every
// precondition. Values must be unpredictable before the issuance commits and
// must not depend on the token identifier.
package credential

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync"

	"loot/pkg/domain"
)

// ErrExhausted is returned by Sequence once every preset value was used.
var ErrExhausted = errors.New("credential sequence exhausted")

// Source produces fresh credentials.
type Source interface {
	Next(ctx context.Context) (domain.Credential, error)
}

// CryptoSource draws uniform 256-bit credentials from a cryptographic reader.
type CryptoSource struct {
	reader io.Reader
}

// NewCryptoSource reads from crypto/rand unless r is non-nil.
func NewCryptoSource(r io.Reader) *CryptoSource {
	if r == nil {
		r = rand.Reader
	}
	return &CryptoSource{reader: r}
}

func (s *CryptoSource) Next(ctx context.Context) (domain.Credential, error) {
	if err := ctx.Err(); err != nil {
		return domain.Credential{}, err
	}
	var buf [domain.CredentialBits / 8]byte
	if _, err := io.ReadFull(s.reader, buf[:]); err != nil {
		return domain.Credential{}, fmt.Errorf("draw credential: %w", err)
	}
	return domain.NewCredential(new(big.Int).SetBytes(buf[:]))
}

// Sequence returns preset credentials in order. It is deterministic and
// meant for tests and local tooling.
type Sequence struct {
	mu     sync.Mutex
	values []domain.Credential
	next   int
}

// NewSequence creates a Sequence over values.
func NewSequence(values ...domain.Credential) *Sequence {
	return &Sequence{values: append([]domain.Credential(nil), values...)}
}

// NewUint64Sequence is a convenience for small literal credentials.
func NewUint64Sequence(values ...uint64) *Sequence {
	creds := make([]domain.Credential, len(values))
	for i, v := range values {
		creds[i] = domain.CredentialFromUint64(v)
	}
	return &Sequence{values: creds}
}

func (s *Sequence) Next(ctx context.Context) (domain.Credential, error) {
	if err := ctx.Err(); err != nil {
		return domain.Credential{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.values) {
		return domain.Credential{}, ErrExhausted
	}
	v := s.values[s.next]
	s.next++
	return v, nil
}

// Drawn reports how many values were handed out.
func (s *Sequence) Drawn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

var (
	_ Source = (*CryptoSource)(nil)
	_ Source = (*Sequence)(nil)
)
