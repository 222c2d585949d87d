package caller

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"loot/pkg/domain"
	dErrors "loot/pkg/domain-errors"
	"loot/pkg/requestcontext"
)

// ActorClaim is the RFC 8693 "act" claim naming an intermediary.
type ActorClaim struct {
	Subject string `json:"sub"`
}

// Claims are the JWT claims of a caller token. Subject is the caller address.
type Claims struct {
	Act *ActorClaim `json:"act,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 caller tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

func NewTokenService(signingKey, issuer string, tokenTTL time.Duration) *TokenService {
	return &TokenService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

// Issue signs a token for p. A non-empty p.Actor is carried as the act claim.
func (s *TokenService) Issue(ctx context.Context, p Principal) (string, error) {
	if p.Address.IsZero() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "caller address required")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	now := requestcontext.Now(ctx)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Address.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			ID:        hex.EncodeToString(b),
		},
	}
	if p.Actor != "" {
		claims.Act = &ActorClaim{Subject: p.Actor}
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// Validate checks signature, algorithm, expiry and issuer, then returns the
// principal the token names.
func (s *TokenService) Validate(tokenString string) (Principal, error) {
	if tokenString == "" {
		return Principal{}, dErrors.New(dErrors.CodeUnauthorized, "empty token")
	}

	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return Principal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return Principal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	addr, err := domain.ParseAddress(claims.Subject)
	if err != nil {
		return Principal{}, dErrors.New(dErrors.CodeUnauthorized, "token subject is not an address")
	}

	p := Principal{Address: addr}
	if claims.Act != nil {
		p.Actor = claims.Act.Subject
		if p.Actor == "" {
			// An act claim without a subject still marks a relayed call.
			p.Actor = "unknown"
		}
	}
	return p, nil
}
