package handler

import (
	"time"

	"loot/internal/bag/models"
	"loot/pkg/domain"
)

// ClaimResponse is returned after a successful claim.
type ClaimResponse struct {
	TokenID    domain.TokenID    `json:"token_id"`
	Name       string            `json:"name"`
	Owner      domain.Address    `json:"owner"`
	Credential domain.Credential `json:"credential"`
	Channel    models.Channel    `json:"channel"`
	ClaimedAt  time.Time         `json:"claimed_at"`
}

func toClaimResponse(rec *models.Record) ClaimResponse {
	return ClaimResponse{
		TokenID:    rec.TokenID,
		Name:       rec.Name,
		Owner:      rec.Owner,
		Credential: rec.Credential,
		Channel:    rec.Channel,
		ClaimedAt:  rec.ClaimedAt,
	}
}

// CredentialResponse reports the credential drawn for a bag.
type CredentialResponse struct {
	TokenID    domain.TokenID    `json:"token_id"`
	Credential domain.Credential `json:"credential"`
}

// TraitsResponse lists the eight traits of a bag or of a bare credential.
type TraitsResponse struct {
	TokenID    *domain.TokenID    `json:"token_id,omitempty"`
	Credential *domain.Credential `json:"credential,omitempty"`
	Traits     models.Traits      `json:"traits"`
}

// TokenURIResponse wraps the rendered metadata URI.
type TokenURIResponse struct {
	TokenID  domain.TokenID `json:"token_id"`
	TokenURI string         `json:"token_uri"`
}
