package models

import (
	"time"

	"loot/pkg/domain"
	dErrors "loot/pkg/domain-errors"
)

// Identifier ranges. The public channel accepts PublicMin..PublicMax and the
// reserved channel ReservedMin..ReservedMax. The ranges are disjoint and
// together cover every issuable identifier.
const (
	PublicMin   domain.TokenID = 1
	PublicMax   domain.TokenID = 7777
	ReservedMin domain.TokenID = 7778
	ReservedMax domain.TokenID = 8000
)

// Collection identity reported by the metadata endpoint.
const (
	Symbol    = "LootForNeo"
	SourceURL = "https://github.com/Liaojinghui/Loot"
)

// NamePrefix precedes the decimal identifier in a bag's stored name.
const NamePrefix = "Loot #"

// Channel names the issuance path a bag was claimed through.
type Channel string

const (
	ChannelPublic   Channel = "public"
	ChannelReserved Channel = "reserved"
)

// Accepts reports whether id lies in the channel's identifier range.
func (c Channel) Accepts(id domain.TokenID) bool {
	switch c {
	case ChannelPublic:
		return id >= PublicMin && id <= PublicMax
	case ChannelReserved:
		return id >= ReservedMin && id <= ReservedMax
	default:
		return false
	}
}

// IsValid checks if the channel is one of the supported enum values.
func (c Channel) IsValid() bool {
	return c == ChannelPublic || c == ChannelReserved
}

// Record is the persisted bag. It is written exactly once, at issuance,
// and never modified afterwards.
type Record struct {
	TokenID    domain.TokenID    `json:"token_id"`
	Owner      domain.Address    `json:"owner"`
	Credential domain.Credential `json:"credential"`
	Name       string            `json:"name"`
	Channel    Channel           `json:"channel"`
	ClaimedAt  time.Time         `json:"claimed_at"`
}

// NewRecord creates a Record with domain invariant checks.
func NewRecord(id domain.TokenID, owner domain.Address, credential domain.Credential, channel Channel, claimedAt time.Time) (*Record, error) {
	if !channel.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid issuance channel")
	}
	if !channel.Accepts(id) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "token ID outside channel range")
	}
	if owner.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "owner required")
	}
	if claimedAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "claim time required")
	}
	return &Record{
		TokenID:    id,
		Owner:      owner,
		Credential: credential,
		Name:       Name(id),
		Channel:    channel,
		ClaimedAt:  claimedAt.UTC(),
	}, nil
}

// Name returns the stored display name for a bag.
func Name(id domain.TokenID) string {
	return NamePrefix + id.String()
}

// Properties is the public projection of a Record.
type Properties struct {
	Name       string            `json:"name"`
	Owner      domain.Address    `json:"owner"`
	TokenID    domain.TokenID    `json:"tokenID"`
	Credential domain.Credential `json:"credential"`
}

// Properties projects the record onto its public fields.
func (r *Record) Properties() Properties {
	return Properties{
		Name:       r.Name,
		Owner:      r.Owner,
		TokenID:    r.TokenID,
		Credential: r.Credential,
	}
}

// State holds service-wide issuance state.
type State struct {
	Paused    bool           `json:"paused"`
	UpdatedAt time.Time      `json:"updated_at,omitzero"`
	UpdatedBy domain.Address `json:"updated_by,omitzero"`
}

// Meta describes the collection.
type Meta struct {
	Symbol        string     `json:"symbol"`
	Description   string     `json:"description"`
	SourceURL     string     `json:"source_url"`
	PublicRange   [2]uint64  `json:"public_range"`
	ReservedRange [2]uint64  `json:"reserved_range"`
	Categories    []Category `json:"categories"`
}

// CollectionMeta returns the static collection metadata.
func CollectionMeta() Meta {
	return Meta{
		Symbol:        Symbol,
		Description:   "A text item collection: eight randomized equipment slots per bag.",
		SourceURL:     SourceURL,
		PublicRange:   [2]uint64{uint64(PublicMin), uint64(PublicMax)},
		ReservedRange: [2]uint64{uint64(ReservedMin), uint64(ReservedMax)},
		Categories:    append([]Category(nil), Categories...),
	}
}
