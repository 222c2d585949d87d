package testutil

import (
	"time"

	"loot/internal/bag/models"
	"loot/pkg/domain"
)

// TestAddresses provides fixed addresses for tests.
var TestAddresses = struct {
	Admin     domain.Address
	Recipient domain.Address
	Alice     domain.Address
	Bob       domain.Address
}{
	Admin:     domain.Address{19: 0xad},
	Recipient: domain.Address{19: 0xee},
	Alice:     domain.Address{19: 0xa1},
	Bob:       domain.Address{19: 0xb0},
}

// AddressN returns a distinct non-zero address for index n.
func AddressN(n int) domain.Address {
	var a domain.Address
	a[0] = 0x10
	a[16] = byte(n >> 24)
	a[17] = byte(n >> 16)
	a[18] = byte(n >> 8)
	a[19] = byte(n)
	return a
}

// RecordBuilder provides a fluent interface for building test records.
type RecordBuilder struct {
	record *models.Record
}

// NewRecord starts a public-channel record for id owned by Alice with credential 42.
func NewRecord(id domain.TokenID) *RecordBuilder {
	return &RecordBuilder{
		record: &models.Record{
			TokenID:    id,
			Owner:      TestAddresses.Alice,
			Credential: domain.CredentialFromUint64(42),
			Name:       models.Name(id),
			Channel:    models.ChannelPublic,
			ClaimedAt:  time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func (b *RecordBuilder) WithOwner(owner domain.Address) *RecordBuilder {
	b.record.Owner = owner
	return b
}

func (b *RecordBuilder) WithCredential(v uint64) *RecordBuilder {
	b.record.Credential = domain.CredentialFromUint64(v)
	return b
}

func (b *RecordBuilder) WithChannel(c models.Channel) *RecordBuilder {
	b.record.Channel = c
	return b
}

func (b *RecordBuilder) Build() *models.Record {
	r := *b.record
	return &r
}
