// Package store maps bag state onto kv partitions.
//
// Error Contract:
//   - Get methods return sentinel.ErrNotFound (wrapped) for absent entries
//   - RecordStore.Put returns sentinel.ErrAlreadyUsed when a record exists
//   - Infrastructure failures are wrapped with context
//
// Every method works against the kv.Reader or kv.Tx it is handed, so callers
// decide the transaction boundary.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"loot/internal/bag/models"
	"loot/internal/platform/kv"
	"loot/internal/sentinel"
	"loot/pkg/domain"
)

// Partition names.
const (
	PartitionClaims = "claims"
	PartitionBags   = "bags"
	PartitionState  = "state"
)

const (
	takenMarker = "taken"
	stateKey    = "state"
)

// ClaimRegistry records which identifiers are Taken. Unclaimed identifiers
// have no entry; there is no transition back.
type ClaimRegistry struct{}

func NewClaimRegistry() *ClaimRegistry {
	return &ClaimRegistry{}
}

// IsTaken reports whether id has been issued.
func (ClaimRegistry) IsTaken(ctx context.Context, r kv.Reader, id domain.TokenID) (bool, error) {
	_, err := r.Get(ctx, PartitionClaims, id.String())
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("read claim %s: %w", id, err)
	}
}

// MarkTaken moves id to Taken.
func (ClaimRegistry) MarkTaken(ctx context.Context, tx kv.Tx, id domain.TokenID) error {
	if err := tx.Put(ctx, PartitionClaims, id.String(), []byte(takenMarker)); err != nil {
		return fmt.Errorf("mark claim %s: %w", id, err)
	}
	return nil
}

// RecordStore persists one Record per issued identifier.
type RecordStore struct{}

func NewRecordStore() *RecordStore {
	return &RecordStore{}
}

// Get loads the record for id.
func (RecordStore) Get(ctx context.Context, r kv.Reader, id domain.TokenID) (*models.Record, error) {
	raw, err := r.Get(ctx, PartitionBags, id.String())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, fmt.Errorf("bag %s: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("read bag %s: %w", id, err)
	}
	var rec models.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode bag %s: %w", id, err)
	}
	return &rec, nil
}

// Put writes a new record. Records are immutable once written.
func (s RecordStore) Put(ctx context.Context, tx kv.Tx, rec *models.Record) error {
	key := rec.TokenID.String()
	if _, err := tx.Get(ctx, PartitionBags, key); err == nil {
		return fmt.Errorf("bag %s: %w", key, sentinel.ErrAlreadyUsed)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return fmt.Errorf("read bag %s: %w", key, err)
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode bag %s: %w", key, err)
	}
	if err := tx.Put(ctx, PartitionBags, key, raw); err != nil {
		return fmt.Errorf("write bag %s: %w", key, err)
	}
	return nil
}

// StateStore persists the service-wide issuance state.
type StateStore struct{}

func NewStateStore() *StateStore {
	return &StateStore{}
}

// Get returns the stored state, or the zero state when none was written.
func (StateStore) Get(ctx context.Context, r kv.Reader) (models.State, error) {
	raw, err := r.Get(ctx, PartitionState, stateKey)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.State{}, nil
	}
	if err != nil {
		return models.State{}, fmt.Errorf("read state: %w", err)
	}
	var st models.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return models.State{}, fmt.Errorf("decode state: %w", err)
	}
	return st, nil
}

// Put replaces the stored state.
func (StateStore) Put(ctx context.Context, tx kv.Tx, st models.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := tx.Put(ctx, PartitionState, stateKey, raw); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
