package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"loot/internal/bag/models"
	"loot/internal/platform/kv"
	"loot/internal/platform/kv/memory"
	"loot/internal/sentinel"
	"loot/pkg/domain"
)

type StoreSuite struct {
	suite.Suite
	kv       *memory.Store
	registry *ClaimRegistry
	records  *RecordStore
	state    *StateStore
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.kv = memory.New()
	s.registry = NewClaimRegistry()
	s.records = NewRecordStore()
	s.state = NewStateStore()
}

func (s *StoreSuite) newRecord(id domain.TokenID, cred uint64) *models.Record {
	rec, err := models.NewRecord(id, domain.Address{19: 0x01}, domain.CredentialFromUint64(cred), models.ChannelPublic, time.Now())
	s.Require().NoError(err)
	return rec
}

func (s *StoreSuite) TestClaimRegistry() {
	ctx := context.Background()

	s.Run("unclaimed identifiers are not taken", func() {
		err := s.kv.View(ctx, func(ctx context.Context, r kv.Reader) error {
			taken, err := s.registry.IsTaken(ctx, r, 5)
			s.Require().NoError(err)
			s.False(taken)
			return nil
		})
		s.Require().NoError(err)
	})

	s.Run("mark taken is visible after commit", func() {
		s.Require().NoError(s.kv.RunInTx(ctx, func(ctx context.Context, tx kv.Tx) error {
			return s.registry.MarkTaken(ctx, tx, 5)
		}))
		s.Require().NoError(s.kv.View(ctx, func(ctx context.Context, r kv.Reader) error {
			taken, err := s.registry.IsTaken(ctx, r, 5)
			s.Require().NoError(err)
			s.True(taken)
			return nil
		}))
		s.Equal(1, s.kv.Len(PartitionClaims))
	})
}

func (s *StoreSuite) TestRecordStore() {
	ctx := context.Background()

	s.Run("missing record is not found", func() {
		err := s.kv.View(ctx, func(ctx context.Context, r kv.Reader) error {
			_, err := s.records.Get(ctx, r, 9)
			return err
		})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("put then get", func() {
		rec := s.newRecord(9, 42)
		s.Require().NoError(s.kv.RunInTx(ctx, func(ctx context.Context, tx kv.Tx) error {
			return s.records.Put(ctx, tx, rec)
		}))

		var got *models.Record
		s.Require().NoError(s.kv.View(ctx, func(ctx context.Context, r kv.Reader) error {
			var err error
			got, err = s.records.Get(ctx, r, 9)
			return err
		}))
		s.Equal("Loot #9", got.Name)
		s.True(got.Credential.Equal(rec.Credential))
		s.Equal(rec.Owner, got.Owner)
	})

	s.Run("put refuses to overwrite", func() {
		err := s.kv.RunInTx(ctx, func(ctx context.Context, tx kv.Tx) error {
			return s.records.Put(ctx, tx, s.newRecord(9, 7))
		})
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)

		s.Require().NoError(s.kv.View(ctx, func(ctx context.Context, r kv.Reader) error {
			got, err := s.records.Get(ctx, r, 9)
			s.Require().NoError(err)
			s.Equal("42", got.Credential.String())
			return nil
		}))
	})
}

func (s *StoreSuite) TestStateStore() {
	ctx := context.Background()

	s.Require().NoError(s.kv.View(ctx, func(ctx context.Context, r kv.Reader) error {
		st, err := s.state.Get(ctx, r)
		s.Require().NoError(err)
		s.False(st.Paused)
		return nil
	}))

	admin := domain.Address{19: 0xad}
	s.Require().NoError(s.kv.RunInTx(ctx, func(ctx context.Context, tx kv.Tx) error {
		return s.state.Put(ctx, tx, models.State{Paused: true, UpdatedAt: time.Now(), UpdatedBy: admin})
	}))

	s.Require().NoError(s.kv.View(ctx, func(ctx context.Context, r kv.Reader) error {
		st, err := s.state.Get(ctx, r)
		s.Require().NoError(err)
		s.True(st.Paused)
		s.Equal(admin, st.UpdatedBy)
		return nil
	}))
}

type brokenReader struct{}

func (brokenReader) Get(context.Context, string, string) ([]byte, error) {
	return nil, errors.New("connection reset")
}

func TestInfrastructureErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()

	_, err := NewClaimRegistry().IsTaken(ctx, brokenReader{}, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, sentinel.ErrNotFound)
	assert.Contains(t, err.Error(), "read claim 1")

	_, err = NewRecordStore().Get(ctx, brokenReader{}, 1)
	assert.ErrorContains(t, err, "read bag 1")

	_, err = NewStateStore().Get(ctx, brokenReader{})
	assert.ErrorContains(t, err, "read state")
}
