package service

import (
	"context"
	"errors"
	"fmt"

	"loot/internal/bag/models"
	"loot/internal/bag/render"
	"loot/internal/platform/kv"
	"loot/internal/platform/tracer"
	"loot/internal/sentinel"
	"loot/pkg/domain"
	dErrors "loot/pkg/domain-errors"
)

// Record returns the stored bag. Unclaimed identifiers are NotFound.
func (s *Service) Record(ctx context.Context, id domain.TokenID) (*models.Record, error) {
	return s.lookup(ctx, "record", id)
}

// Credential returns the credential assigned to id at issuance.
func (s *Service) Credential(ctx context.Context, id domain.TokenID) (domain.Credential, error) {
	rec, err := s.lookup(ctx, "credential", id)
	if err != nil {
		return domain.Credential{}, err
	}
	return rec.Credential, nil
}

// Properties returns {name, owner, tokenID, credential} for id.
func (s *Service) Properties(ctx context.Context, id domain.TokenID) (models.Properties, error) {
	rec, err := s.lookup(ctx, "properties", id)
	if err != nil {
		return models.Properties{}, err
	}
	return rec.Properties(), nil
}

// Trait derives one category's trait for an issued bag.
func (s *Service) Trait(ctx context.Context, id domain.TokenID, category models.Category) (string, error) {
	rec, err := s.lookup(ctx, "trait", id)
	if err != nil {
		return "", err
	}
	return s.TraitForCredential(ctx, rec.Credential, category)
}

// Traits derives all eight traits for an issued bag.
func (s *Service) Traits(ctx context.Context, id domain.TokenID) (models.Traits, error) {
	rec, err := s.lookup(ctx, "traits", id)
	if err != nil {
		return nil, err
	}
	return s.TraitsForCredential(ctx, rec.Credential)
}

// TokenURI renders the metadata envelope for an issued bag.
func (s *Service) TokenURI(ctx context.Context, id domain.TokenID) (string, error) {
	rec, err := s.lookup(ctx, "token_uri", id)
	if err != nil {
		return "", err
	}
	traits, err := s.TraitsForCredential(ctx, rec.Credential)
	if err != nil {
		return "", err
	}
	uri, err := render.TokenURI(rec.TokenID, traits)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to render token URI")
	}
	return uri, nil
}

// TraitForCredential derives one trait directly from a credential. It reads
// no state, so anyone can verify a displayed trait from on-record data.
func (s *Service) TraitForCredential(ctx context.Context, credential domain.Credential, category models.Category) (out string, err error) {
	_, span := s.tracer.Start(ctx, tracer.SpanBagDerive, tracer.String(tracer.AttrCategory, string(category)))
	defer func() { span.End(err) }()

	return s.deriver.Derive(credential, category)
}

// TraitsForCredential derives all eight traits directly from a credential.
func (s *Service) TraitsForCredential(ctx context.Context, credential domain.Credential) (out models.Traits, err error) {
	_, span := s.tracer.Start(ctx, tracer.SpanBagDerive, tracer.String(tracer.AttrCategory, "ALL"))
	defer func() { span.End(err) }()

	return s.deriver.DeriveAll(credential)
}

func (s *Service) lookup(ctx context.Context, operation string, id domain.TokenID) (rec *models.Record, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanBagQuery,
		tracer.Int64(tracer.AttrTokenID, int64(id)), //nolint:gosec // display only
		tracer.String(tracer.AttrOperation, operation),
	)
	defer func() { span.End(err) }()

	err = s.kv.View(ctx, func(ctx context.Context, r kv.Reader) error {
		var getErr error
		rec, getErr = s.records.Get(ctx, r, id)
		return getErr
	})
	if err == nil {
		return rec, nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		if s.metrics != nil {
			s.metrics.IncrementQueryNotFound(operation)
		}
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("bag %s not found", id))
	}
	return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read bag")
}
