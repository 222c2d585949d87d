package service

import (
	"context"
	"errors"
	"log/slog"

	"loot/internal/audit"
	"loot/internal/bag/metrics"
	"loot/internal/bag/models"
	"loot/internal/bag/pluck"
	"loot/internal/bag/store"
	"loot/internal/platform/kv"
	"loot/internal/platform/tracer"
	"loot/pkg/domain"
)

// CredentialSource draws the credential assigned at issuance.
type CredentialSource interface {
	Next(ctx context.Context) (domain.Credential, error)
}

// ClaimRegistry tracks Unclaimed -> Taken transitions.
// Error Contract:
// - IsTaken returns (false, nil) for unclaimed identifiers
// - Other failures are wrapped infrastructure errors
type ClaimRegistry interface {
	IsTaken(ctx context.Context, r kv.Reader, id domain.TokenID) (bool, error)
	MarkTaken(ctx context.Context, tx kv.Tx, id domain.TokenID) error
}

// RecordStore persists issued bags.
// Error Contract:
// - Get returns sentinel.ErrNotFound when no record exists
// - Put returns sentinel.ErrAlreadyUsed when a record exists
type RecordStore interface {
	Get(ctx context.Context, r kv.Reader, id domain.TokenID) (*models.Record, error)
	Put(ctx context.Context, tx kv.Tx, rec *models.Record) error
}

// StateStore persists the pause flag.
type StateStore interface {
	Get(ctx context.Context, r kv.Reader) (models.State, error)
	Put(ctx context.Context, tx kv.Tx, st models.State) error
}

// AuditPublisher records issuance events after commit.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Config names the administrative principal.
type Config struct {
	// Admin is the only principal allowed on the reserved channel and to
	// pause issuance.
	Admin domain.Address
	// Recipient owns reserved-channel bags. Defaults to Admin.
	Recipient domain.Address
}

type Option func(*Service)

// Service issues bags and answers queries about them. Issuance runs the
// registry check, credential draw, record write and registry mark inside
// one kv transaction, so a failed precondition leaves no trace.
type Service struct {
	kv          kv.Store
	credentials CredentialSource
	deriver     *pluck.Deriver
	registry    ClaimRegistry
	records     RecordStore
	state       StateStore
	auditor     AuditPublisher
	metrics     *metrics.Metrics
	tracer      tracer.Tracer
	logger      *slog.Logger
	admin       domain.Address
	recipient   domain.Address
}

func New(store kv.Store, credentials CredentialSource, deriver *pluck.Deriver, cfg Config, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("kv store is required")
	}
	if credentials == nil {
		return nil, errors.New("credential source is required")
	}
	if cfg.Admin.IsZero() {
		return nil, errors.New("admin address is required")
	}
	if deriver == nil {
		deriver = pluck.New(nil, pluck.SchemeSHA256)
	}
	if cfg.Recipient.IsZero() {
		cfg.Recipient = cfg.Admin
	}

	svc := &Service{
		kv:          store,
		credentials: credentials,
		deriver:     deriver,
		registry:    storeDefaults.registry,
		records:     storeDefaults.records,
		state:       storeDefaults.state,
		tracer:      tracer.NewNoop(),
		logger:      slog.New(slog.DiscardHandler),
		admin:       cfg.Admin,
		recipient:   cfg.Recipient,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

var storeDefaults = struct {
	registry ClaimRegistry
	records  RecordStore
	state    StateStore
}{
	registry: store.NewClaimRegistry(),
	records:  store.NewRecordStore(),
	state:    store.NewStateStore(),
}

// WithLogger sets the logger instance for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer replaces the no-op tracer.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithAuditPublisher enables audit events.
func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

// WithClaimRegistry overrides the kv-backed registry.
func WithClaimRegistry(r ClaimRegistry) Option {
	return func(s *Service) {
		s.registry = r
	}
}

// WithRecordStore overrides the kv-backed record store.
func WithRecordStore(r RecordStore) Option {
	return func(s *Service) {
		s.records = r
	}
}

// WithStateStore overrides the kv-backed state store.
func WithStateStore(st StateStore) Option {
	return func(s *Service) {
		s.state = st
	}
}

// Admin returns the administrative address.
func (s *Service) Admin() domain.Address {
	return s.admin
}

// Meta returns static collection metadata.
func (s *Service) Meta() models.Meta {
	return models.CollectionMeta()
}
