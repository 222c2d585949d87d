package service

import (
	"context"

	"loot/internal/audit"
	"loot/internal/bag/models"
	"loot/internal/caller"
	"loot/internal/platform/kv"
	"loot/internal/platform/tracer"
	dErrors "loot/pkg/domain-errors"
	"loot/pkg/requestcontext"
)

// Pause stops both claim channels until Resume. Administrator only.
func (s *Service) Pause(ctx context.Context, p caller.Principal) (models.State, error) {
	return s.setPaused(ctx, p, true)
}

// Resume re-opens issuance. Administrator only.
func (s *Service) Resume(ctx context.Context, p caller.Principal) (models.State, error) {
	return s.setPaused(ctx, p, false)
}

// State returns the current issuance state.
func (s *Service) State(ctx context.Context) (models.State, error) {
	var st models.State
	err := s.kv.View(ctx, func(ctx context.Context, r kv.Reader) error {
		var err error
		st, err = s.state.Get(ctx, r)
		return err
	})
	if err != nil {
		return models.State{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read issuance state")
	}
	return st, nil
}

// SyncState reads the persisted state and aligns the paused gauge with it.
// Call it once at startup, since a durable store can come back paused.
func (s *Service) SyncState(ctx context.Context) (models.State, error) {
	st, err := s.State(ctx)
	if err != nil {
		return models.State{}, err
	}
	if s.metrics != nil {
		s.metrics.SetPaused(st.Paused)
	}
	return st, nil
}

func (s *Service) setPaused(ctx context.Context, p caller.Principal, paused bool) (st models.State, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanBagState, tracer.Bool("paused", paused))
	defer func() { span.End(err) }()

	if !s.isAdmin(p) {
		return models.State{}, dErrors.New(dErrors.CodeUnauthorized, "issuance state changes require the administrator")
	}

	st = models.State{
		Paused:    paused,
		UpdatedAt: requestcontext.Now(ctx).UTC(),
		UpdatedBy: p.Address,
	}
	err = s.kv.RunInTx(ctx, func(ctx context.Context, tx kv.Tx) error {
		return s.state.Put(ctx, tx, st)
	})
	if err != nil {
		return models.State{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update issuance state")
	}

	if s.metrics != nil {
		s.metrics.SetPaused(paused)
	}
	action := audit.ActionIssuanceResumed
	if paused {
		action = audit.ActionIssuancePaused
	}
	s.logger.InfoContext(ctx, "issuance state changed",
		"paused", paused,
		"by", p.Address.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		Action:    string(action),
		Caller:    p.Address.String(),
		Decision:  audit.DecisionApplied,
		RequestID: requestcontext.RequestID(ctx),
	})
	return st, nil
}
