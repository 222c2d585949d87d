package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loot/internal/audit"
	"loot/internal/bag/models"
	"loot/internal/caller"
	"loot/internal/platform/kv"
	"loot/internal/platform/tracer"
	"loot/internal/sentinel"
	"loot/pkg/domain"
	dErrors "loot/pkg/domain-errors"
	"loot/pkg/requestcontext"
)

// Claim issues id on the public channel to the calling principal.
// Checks, in order: identifier range, direct caller, pause state, unclaimed.
func (s *Service) Claim(ctx context.Context, id domain.TokenID, p caller.Principal) (rec *models.Record, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanBagClaim,
		tracer.Int64(tracer.AttrTokenID, int64(id)), //nolint:gosec // identifiers are bounded by range checks
		tracer.String(tracer.AttrChannel, string(models.ChannelPublic)),
	)
	defer func() { span.End(err) }()

	start := time.Now()
	defer func() { s.observeClaim(ctx, models.ChannelPublic, id, p, start, err) }()

	if !models.ChannelPublic.Accepts(id) {
		return nil, dErrors.New(dErrors.CodeInvalidIdentifier, fmt.Sprintf("token ID %s invalid: public claims accept %d-%d", id, models.PublicMin, models.PublicMax))
	}
	if p.Address.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authenticated caller required")
	}
	if !p.IsDirect() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "claims through an intermediary are not allowed")
	}

	return s.issue(ctx, span, id, models.ChannelPublic, p.Address)
}

// OwnerClaim issues id on the reserved channel to the configured recipient.
// Checks, in order: administrator, identifier range, pause state, unclaimed.
func (s *Service) OwnerClaim(ctx context.Context, id domain.TokenID, p caller.Principal) (rec *models.Record, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanBagOwnerClaim,
		tracer.Int64(tracer.AttrTokenID, int64(id)), //nolint:gosec // identifiers are bounded by range checks
		tracer.String(tracer.AttrChannel, string(models.ChannelReserved)),
	)
	defer func() { span.End(err) }()

	start := time.Now()
	defer func() { s.observeClaim(ctx, models.ChannelReserved, id, p, start, err) }()

	if !s.isAdmin(p) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "reserved claims require the administrator")
	}
	if !models.ChannelReserved.Accepts(id) {
		return nil, dErrors.New(dErrors.CodeInvalidIdentifier, fmt.Sprintf("token ID %s invalid: reserved claims accept %d-%d", id, models.ReservedMin, models.ReservedMax))
	}

	return s.issue(ctx, span, id, models.ChannelReserved, s.recipient)
}

// issue is the single check-then-write unit of work shared by both channels.
func (s *Service) issue(ctx context.Context, span tracer.Span, id domain.TokenID, channel models.Channel, owner domain.Address) (*models.Record, error) {
	var issued *models.Record
	err := s.kv.RunInTx(ctx, func(ctx context.Context, tx kv.Tx) error {
		issued = nil

		st, err := s.state.Get(ctx, tx)
		if err != nil {
			return err
		}
		if st.Paused {
			return dErrors.New(dErrors.CodeUnavailable, "issuance is paused")
		}

		taken, err := s.registry.IsTaken(ctx, tx, id)
		if err != nil {
			return err
		}
		if taken {
			return dErrors.New(dErrors.CodeAlreadyClaimed, fmt.Sprintf("token ID %s already claimed", id))
		}

		cred, err := s.credentials.Next(ctx)
		if err != nil {
			return fmt.Errorf("draw credential: %w", err)
		}
		span.AddEvent(tracer.EventCredentialDrawn)

		rec, err := models.NewRecord(id, owner, cred, channel, requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		if err := s.records.Put(ctx, tx, rec); err != nil {
			return err
		}
		if err := s.registry.MarkTaken(ctx, tx, id); err != nil {
			return err
		}
		issued = rec
		return nil
	})
	if err != nil {
		return nil, translateIssueError(err, id)
	}
	return issued, nil
}

// translateIssueError maps store sentinels and transaction failures onto
// domain codes. Domain errors raised inside the transaction pass through.
func translateIssueError(err error, id domain.TokenID) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeAlreadyClaimed, fmt.Sprintf("token ID %s already claimed", id))
	case errors.Is(err, kv.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "concurrent issuance, retry the claim")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "issuance timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue bag")
	}
}

func (s *Service) isAdmin(p caller.Principal) bool {
	return p.IsDirect() && !p.Address.IsZero() && p.Address == s.admin
}

// observeClaim logs, counts and audits one claim attempt. Credentials are
// never logged.
func (s *Service) observeClaim(ctx context.Context, channel models.Channel, id domain.TokenID, p caller.Principal, start time.Time, err error) {
	outcome := audit.DecisionIssued
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
	}
	if s.metrics != nil {
		s.metrics.IncrementClaim(string(channel), outcome)
		s.metrics.ObserveClaimLatency(string(channel), time.Since(start).Seconds())
	}

	requestID := requestcontext.RequestID(ctx)
	event := audit.Event{
		TokenID:   id.String(),
		Caller:    p.Address.String(),
		Channel:   string(channel),
		RequestID: requestID,
	}

	if err != nil {
		s.logger.WarnContext(ctx, "bag claim rejected",
			"token_id", id.String(),
			"channel", channel,
			"caller", p.Address.String(),
			"code", outcome,
			"error", err,
			"request_id", requestID,
		)
		event.Action = string(audit.ActionClaimRejected)
		event.Decision = audit.DecisionRejected
		event.Reason = outcome
	} else {
		owner := p.Address
		if channel == models.ChannelReserved {
			owner = s.recipient
		}
		s.logger.InfoContext(ctx, "bag issued",
			"token_id", id.String(),
			"channel", channel,
			"owner", owner.String(),
			"request_id", requestID,
		)
		event.Action = string(audit.ActionBagClaimed)
		event.Decision = audit.DecisionIssued
		event.Owner = owner.String()
	}

	s.emit(ctx, event)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"token_id", event.TokenID,
			"error", err,
		)
	}
}
