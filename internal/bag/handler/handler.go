// Package handler exposes the bag service over HTTP/JSON.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"loot/internal/bag/models"
	"loot/internal/caller"
	"loot/pkg/domain"
	dErrors "loot/pkg/domain-errors"
	"loot/pkg/platform/httputil"
	"loot/pkg/requestcontext"
)

// Service defines the bag operations the HTTP layer calls.
type Service interface {
	Claim(ctx context.Context, id domain.TokenID, p caller.Principal) (*models.Record, error)
	OwnerClaim(ctx context.Context, id domain.TokenID, p caller.Principal) (*models.Record, error)
	Pause(ctx context.Context, p caller.Principal) (models.State, error)
	Resume(ctx context.Context, p caller.Principal) (models.State, error)
	State(ctx context.Context) (models.State, error)
	Properties(ctx context.Context, id domain.TokenID) (models.Properties, error)
	Credential(ctx context.Context, id domain.TokenID) (domain.Credential, error)
	Trait(ctx context.Context, id domain.TokenID, category models.Category) (string, error)
	Traits(ctx context.Context, id domain.TokenID) (models.Traits, error)
	TokenURI(ctx context.Context, id domain.TokenID) (string, error)
	TraitForCredential(ctx context.Context, credential domain.Credential, category models.Category) (string, error)
	TraitsForCredential(ctx context.Context, credential domain.Credential) (models.Traits, error)
	Meta() models.Meta
}

// Handler handles bag endpoints.
type Handler struct {
	bags   Service
	logger *slog.Logger
}

// New creates a new bag Handler.
func New(bags Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{bags: bags, logger: logger}
}

// Register mounts the read-only routes. They need no caller.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/meta", h.HandleMeta)
	r.Get("/v1/state", h.HandleState)
	r.Get("/v1/bags/{id}", h.HandleProperties)
	r.Get("/v1/bags/{id}/credential", h.HandleCredential)
	r.Get("/v1/bags/{id}/traits", h.HandleTraits)
	r.Get("/v1/bags/{id}/traits/{category}", h.HandleTrait)
	r.Get("/v1/bags/{id}/token-uri", h.HandleTokenURI)
	r.Get("/v1/credentials/{credential}/traits", h.HandleCredentialTraits)
	r.Get("/v1/credentials/{credential}/traits/{category}", h.HandleCredentialTrait)
}

// RegisterClaims mounts the public claim route. Callers must be authenticated.
func (h *Handler) RegisterClaims(r chi.Router) {
	r.Post("/v1/bags/{id}/claim", h.HandleClaim)
}

// RegisterAdmin mounts the administrator routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/v1/admin/bags/{id}/claim", h.HandleOwnerClaim)
	r.Post("/v1/admin/pause", h.HandlePause)
	r.Post("/v1/admin/resume", h.HandleResume)
}

func (h *Handler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	h.claim(w, r, h.bags.Claim)
}

func (h *Handler) HandleOwnerClaim(w http.ResponseWriter, r *http.Request) {
	h.claim(w, r, h.bags.OwnerClaim)
}

func (h *Handler) claim(w http.ResponseWriter, r *http.Request, issue func(context.Context, domain.TokenID, caller.Principal) (*models.Record, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	p, ok := caller.FromContext(ctx)
	if !ok {
		h.logger.WarnContext(ctx, "claim without caller", "request_id", requestID)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authenticated caller required"))
		return
	}

	id, err := parseBagPath(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid claim request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	rec, err := issue(ctx, id, p)
	if err != nil {
		h.logError(ctx, "claim failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toClaimResponse(rec))
}

func (h *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	h.setState(w, r, h.bags.Pause)
}

func (h *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	h.setState(w, r, h.bags.Resume)
}

func (h *Handler) setState(w http.ResponseWriter, r *http.Request, apply func(context.Context, caller.Principal) (models.State, error)) {
	ctx := r.Context()
	p, ok := caller.FromContext(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authenticated caller required"))
		return
	}
	st, err := apply(ctx, p)
	if err != nil {
		h.logError(ctx, "issuance state change failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	st, err := h.bags.State(r.Context())
	if err != nil {
		h.logError(r.Context(), "failed to read issuance state", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) HandleMeta(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.bags.Meta())
}

func (h *Handler) HandleProperties(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bagID(w, r)
	if !ok {
		return
	}
	props, err := h.bags.Properties(r.Context(), id)
	if err != nil {
		h.logError(r.Context(), "properties lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, props)
}

func (h *Handler) HandleCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bagID(w, r)
	if !ok {
		return
	}
	cred, err := h.bags.Credential(r.Context(), id)
	if err != nil {
		h.logError(r.Context(), "credential lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CredentialResponse{TokenID: id, Credential: cred})
}

func (h *Handler) HandleTraits(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bagID(w, r)
	if !ok {
		return
	}
	traits, err := h.bags.Traits(r.Context(), id)
	if err != nil {
		h.logError(r.Context(), "traits lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TraitsResponse{TokenID: &id, Traits: traits})
}

func (h *Handler) HandleTrait(w http.ResponseWriter, r *http.Request) {
	req := bagPath{ID: chi.URLParam(r, "id"), Category: chi.URLParam(r, "category")}
	id, category, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	value, err := h.bags.Trait(r.Context(), id, category)
	if err != nil {
		h.logError(r.Context(), "trait lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.Trait{Category: category, Value: value})
}

func (h *Handler) HandleTokenURI(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bagID(w, r)
	if !ok {
		return
	}
	uri, err := h.bags.TokenURI(r.Context(), id)
	if err != nil {
		h.logError(r.Context(), "token URI render failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TokenURIResponse{TokenID: id, TokenURI: uri})
}

func (h *Handler) HandleCredentialTraits(w http.ResponseWriter, r *http.Request) {
	req := credentialPath{Credential: chi.URLParam(r, "credential")}
	cred, _, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	traits, err := h.bags.TraitsForCredential(r.Context(), cred)
	if err != nil {
		h.logError(r.Context(), "credential traits derivation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TraitsResponse{Credential: &cred, Traits: traits})
}

func (h *Handler) HandleCredentialTrait(w http.ResponseWriter, r *http.Request) {
	req := credentialPath{Credential: chi.URLParam(r, "credential"), Category: chi.URLParam(r, "category")}
	cred, category, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	value, err := h.bags.TraitForCredential(r.Context(), cred, category)
	if err != nil {
		h.logError(r.Context(), "credential trait derivation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.Trait{Category: category, Value: value})
}

func (h *Handler) bagID(w http.ResponseWriter, r *http.Request) (domain.TokenID, bool) {
	id, err := parseBagPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return id, true
}

// logError logs unexpected failures at error level and expected rejections
// at debug, so NotFound lookups do not flood the log.
func (h *Handler) logError(ctx context.Context, msg string, err error) {
	level := slog.LevelDebug
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}
