package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"credledger/internal/ledger/address"
	"credledger/internal/ledger/models"
	"credledger/pkg/domain"
	dErrors "credledger/pkg/domain-errors"
	"credledger/pkg/platform/httputil"
	"credledger/pkg/requestcontext"
)

// Service defines the ledger operations exposed over HTTP.
// Returns domain records, not HTTP response DTOs.
type Service interface {
	Initialize(ctx context.Context, caller domain.Pubkey) (*models.ProgramConfig, error)
	InitializeIssuerRegistry(ctx context.Context, caller domain.Pubkey) (*models.IssuerRegistry, error)
	RegisterIssuer(ctx context.Context, caller, issuer domain.Pubkey) (*models.IssuerRegistry, error)
	DeregisterIssuer(ctx context.Context, caller, issuer domain.Pubkey) (*models.IssuerRegistry, error)
	InitializeIssuer(ctx context.Context, cmd models.InitializeIssuerCommand) (*models.IssuerAccount, error)
	DeactivateIssuer(ctx context.Context, caller, authority domain.Pubkey) (*models.IssuerAccount, error)
	ReactivateIssuer(ctx context.Context, caller, authority domain.Pubkey) (*models.IssuerAccount, error)
	IssueCredential(ctx context.Context, cmd models.IssueCredentialCommand) (*models.UserCredential, error)
	RevokeCredential(ctx context.Context, cmd models.RevokeCredentialCommand) (*models.UserCredential, error)

	GetConfig(ctx context.Context) (*models.ProgramConfig, error)
	GetRegistry(ctx context.Context) (*models.IssuerRegistry, error)
	GetIssuer(ctx context.Context, authority domain.Pubkey) (*models.IssuerAccount, error)
	GetCredential(ctx context.Context, issuerAuthority, holder domain.Pubkey) (*models.UserCredential, error)
	CredentialStatus(ctx context.Context, issuerAuthority, holder domain.Pubkey) (*models.CredentialStatusView, error)
}

type Handler struct {
	service Service
	deriver *address.Deriver
	logger  *slog.Logger
}

func New(service Service, deriver *address.Deriver, logger *slog.Logger) *Handler {
	return &Handler{service: service, deriver: deriver, logger: logger}
}

// Register mounts the ledger routes. Reads are public; every mutating route
// runs behind requireCaller, which establishes the signing identity.
func (h *Handler) Register(r chi.Router, requireCaller func(http.Handler) http.Handler) {
	r.Get("/v1/program/config", h.HandleGetConfig)
	r.Get("/v1/registry", h.HandleGetRegistry)
	r.Get("/v1/issuers/{authority}", h.HandleGetIssuer)
	r.Get("/v1/credentials/{issuer}/{holder}", h.HandleGetCredential)
	r.Get("/v1/credentials/{issuer}/{holder}/status", h.HandleCredentialStatus)

	r.Group(func(r chi.Router) {
		r.Use(requireCaller)
		r.Post("/v1/program/initialize", h.HandleInitialize)
		r.Post("/v1/registry/initialize", h.HandleInitializeRegistry)
		r.Post("/v1/registry/issuers", h.HandleRegisterIssuer)
		r.Delete("/v1/registry/issuers/{issuer}", h.HandleDeregisterIssuer)
		r.Post("/v1/issuers", h.HandleInitializeIssuer)
		r.Post("/v1/issuers/{authority}/deactivate", h.HandleDeactivateIssuer)
		r.Post("/v1/issuers/{authority}/reactivate", h.HandleReactivateIssuer)
		r.Post("/v1/credentials", h.HandleIssueCredential)
		r.Post("/v1/credentials/revoke", h.HandleRevokeCredential)
	})
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (domain.Pubkey, bool) {
	caller, ok := requestcontext.Caller(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "signed request required"))
		return domain.Pubkey{}, false
	}
	return caller, true
}

func pathPubkey(w http.ResponseWriter, r *http.Request, name string) (domain.Pubkey, bool) {
	pk, err := domain.ParsePubkey(chi.URLParam(r, name))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid "+name))
		return domain.Pubkey{}, false
	}
	return pk, true
}

// fail logs a failed call and writes the error. Program errors are expected
// outcomes and log at warn.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	level := slog.LevelError
	if _, ok := models.AsProgramError(err); ok {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	httputil.WriteError(w, err)
}

func (h *Handler) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	cfg, err := h.service.Initialize(r.Context(), caller)
	if err != nil {
		h.fail(w, r, "initialize failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toConfigResponse(h.deriver, cfg))
}

func (h *Handler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.GetConfig(r.Context())
	if err != nil {
		h.fail(w, r, "get config failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConfigResponse(h.deriver, cfg))
}

func (h *Handler) HandleInitializeRegistry(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	reg, err := h.service.InitializeIssuerRegistry(r.Context(), caller)
	if err != nil {
		h.fail(w, r, "initialize registry failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRegistryResponse(h.deriver, reg))
}

func (h *Handler) HandleGetRegistry(w http.ResponseWriter, r *http.Request) {
	reg, err := h.service.GetRegistry(r.Context())
	if err != nil {
		h.fail(w, r, "get registry failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRegistryResponse(h.deriver, reg))
}

// HandleRegisterIssuer adds an issuer authority to the trust set.
func (h *Handler) HandleRegisterIssuer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RegisterIssuerRequest](w, r, h.logger)
	if !ok {
		return
	}
	issuer, err := domain.ParsePubkey(req.Issuer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	reg, err := h.service.RegisterIssuer(ctx, caller, issuer)
	if err != nil {
		h.fail(w, r, "register issuer failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRegistryResponse(h.deriver, reg))
}

func (h *Handler) HandleDeregisterIssuer(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	issuer, ok := pathPubkey(w, r, "issuer")
	if !ok {
		return
	}
	reg, err := h.service.DeregisterIssuer(r.Context(), caller, issuer)
	if err != nil {
		h.fail(w, r, "deregister issuer failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRegistryResponse(h.deriver, reg))
}

// HandleInitializeIssuer creates the issuer record for the signing caller.
func (h *Handler) HandleInitializeIssuer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[InitializeIssuerRequest](w, r, h.logger)
	if !ok {
		return
	}
	cmd, err := req.ToCommand(caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	issuer, err := h.service.InitializeIssuer(ctx, cmd)
	if err != nil {
		h.fail(w, r, "initialize issuer failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toIssuerResponse(h.deriver, issuer))
}

func (h *Handler) HandleGetIssuer(w http.ResponseWriter, r *http.Request) {
	authority, ok := pathPubkey(w, r, "authority")
	if !ok {
		return
	}
	issuer, err := h.service.GetIssuer(r.Context(), authority)
	if err != nil {
		h.fail(w, r, "get issuer failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toIssuerResponse(h.deriver, issuer))
}

func (h *Handler) HandleDeactivateIssuer(w http.ResponseWriter, r *http.Request) {
	h.toggleIssuer(w, r, "deactivate issuer failed", h.service.DeactivateIssuer)
}

func (h *Handler) HandleReactivateIssuer(w http.ResponseWriter, r *http.Request) {
	h.toggleIssuer(w, r, "reactivate issuer failed", h.service.ReactivateIssuer)
}

func (h *Handler) toggleIssuer(
	w http.ResponseWriter,
	r *http.Request,
	failMsg string,
	toggle func(ctx context.Context, caller, authority domain.Pubkey) (*models.IssuerAccount, error),
) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	authority, ok := pathPubkey(w, r, "authority")
	if !ok {
		return
	}
	issuer, err := toggle(r.Context(), caller, authority)
	if err != nil {
		h.fail(w, r, failMsg, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toIssuerResponse(h.deriver, issuer))
}

func (h *Handler) HandleIssueCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[IssueCredentialRequest](w, r, h.logger)
	if !ok {
		return
	}
	cmd, err := req.ToCommand(caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cred, err := h.service.IssueCredential(ctx, cmd)
	if err != nil {
		h.fail(w, r, "issue credential failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toCredentialResponse(h.deriver, cred))
}

func (h *Handler) HandleRevokeCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RevokeCredentialRequest](w, r, h.logger)
	if !ok {
		return
	}
	cmd, err := req.ToCommand(caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cred, err := h.service.RevokeCredential(ctx, cmd)
	if err != nil {
		h.fail(w, r, "revoke credential failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCredentialResponse(h.deriver, cred))
}

func (h *Handler) HandleGetCredential(w http.ResponseWriter, r *http.Request) {
	issuer, ok := pathPubkey(w, r, "issuer")
	if !ok {
		return
	}
	holder, ok := pathPubkey(w, r, "holder")
	if !ok {
		return
	}
	cred, err := h.service.GetCredential(r.Context(), issuer, holder)
	if err != nil {
		h.fail(w, r, "get credential failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCredentialResponse(h.deriver, cred))
}

// HandleCredentialStatus answers the verifier question: is this credential
// trustworthy at the request time.
func (h *Handler) HandleCredentialStatus(w http.ResponseWriter, r *http.Request) {
	issuer, ok := pathPubkey(w, r, "issuer")
	if !ok {
		return
	}
	holder, ok := pathPubkey(w, r, "holder")
	if !ok {
		return
	}
	view, err := h.service.CredentialStatus(r.Context(), issuer, holder)
	if err != nil {
		h.fail(w, r, "credential status failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStatusResponse(view))
}
