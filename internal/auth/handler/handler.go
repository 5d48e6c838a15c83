package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ssogate/internal/auth/device"
	"ssogate/internal/auth/models"
	"ssogate/internal/auth/service"
	"ssogate/internal/auth/session"
	"ssogate/internal/platform/middleware"
	httptransport "ssogate/internal/transport/http"
	jsonResponse "ssogate/internal/transport/http/json"
	"ssogate/internal/transport/http/shared"
	dErrors "ssogate/pkg/domain-errors"
	"ssogate/pkg/validation"
)

// Service defines the interface for authentication operations.
type Service interface {
	LoginWithEmail(ctx context.Context, meta service.RequestMeta, req *models.EmailLoginRequest, sink service.SessionSink) (*models.LoginResult, error)
	LoginGuest(ctx context.Context, meta service.RequestMeta, req *models.GuestLoginRequest, sink service.SessionSink) (*models.LoginResult, error)
	VerifyTwoFactor(ctx context.Context, meta service.RequestMeta, req *models.TwoFactorRequest, sink service.SessionSink) (*models.LoginResult, error)
	ValidateToken(ctx context.Context, req *models.ValidateTokenRequest) (*models.TokenIdentity, error)
	Refresh(ctx context.Context, meta service.RequestMeta, current *models.SessionSnapshot, sink service.SessionSink) (*models.LoginResult, error)
}

// Handler handles the login, two-factor, token and session endpoints.
// It delegates to the auth service; the only transport state it owns is the
// session cookie codec.
type Handler struct {
	auth   Service
	codec  *session.Codec
	logger *slog.Logger
}

// New creates an auth Handler with the given service, session codec and logger.
func New(auth Service, codec *session.Codec, logger *slog.Logger) *Handler {
	return &Handler{auth: auth, codec: codec, logger: logger}
}

// Register registers the per-app auth routes. The parent router mounts this
// under /auth/{app} with the app gate applied; the guest login route gets
// the per-app guest policy check, and refresh/logout require a session.
func (h *Handler) Register(r chi.Router) {
	r.Post("/login/email", h.HandleEmailLogin)
	r.With(httptransport.GuestLoginPolicy).Post("/login/guest", h.HandleGuestLogin)
	r.Post("/2fa", h.HandleTwoFactor)
	r.Post("/validate-token", h.HandleValidateToken)
	r.Get("/status", h.HandleStatus)
	r.With(httptransport.RequireSession(h.codec)).Put("/refresh", h.HandleRefresh)
	r.With(httptransport.RequireSession(h.codec)).Post("/logout", h.HandleLogout)
}

// HandleEmailLogin implements POST /auth/{app}/login/email.
//
// Input: { "email": "user@example.com", "password": "..." }
// Output: session snapshot + persistent token, or { "twoFactorRequired": true }.
func (h *Handler) HandleEmailLogin(w http.ResponseWriter, r *http.Request) {
	var req models.EmailLoginRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	result, err := h.auth.LoginWithEmail(r.Context(), h.meta(r), &req, h.codec.Writer(w))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	jsonResponse.WriteJSON(w, http.StatusOK, result)
}

// HandleGuestLogin implements POST /auth/{app}/login/guest.
func (h *Handler) HandleGuestLogin(w http.ResponseWriter, r *http.Request) {
	var req models.GuestLoginRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	result, err := h.auth.LoginGuest(r.Context(), h.meta(r), &req, h.codec.Writer(w))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	jsonResponse.WriteJSON(w, http.StatusOK, result)
}

// HandleTwoFactor implements POST /auth/{app}/2fa, completing a login that
// answered with twoFactorRequired.
func (h *Handler) HandleTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req models.TwoFactorRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	result, err := h.auth.VerifyTwoFactor(r.Context(), h.meta(r), &req, h.codec.Writer(w))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	jsonResponse.WriteJSON(w, http.StatusOK, result)
}

// HandleValidateToken implements POST /auth/{app}/validate-token: persistent
// token introspection for sibling services.
func (h *Handler) HandleValidateToken(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateTokenRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	identity, err := h.auth.ValidateToken(r.Context(), &req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	jsonResponse.WriteJSON(w, http.StatusOK, identity)
}

// HandleRefresh implements PUT /auth/{app}/refresh for an authenticated
// registered user.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, ok := httptransport.SessionFromContext(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "session required"))
		return
	}

	result, err := h.auth.Refresh(r.Context(), h.meta(r), snap, h.codec.Writer(w))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	jsonResponse.WriteJSON(w, http.StatusOK, result)
}

// HandleLogout implements POST /auth/{app}/logout: drops the session cookie.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.codec.Writer(w).Clear()
	jsonResponse.WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// HandleStatus implements GET /auth/{app}/status. Public: reports whether
// the caller holds a live session, and for whom.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := h.codec.FromRequest(r)
	if err != nil {
		jsonResponse.WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	jsonResponse.WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          snap,
	})
}

// readJSON decodes, normalizes and validates a request body. On failure it
// writes the error response and returns false.
func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, req interface{ Normalize() }) bool {
	ctx := r.Context()
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON in request body"))
		return false
	}
	req.Normalize()
	if err := validation.Validate(req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return false
	}
	return true
}

// meta assembles the per-request context the login protocol needs.
func (h *Handler) meta(r *http.Request) service.RequestMeta {
	preset, _ := httptransport.AppFromContext(r.Context())
	return service.RequestMeta{
		App:      preset,
		Device:   device.Describe(r.UserAgent()),
		Language: preferredLanguage(r.Header.Get("Accept-Language")),
	}
}

func preferredLanguage(header string) models.Language {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(header)), "nl") {
		return models.LanguageNL
	}
	return models.LanguageEN
}
