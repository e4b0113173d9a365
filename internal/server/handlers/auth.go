package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/authkeeper/internal/autherr"
	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/server/auth"
	"github.com/iudanet/authkeeper/internal/validation"
	"github.com/iudanet/authkeeper/pkg/api"
)

// maxBodyBytes ограничивает размер тела запроса
const maxBodyBytes = 1 << 16

// AuthService is the account lifecycle used by the HTTP layer
type AuthService interface {
	Register(ctx context.Context, identity, secret string, profile auth.Profile, roleTag string) (*models.Account, error)
	Authenticate(ctx context.Context, identity, secret string) (*auth.TokenPair, error)
	Verify(ctx context.Context, identity, code string) error
	ResendCode(ctx context.Context, identity string) error
	RefreshToken(ctx context.Context, header string) (*auth.TokenPair, error)
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger  *slog.Logger
	service AuthService
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, service AuthService) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		service: service,
	}
}

// Register обрабатывает POST /api/v1/auth/register
// Регистрация учетной записи, код подтверждения уходит на email
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := firstError(
		validation.ValidateIdentity(req.Identity),
		validation.ValidateSecret(req.Secret),
		validation.ValidateName("first_name", req.FirstName),
		validation.ValidateName("last_name", req.LastName),
		validation.ValidateRoleTag(req.Role),
	); err != nil {
		h.logger.WarnContext(ctx, "invalid register request", slog.String("identity", req.Identity), slog.Any("error", err))
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile := auth.Profile{FirstName: req.FirstName, LastName: req.LastName}
	account, err := h.service.Register(ctx, req.Identity, req.Secret, profile, req.Role)
	if err != nil {
		h.handleServiceError(ctx, w, "register", err)
		return
	}

	resp := api.RegisterResponse{
		AccountID: account.ID,
		Identity:  account.Identity,
		Enabled:   account.Enabled,
		Message:   "Account registered, check your email for the verification code",
	}

	h.sendJSON(w, resp, http.StatusCreated)
}

// Verify обрабатывает POST /api/v1/auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.VerifyRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := firstError(
		validation.ValidateIdentity(req.Identity),
		validation.ValidateCode(req.Code),
	); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Verify(ctx, req.Identity, req.Code); err != nil {
		h.handleServiceError(ctx, w, "verify", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Resend обрабатывает POST /api/v1/auth/resend
func (h *AuthHandler) Resend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ResendRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := validation.ValidateIdentity(req.Identity); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.ResendCode(ctx, req.Identity); err != nil {
		h.handleServiceError(ctx, w, "resend", err)
		return
	}

	h.sendJSON(w, api.MessageResponse{Message: "Verification code sent"}, http.StatusAccepted)
}

// Login обрабатывает POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.Identity == "" || req.Secret == "" {
		h.sendError(w, "identity and secret are required", http.StatusBadRequest)
		return
	}

	pair, err := h.service.Authenticate(ctx, req.Identity, req.Secret)
	if err != nil {
		// не раскрываем существование учетной записи
		if errors.Is(err, autherr.ErrNoSuchAccount) {
			h.logger.WarnContext(ctx, "login failed: account not found", slog.String("identity", req.Identity))
			h.sendError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.handleServiceError(ctx, w, "login", err)
		return
	}

	h.sendJSON(w, tokenResponse(pair), http.StatusOK)
}

// Refresh обрабатывает POST /api/v1/auth/refresh
// Refresh token передается в заголовке Authorization: Bearer <token>
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pair, err := h.service.RefreshToken(ctx, r.Header.Get("Authorization"))
	if err != nil {
		h.handleServiceError(ctx, w, "refresh", err)
		return
	}

	h.sendJSON(w, tokenResponse(pair), http.StatusOK)
}

// Me обрабатывает GET /api/v1/auth/me
// Требует AuthMiddleware
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	resp := api.MeResponse{
		Subject:   claims.Subject,
		Roles:     claims.Roles,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if resp.Roles == nil {
		resp.Roles = []string{}
	}

	h.sendJSON(w, resp, http.StatusOK)
}

func tokenResponse(pair *auth.TokenPair) api.TokenResponse {
	return api.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// decode читает JSON тело запроса, при ошибке отвечает 400
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request", slog.String("path", r.URL.Path), slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// sendJSON отправляет JSON ответ
func (h *AuthHandler) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	writeJSON(h.logger, w, data, statusCode)
}

// sendError отправляет JSON ответ с ошибкой
func (h *AuthHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	writeError(h.logger, w, message, statusCode)
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// WriteError writes an api.ErrorResponse; shared with middleware
func WriteError(logger *slog.Logger, w http.ResponseWriter, message string, statusCode int) {
	writeError(logger, w, message, statusCode)
}

func writeError(logger *slog.Logger, w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	writeJSON(logger, w, resp, statusCode)
}
