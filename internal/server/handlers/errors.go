package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/authkeeper/internal/autherr"
	"github.com/iudanet/authkeeper/internal/server/observability"
)

type errorStatus struct {
	kind    error
	message string
	status  int
}

// порядок важен: InvalidToken может оборачивать NoSuchAccount
var errorStatuses = []errorStatus{
	{kind: autherr.ErrTooManyAttempts, status: http.StatusTooManyRequests, message: "too many attempts, please try again later"},
	{kind: autherr.ErrInvalidToken, status: http.StatusUnauthorized, message: "invalid or expired token"},
	{kind: autherr.ErrMalformedToken, status: http.StatusUnauthorized, message: "invalid or expired token"},
	{kind: autherr.ErrAccountAlreadyExists, status: http.StatusConflict, message: "account already exists"},
	{kind: autherr.ErrAccountAlreadyVerified, status: http.StatusConflict, message: "account already verified"},
	{kind: autherr.ErrNoSuchAccount, status: http.StatusNotFound, message: "account not found"},
	{kind: autherr.ErrNoSuchRole, status: http.StatusNotFound, message: "role not found"},
	{kind: autherr.ErrAccountNotVerified, status: http.StatusForbidden, message: "account not verified"},
	{kind: autherr.ErrCodeExpired, status: http.StatusGone, message: "verification code expired"},
	{kind: autherr.ErrCodeMismatch, status: http.StatusUnprocessableEntity, message: "verification code mismatch"},
	{kind: autherr.ErrBadCredentials, status: http.StatusUnauthorized, message: "invalid credentials"},
}

// statusFor maps a service error to an HTTP status and client message
func statusFor(err error) (int, string) {
	for _, es := range errorStatuses {
		if errors.Is(err, es.kind) {
			return es.status, es.message
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

// logAttrs describes err for logs without leaking token material
func logAttrs(err error) []any {
	kind := autherr.KindOf(err)
	if kind == nil {
		return []any{slog.Any("error", err)}
	}

	attrs := []any{slog.String("kind", kind.Error())}
	if kind != autherr.ErrInvalidToken && kind != autherr.ErrMalformedToken {
		if value, ok := autherr.ValueOf(err); ok {
			attrs = append(attrs, slog.String("value", value))
		}
	}
	return attrs
}

// handleServiceError logs err, reports unexpected errors to Sentry and writes the response
func (h *AuthHandler) handleServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	status, message := statusFor(err)

	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, op+" failed", logAttrs(err)...)
		observability.CaptureError(ctx, err)
	} else {
		h.logger.WarnContext(ctx, op+" rejected", logAttrs(err)...)
	}

	h.sendError(w, message, status)
}
