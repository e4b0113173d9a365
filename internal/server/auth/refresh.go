package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/authkeeper/internal/autherr"
	"github.com/iudanet/authkeeper/internal/server/storage"
	"github.com/iudanet/authkeeper/internal/server/token"
)

// BearerPrefix is the scheme prefix of the Authorization header
const BearerPrefix = "Bearer "

// RefreshHandler exchanges a refresh token for a new access token
type RefreshHandler struct {
	accounts storage.AccountStorage
	codec    *token.Codec
}

// NewRefreshHandler creates a refresh handler
func NewRefreshHandler(accounts storage.AccountStorage, codec *token.Codec) *RefreshHandler {
	return &RefreshHandler{
		accounts: accounts,
		codec:    codec,
	}
}

// Refresh validates the Authorization header value and mints a new access token.
// The presented refresh token is returned unchanged.
func (h *RefreshHandler) Refresh(ctx context.Context, header string) (*TokenPair, error) {
	// 1. префикс проверяем до любого разбора токена
	if !strings.HasPrefix(header, BearerPrefix) {
		return nil, autherr.New(autherr.ErrInvalidToken, header)
	}
	raw := strings.TrimPrefix(header, BearerPrefix)

	// 2. тип токена
	kind, err := h.codec.ParseKind(raw)
	if err != nil {
		return nil, autherr.Wrap(autherr.ErrInvalidToken, raw, err)
	}
	if kind != token.KindRefresh {
		return nil, autherr.Wrap(autherr.ErrInvalidToken, raw, fmt.Errorf("expected %s token, got %s", token.KindRefresh, kind))
	}

	// 3. владелец токена должен существовать
	subject, err := h.codec.ParseSubject(raw)
	if err != nil {
		return nil, autherr.Wrap(autherr.ErrInvalidToken, raw, err)
	}

	account, err := h.accounts.FindByIdentity(ctx, subject)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return nil, autherr.Wrap(autherr.ErrInvalidToken, raw, autherr.New(autherr.ErrNoSuchAccount, subject))
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	// 4. срок действия и привязка к найденной учетной записи
	if _, err := h.codec.Validate(raw, token.KindRefresh, account.Identity); err != nil {
		return nil, err
	}

	access, err := h.codec.SignAccess(account.Identity, account.RoleTags())
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresIn:    h.codec.TTL(token.KindAccess),
	}, nil
}
