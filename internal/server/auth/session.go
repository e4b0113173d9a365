package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/authkeeper/internal/autherr"
	"github.com/iudanet/authkeeper/internal/server/storage"
	"github.com/iudanet/authkeeper/internal/server/token"
)

// SessionIssuer checks credentials and issues token pairs
type SessionIssuer struct {
	accounts storage.AccountStorage
	hasher   SecretHasher
	codec    *token.Codec
}

// NewSessionIssuer creates a session issuer
func NewSessionIssuer(accounts storage.AccountStorage, hasher SecretHasher, codec *token.Codec) *SessionIssuer {
	return &SessionIssuer{
		accounts: accounts,
		hasher:   hasher,
		codec:    codec,
	}
}

// Login returns an ACCESS and a REFRESH token for identity.
// The enabled flag is checked before the secret is compared.
func (s *SessionIssuer) Login(ctx context.Context, identity, secret string) (*TokenPair, error) {
	account, err := s.accounts.FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return nil, autherr.New(autherr.ErrNoSuchAccount, identity)
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if !account.Enabled {
		return nil, autherr.New(autherr.ErrAccountNotVerified, identity)
	}

	if !s.hasher.Matches(secret, account.SecretHash) {
		return nil, autherr.New(autherr.ErrBadCredentials, identity)
	}

	roles := account.RoleTags()

	access, err := s.codec.SignAccess(account.Identity, roles)
	if err != nil {
		return nil, err
	}

	refresh, err := s.codec.SignRefresh(account.Identity, roles)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.codec.TTL(token.KindAccess),
	}, nil
}
