// Package auth drives the account lifecycle from the client side and keeps
// the local session in sync with the server.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	clientapi "github.com/iudanet/authkeeper/internal/client/api"
	"github.com/iudanet/authkeeper/internal/client/storage"
	"github.com/iudanet/authkeeper/internal/validation"
	"github.com/iudanet/authkeeper/pkg/api"
)

// Service предоставляет функции авторизации
type Service struct {
	api    ServerAPI
	store  storage.AuthStorage
	logger *slog.Logger
	now    func() time.Time
}

// NewService создает новый сервис авторизации
func NewService(logger *slog.Logger, apiClient ServerAPI, store storage.AuthStorage) *Service {
	return &Service{
		api:    apiClient,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// RegisterInput содержит данные новой учетной записи
type RegisterInput struct {
	Identity  string
	Secret    string
	FirstName string
	LastName  string
	Role      string
}

// Register регистрирует учетную запись. Сессия не создается: нужна верификация.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*api.RegisterResponse, error) {
	if err := validation.ValidateIdentity(in.Identity); err != nil {
		return nil, fmt.Errorf("invalid identity: %w", err)
	}
	if err := validation.ValidateSecret(in.Secret); err != nil {
		return nil, fmt.Errorf("invalid secret: %w", err)
	}
	if err := validation.ValidateRoleTag(in.Role); err != nil {
		return nil, fmt.Errorf("invalid role: %w", err)
	}

	resp, err := s.api.Register(ctx, api.RegisterRequest{
		Identity:  in.Identity,
		Secret:    in.Secret,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      in.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return resp, nil
}

// Verify подтверждает учетную запись кодом из письма
func (s *Service) Verify(ctx context.Context, identity, code string) error {
	if err := validation.ValidateIdentity(identity); err != nil {
		return fmt.Errorf("invalid identity: %w", err)
	}
	if err := validation.ValidateCode(code); err != nil {
		return fmt.Errorf("invalid code: %w", err)
	}

	if err := s.api.Verify(ctx, api.VerifyRequest{Identity: identity, Code: code}); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	return nil
}

// Resend запрашивает новый код подтверждения
func (s *Service) Resend(ctx context.Context, identity string) error {
	if err := validation.ValidateIdentity(identity); err != nil {
		return fmt.Errorf("invalid identity: %w", err)
	}

	if _, err := s.api.Resend(ctx, api.ResendRequest{Identity: identity}); err != nil {
		return fmt.Errorf("resend failed: %w", err)
	}
	return nil
}

// Login выполняет аутентификацию и сохраняет пару токенов локально
func (s *Service) Login(ctx context.Context, identity, secret string) (*storage.AuthData, error) {
	if identity == "" || secret == "" {
		return nil, fmt.Errorf("identity and secret are required")
	}

	resp, err := s.api.Login(ctx, api.LoginRequest{Identity: identity, Secret: secret})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	session := &storage.AuthData{
		Identity:     identity,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		Server:       s.api.BaseURL(),
		ExpiresAt:    s.expiresAt(resp.ExpiresIn),
	}

	if err := s.store.SaveAuth(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save auth data: %w", err)
	}

	return session, nil
}

// Refresh получает новый access token по сохраненному refresh token.
// Если сервер отклонил refresh token, локальная сессия удаляется.
func (s *Service) Refresh(ctx context.Context) (*storage.AuthData, error) {
	session, err := s.Session(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.api.Refresh(ctx, session.RefreshToken)
	if err != nil {
		if clientapi.IsStatus(err, http.StatusUnauthorized) {
			if delErr := s.store.DeleteAuth(ctx); delErr != nil && !errors.Is(delErr, storage.ErrAuthNotFound) {
				s.logger.Warn("failed to delete rejected session", "error", delErr)
			}
			return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
		}
		return nil, fmt.Errorf("refresh failed: %w", err)
	}

	session.AccessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		session.RefreshToken = resp.RefreshToken
	}
	session.ExpiresAt = s.expiresAt(resp.ExpiresIn)

	if err := s.store.SaveAuth(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save auth data: %w", err)
	}

	return session, nil
}

// WhoAmI возвращает владельца текущей сессии.
// Просроченный или отклоненный access token один раз обновляется через refresh token.
func (s *Service) WhoAmI(ctx context.Context) (*api.MeResponse, error) {
	session, err := s.Session(ctx)
	if err != nil {
		return nil, err
	}

	if session.AccessExpired(s.now()) {
		s.logger.Debug("access token expired, refreshing")
		if session, err = s.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	me, err := s.api.Me(ctx, session.AccessToken)
	if clientapi.IsStatus(err, http.StatusUnauthorized) {
		s.logger.Debug("access token rejected, refreshing")
		if session, err = s.Refresh(ctx); err != nil {
			return nil, err
		}
		me, err = s.api.Me(ctx, session.AccessToken)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}

	// роли приходят только из claims, запоминаем их для status
	session.Roles = me.Roles
	if err := s.store.SaveAuth(ctx, session); err != nil {
		s.logger.Warn("failed to update stored roles", "error", err)
	}

	return me, nil
}

// Session возвращает сохраненную сессию
func (s *Service) Session(ctx context.Context) (*storage.AuthData, error) {
	session, err := s.store.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to get auth data: %w", err)
	}
	return session, nil
}

// Logout удаляет локальную сессию. Сервер токены не отзывает.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.DeleteAuth(ctx); err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return ErrNotLoggedIn
		}
		return fmt.Errorf("failed to delete local auth data: %w", err)
	}
	return nil
}

func (s *Service) expiresAt(expiresIn int64) int64 {
	return s.now().Add(time.Duration(expiresIn) * time.Second).Unix()
}
