package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/authkeeper/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:8080", client.BaseURL())
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

// TestClient_Register проверяет успешную регистрацию
func TestClient_Register(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req api.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice@example.com", req.Identity)
		assert.Equal(t, "DEVELOPER", req.Role)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(api.RegisterResponse{
			AccountID: "acc-123",
			Identity:  req.Identity,
			Message:   "check your email",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Register(context.Background(), api.RegisterRequest{
		Identity: "alice@example.com",
		Secret:   "secret123",
		Role:     "DEVELOPER",
	})

	require.NoError(t, err)
	assert.Equal(t, "acc-123", resp.AccountID)
	assert.False(t, resp.Enabled)
}

// TestClient_Register_Error проверяет обработку ошибок при регистрации
func TestClient_Register_Error(t *testing.T) {
	tests := []struct {
		responseBody   any
		name           string
		expectedErrMsg string
		statusCode     int
	}{
		{
			name:       "account already exists",
			statusCode: http.StatusConflict,
			responseBody: api.ErrorResponse{
				Error:   "Conflict",
				Message: "account already exists",
			},
			expectedErrMsg: "server error (409): account already exists",
		},
		{
			name:       "invalid request",
			statusCode: http.StatusBadRequest,
			responseBody: api.ErrorResponse{
				Error:   "Bad Request",
				Message: "invalid identity format",
			},
			expectedErrMsg: "server error (400): invalid identity format",
		},
		{
			name:           "plain text error",
			statusCode:     http.StatusBadGateway,
			responseBody:   "Bad Gateway",
			expectedErrMsg: "request failed with status 502: Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				if errResp, ok := tt.responseBody.(api.ErrorResponse); ok {
					_ = json.NewEncoder(w).Encode(errResp)
				} else {
					_, _ = w.Write([]byte(tt.responseBody.(string)))
				}
			}))
			defer server.Close()

			client := NewClient(server.URL)
			resp, err := client.Register(context.Background(), api.RegisterRequest{Identity: "alice@example.com"})

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Contains(t, err.Error(), tt.expectedErrMsg)
			assert.True(t, IsStatus(err, tt.statusCode))
		})
	}
}

func TestClient_Verify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/verify", r.URL.Path)

		var req api.VerifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Code != "123456" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Message: "verification code mismatch"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	err := client.Verify(ctx, api.VerifyRequest{Identity: "alice@example.com", Code: "123456"})
	assert.NoError(t, err)

	err = client.Verify(ctx, api.VerifyRequest{Identity: "alice@example.com", Code: "654321"})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnprocessableEntity))
}

func TestClient_Resend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/resend", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(api.MessageResponse{Message: "Verification code sent"})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Resend(context.Background(), api.ResendRequest{Identity: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Verification code sent", resp.Message)
}

// TestClient_Login проверяет успешный логин
func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)

		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice@example.com", req.Identity)
		assert.Equal(t, "secret123", req.Secret)

		_ = json.NewEncoder(w).Encode(api.TokenResponse{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresIn:    900,
		})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Login(context.Background(), api.LoginRequest{
		Identity: "alice@example.com",
		Secret:   "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "refresh", resp.RefreshToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)
}

func TestClient_Refresh_SendsBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/refresh", r.URL.Path)
		assert.Equal(t, "Bearer refresh-token", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Content-Type"))

		_ = json.NewEncoder(w).Encode(api.TokenResponse{
			AccessToken:  "new-access",
			RefreshToken: "refresh-token",
			ExpiresIn:    900,
		})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Refresh(context.Background(), "refresh-token")
	require.NoError(t, err)
	assert.Equal(t, "new-access", resp.AccessToken)
	assert.Equal(t, "refresh-token", resp.RefreshToken)
}

func TestClient_Me(t *testing.T) {
	expiresAt := time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Message: "invalid or expired token"})
			return
		}
		_ = json.NewEncoder(w).Encode(api.MeResponse{
			Subject:   "alice@example.com",
			Roles:     []string{"DEVELOPER"},
			ExpiresAt: expiresAt,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	me, err := client.Me(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", me.Subject)
	assert.Equal(t, []string{"DEVELOPER"}, me.Roles)
	assert.True(t, expiresAt.Equal(me.ExpiresAt))

	_, err = client.Me(ctx, "bad")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.False(t, IsStatus(err, http.StatusForbidden))
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/health", r.URL.Path)
		_ = json.NewEncoder(w).Encode(api.HealthResponse{Status: "ok", Storage: "ok", Version: "1.0.0"})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)
}

func TestClient_InvalidJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{broken"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Login(context.Background(), api.LoginRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestClient_ServerUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url).Login(context.Background(), api.LoginRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
	assert.False(t, IsStatus(err, http.StatusNotFound))
}

func TestClient_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(server.URL).Me(ctx, "token")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
