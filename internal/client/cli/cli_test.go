package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/authkeeper/internal/client/auth"
	"github.com/iudanet/authkeeper/internal/client/storage"
	"github.com/iudanet/authkeeper/pkg/api"
)

// scriptedIO отдает заранее заданные ответы и накапливает вывод
type scriptedIO struct {
	inputs    []string
	passwords []string
	out       strings.Builder
}

func (s *scriptedIO) Println(a ...any) { fmt.Fprintln(&s.out, a...) }

func (s *scriptedIO) Printf(format string, a ...any) { fmt.Fprintf(&s.out, format, a...) }

func (s *scriptedIO) ReadInput(prompt string) (string, error) {
	s.out.WriteString(prompt)
	if len(s.inputs) == 0 {
		return "", errors.New("no more input")
	}
	v := s.inputs[0]
	s.inputs = s.inputs[1:]
	return v, nil
}

func (s *scriptedIO) ReadPassword(prompt string) (string, error) {
	s.out.WriteString(prompt)
	if len(s.passwords) == 0 {
		return "", errors.New("no more passwords")
	}
	v := s.passwords[0]
	s.passwords = s.passwords[1:]
	return v, nil
}

// mockAuthService записывает вызовы команд
type mockAuthService struct {
	session    *storage.AuthData
	me         *api.MeResponse
	err        error
	registered auth.RegisterInput
	verified   [2]string
	resent     string
	loggedIn   [2]string
	logouts    int
}

func (m *mockAuthService) Register(_ context.Context, in auth.RegisterInput) (*api.RegisterResponse, error) {
	m.registered = in
	if m.err != nil {
		return nil, m.err
	}
	return &api.RegisterResponse{AccountID: "acc-1", Identity: in.Identity}, nil
}

func (m *mockAuthService) Verify(_ context.Context, identity, code string) error {
	m.verified = [2]string{identity, code}
	return m.err
}

func (m *mockAuthService) Resend(_ context.Context, identity string) error {
	m.resent = identity
	return m.err
}

func (m *mockAuthService) Login(_ context.Context, identity, secret string) (*storage.AuthData, error) {
	m.loggedIn = [2]string{identity, secret}
	if m.err != nil {
		return nil, m.err
	}
	return &storage.AuthData{Identity: identity, ExpiresAt: testNow.Add(15 * time.Minute).Unix()}, nil
}

func (m *mockAuthService) Refresh(_ context.Context) (*storage.AuthData, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockAuthService) WhoAmI(_ context.Context) (*api.MeResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.me, nil
}

func (m *mockAuthService) Session(_ context.Context) (*storage.AuthData, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockAuthService) Logout(_ context.Context) error {
	m.logouts++
	return m.err
}

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestCli(io *scriptedIO, svc *mockAuthService, secrets Secrets) *Cli {
	c := New(io, svc, secrets)
	c.now = func() time.Time { return testNow }
	return c
}

func writeSecretFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGetSecret_Priority(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		file    string
		args    string
		prompt  []string
		want    string
		wantErr string
	}{
		{name: "env wins", env: "env-secret", file: "file-secret", args: "arg-secret", want: "env-secret"},
		{name: "file over args", file: "  file-secret \n\n", args: "arg-secret", want: "file-secret"},
		{name: "args", args: "arg-secret", want: "arg-secret"},
		{name: "prompt fallback", prompt: []string{"typed-secret"}, want: "typed-secret"},
		{name: "empty file", file: "\n", wantErr: "secret file is empty"},
		{name: "empty prompt", prompt: []string{""}, wantErr: "secret cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(SecretEnv, tt.env)

			secrets := Secrets{FromArgs: tt.args}
			if tt.file != "" {
				secrets.FromFile = writeSecretFile(t, tt.file)
			}
			c := newTestCli(&scriptedIO{passwords: tt.prompt}, &mockAuthService{}, secrets)

			got, err := c.getSecret("Secret: ", false)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetSecret_FileNotFound(t *testing.T) {
	t.Setenv(SecretEnv, "")
	c := newTestCli(&scriptedIO{}, &mockAuthService{}, Secrets{FromFile: "/nonexistent/file/path.txt"})

	_, err := c.getSecret("Secret: ", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read secret file")
}

func TestGetSecret_Confirm(t *testing.T) {
	t.Setenv(SecretEnv, "")

	c := newTestCli(&scriptedIO{passwords: []string{"one", "two"}}, &mockAuthService{}, Secrets{})
	_, err := c.getSecret("Secret: ", true)
	assert.EqualError(t, err, "secrets do not match")

	c = newTestCli(&scriptedIO{passwords: []string{"same", "same"}}, &mockAuthService{}, Secrets{})
	got, err := c.getSecret("Secret: ", true)
	require.NoError(t, err)
	assert.Equal(t, "same", got)
}

func TestRun_Register(t *testing.T) {
	t.Setenv(SecretEnv, "")
	io := &scriptedIO{passwords: []string{"secret123", "secret123"}}
	svc := &mockAuthService{}

	err := newTestCli(io, svc, Secrets{}).Run(context.Background(), "register",
		[]string{"-role", "TESTER", "-first", "Alice", "alice@example.com"})
	require.NoError(t, err)

	assert.Equal(t, auth.RegisterInput{
		Identity:  "alice@example.com",
		Secret:    "secret123",
		FirstName: "Alice",
		Role:      "TESTER",
	}, svc.registered)
	assert.Contains(t, io.out.String(), "Account ID: acc-1")
	assert.Contains(t, io.out.String(), "authkeeper verify alice@example.com <code>")
}

func TestRun_RegisterPromptsIdentity(t *testing.T) {
	t.Setenv(SecretEnv, "secret123")
	io := &scriptedIO{inputs: []string{"bob@example.com"}}
	svc := &mockAuthService{}

	require.NoError(t, newTestCli(io, svc, Secrets{}).Run(context.Background(), "register", nil))
	assert.Equal(t, "bob@example.com", svc.registered.Identity)
	assert.Equal(t, defaultRole, svc.registered.Role)
}

func TestRun_RegisterBadFlag(t *testing.T) {
	err := newTestCli(&scriptedIO{}, &mockAuthService{}, Secrets{}).Run(context.Background(), "register", []string{"-nope"})
	assert.ErrorContains(t, err, "invalid register arguments")
}

func TestRun_VerifyAndResend(t *testing.T) {
	svc := &mockAuthService{}
	io := &scriptedIO{inputs: []string{"654321"}}
	c := newTestCli(io, svc, Secrets{})

	require.NoError(t, c.Run(context.Background(), "verify", []string{"alice@example.com"}))
	assert.Equal(t, [2]string{"alice@example.com", "654321"}, svc.verified)
	assert.Contains(t, io.out.String(), "Account verified")

	require.NoError(t, c.Run(context.Background(), "resend", []string{"alice@example.com"}))
	assert.Equal(t, "alice@example.com", svc.resent)
	assert.Contains(t, io.out.String(), "60 minutes")
}

func TestRun_Login(t *testing.T) {
	t.Setenv(SecretEnv, "")
	io := &scriptedIO{}
	svc := &mockAuthService{}

	err := newTestCli(io, svc, Secrets{FromArgs: "secret123"}).Run(context.Background(), "login", []string{"alice@example.com"})
	require.NoError(t, err)

	assert.Equal(t, [2]string{"alice@example.com", "secret123"}, svc.loggedIn)
	assert.Contains(t, io.out.String(), "Login successful")
}

func TestRun_ServiceError(t *testing.T) {
	t.Setenv(SecretEnv, "secret123")
	svc := &mockAuthService{err: errors.New("server error (403): account not verified")}

	err := newTestCli(&scriptedIO{}, svc, Secrets{}).Run(context.Background(), "login", []string{"alice@example.com"})
	assert.EqualError(t, err, "server error (403): account not verified")
}

func TestRun_Status(t *testing.T) {
	tests := []struct {
		svc  *mockAuthService
		name string
		want []string
	}{
		{
			name: "not logged in",
			svc:  &mockAuthService{err: auth.ErrNotLoggedIn},
			want: []string{"Status: Not authenticated"},
		},
		{
			name: "active session",
			svc: &mockAuthService{session: &storage.AuthData{
				Identity:  "alice@example.com",
				Server:    "http://auth.test",
				Roles:     []string{"DEVELOPER"},
				ExpiresAt: testNow.Add(10 * time.Minute).Unix(),
			}},
			want: []string{"Status: Authenticated", "Email: alice@example.com", "Roles: DEVELOPER", "Time remaining: 10m0s"},
		},
		{
			name: "expired access token",
			svc: &mockAuthService{session: &storage.AuthData{
				Identity:  "alice@example.com",
				ExpiresAt: testNow.Add(-time.Minute).Unix(),
			}},
			want: []string{"Access token has expired"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			io := &scriptedIO{}
			require.NoError(t, newTestCli(io, tt.svc, Secrets{}).Run(context.Background(), "status", nil))
			for _, want := range tt.want {
				assert.Contains(t, io.out.String(), want)
			}
		})
	}
}

func TestRun_WhoAmI(t *testing.T) {
	io := &scriptedIO{}
	svc := &mockAuthService{me: &api.MeResponse{
		Subject:   "alice@example.com",
		Roles:     []string{"ADMIN", "DEVELOPER"},
		ExpiresAt: testNow.Add(15 * time.Minute),
	}}

	require.NoError(t, newTestCli(io, svc, Secrets{}).Run(context.Background(), "whoami", nil))
	assert.Contains(t, io.out.String(), "Email: alice@example.com")
	assert.Contains(t, io.out.String(), "Roles: ADMIN, DEVELOPER")
	assert.Contains(t, io.out.String(), "2026-03-01T10:15:00Z")
}

func TestRun_Refresh(t *testing.T) {
	io := &scriptedIO{}
	svc := &mockAuthService{session: &storage.AuthData{ExpiresAt: testNow.Unix()}}

	require.NoError(t, newTestCli(io, svc, Secrets{}).Run(context.Background(), "refresh", nil))
	assert.Contains(t, io.out.String(), "Access token refreshed")

	svc.err = auth.ErrSessionExpired
	err := newTestCli(io, svc, Secrets{}).Run(context.Background(), "refresh", nil)
	assert.ErrorIs(t, err, auth.ErrSessionExpired)
}

func TestRun_Logout(t *testing.T) {
	io := &scriptedIO{}
	svc := &mockAuthService{}
	c := newTestCli(io, svc, Secrets{})

	require.NoError(t, c.Run(context.Background(), "logout", nil))
	assert.Contains(t, io.out.String(), "Logout successful")

	svc.err = auth.ErrNotLoggedIn
	require.NoError(t, c.Run(context.Background(), "logout", nil))
	assert.Contains(t, io.out.String(), "No active session.")
	assert.Equal(t, 2, svc.logouts)
}

func TestRun_UnknownCommand(t *testing.T) {
	err := newTestCli(&scriptedIO{}, &mockAuthService{}, Secrets{}).Run(context.Background(), "sync", nil)

	var unknown *UnknownCommandError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "sync", unknown.Command)
}

func TestPrintUsage(t *testing.T) {
	io := &scriptedIO{}
	PrintUsage(io)

	for _, cmd := range []string{"register", "verify", "resend", "login", "refresh", "whoami", "status", "logout"} {
		assert.Contains(t, io.out.String(), cmd)
	}
}
