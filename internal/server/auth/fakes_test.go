package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/authkeeper/internal/autherr"
	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/server/storage"
	"github.com/iudanet/authkeeper/internal/server/token"
)

// memAccounts хранит копии учетных записей, как это делает настоящее хранилище
type memAccounts struct {
	accounts map[string]models.Account
	saveErr  error
	findErr  error
	saves    int
	mu       sync.Mutex
}

func newMemAccounts() *memAccounts {
	return &memAccounts{accounts: make(map[string]models.Account)}
}

func (m *memAccounts) FindByIdentity(_ context.Context, identity string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}
	a, ok := m.accounts[identity]
	if !ok {
		return nil, storage.ErrAccountNotFound
	}
	return copyAccount(&a), nil
}

func (m *memAccounts) ExistsByIdentity(_ context.Context, identity string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.accounts[identity]
	return ok, nil
}

func (m *memAccounts) Save(_ context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	if existing, ok := m.accounts[account.Identity]; ok && existing.ID != account.ID {
		return storage.ErrAccountAlreadyExists
	}
	m.accounts[account.Identity] = *copyAccount(account)
	return nil
}

func (m *memAccounts) stored(t *testing.T, identity string) *models.Account {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[identity]
	require.True(t, ok, "account %s not stored", identity)
	return copyAccount(&a)
}

func copyAccount(a *models.Account) *models.Account {
	c := *a
	c.Roles = append([]models.Role(nil), a.Roles...)
	if a.VerificationCode != nil {
		vc := *a.VerificationCode
		c.VerificationCode = &vc
	}
	return &c
}

type memRoles map[string]models.Role

func (m memRoles) FindByTag(_ context.Context, tag string) (*models.Role, error) {
	r, ok := m[tag]
	if !ok {
		return nil, storage.ErrRoleNotFound
	}
	return &r, nil
}

func testRoles() memRoles {
	return memRoles{
		"ADMIN":     {ID: 1, Tag: "ADMIN", Name: "Administrator"},
		"MANAGER":   {ID: 2, Tag: "MANAGER", Name: "Project manager"},
		"DEVELOPER": {ID: 3, Tag: "DEVELOPER", Name: "Developer"},
		"TESTER":    {ID: 4, Tag: "TESTER", Name: "Tester"},
	}
}

// plainHasher is a reversible hasher that counts comparisons
type plainHasher struct {
	hashErr      error
	matchesCalls int
}

func (h *plainHasher) Hash(secret string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + secret, nil
}

func (h *plainHasher) Matches(secret, hash string) bool {
	h.matchesCalls++
	return "hashed:"+secret == hash
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type recordingMailer struct {
	err  error
	sent []sentMail
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	if m.err != nil {
		return autherr.Wrap(autherr.ErrDelivery, to, m.err)
	}
	return nil
}

type stubLimiter struct {
	errs  map[string]error
	calls []string
}

func (l *stubLimiter) Allow(_ context.Context, action, identity string) error {
	l.calls = append(l.calls, action+":"+identity)
	return l.errs[action]
}

var errStorage = errors.New("storage unavailable")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCodec(t *testing.T) *token.Codec {
	t.Helper()
	codec, err := token.NewCodec(token.Config{
		Issuer:          "authkeeper-test",
		Secret:          []byte("test-secret-key"),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return codec
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}
