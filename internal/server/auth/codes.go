package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"time"

	"github.com/iudanet/authkeeper/internal/autherr"
	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/server/storage"
)

const (
	// IssueWindow is the validity of a code issued at registration
	IssueWindow = 15 * time.Minute
	// ReissueWindow is the validity of a code issued by resend
	ReissueWindow = 60 * time.Minute

	codeMin   = 100000
	codeRange = 900000 // [100000, 999999]
)

// CodeManager generates, expires and checks verification codes
type CodeManager struct {
	accounts storage.AccountStorage
	now      func() time.Time
	rand     io.Reader
}

// NewCodeManager creates a code manager persisting through accounts
func NewCodeManager(accounts storage.AccountStorage) *CodeManager {
	return &CodeManager{
		accounts: accounts,
		now:      time.Now,
		rand:     rand.Reader,
	}
}

// Issue attaches a fresh code valid for IssueWindow, replacing any prior code.
// The account is not persisted.
func (m *CodeManager) Issue(account *models.Account) (*models.VerificationCode, error) {
	return m.attach(account, IssueWindow)
}

// Reissue attaches a fresh code valid for ReissueWindow, replacing any prior code.
// The account is not persisted.
func (m *CodeManager) Reissue(account *models.Account) (*models.VerificationCode, error) {
	return m.attach(account, ReissueWindow)
}

func (m *CodeManager) attach(account *models.Account, window time.Duration) (*models.VerificationCode, error) {
	code, err := m.generate()
	if err != nil {
		return nil, err
	}

	vc := &models.VerificationCode{
		Code:      code,
		ExpiresAt: m.now().Add(window),
	}
	account.VerificationCode = vc
	return vc, nil
}

func (m *CodeManager) generate() (string, error) {
	n, err := rand.Int(m.rand, big.NewInt(codeRange))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// Verify checks submitted against the stored code. On success the account is
// enabled and its code removed in a single Save.
func (m *CodeManager) Verify(ctx context.Context, account *models.Account, submitted string) error {
	if account.Enabled {
		return autherr.New(autherr.ErrAccountAlreadyVerified, account.Identity)
	}

	vc := account.VerificationCode
	// нет кода: считаем истекшим, восстановление через resend
	if vc == nil || vc.IsExpired(m.now()) {
		return autherr.New(autherr.ErrCodeExpired, account.Identity)
	}

	if subtle.ConstantTimeCompare([]byte(vc.Code), []byte(submitted)) != 1 {
		return autherr.New(autherr.ErrCodeMismatch, submitted)
	}

	account.Enabled = true
	account.VerificationCode = nil

	if err := m.accounts.Save(ctx, account); err != nil {
		account.Enabled = false
		account.VerificationCode = vc
		return fmt.Errorf("failed to save verified account: %w", err)
	}

	return nil
}
