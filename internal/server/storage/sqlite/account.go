package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/iudanet/authkeeper/internal/dbx"
	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/server/storage"
)

// FindByIdentity retrieves account by identity together with roles and verification code
func (s *Storage) FindByIdentity(ctx context.Context, identity string) (*models.Account, error) {
	query := `
		SELECT id, identity, secret_hash, first_name, last_name, enabled, created_at, updated_at
		FROM accounts
		WHERE identity = ?
	`

	account := &models.Account{}
	var createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx, query, identity).Scan(
		&account.ID,
		&account.Identity,
		&account.SecretHash,
		&account.FirstName,
		&account.LastName,
		&account.Enabled,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	account.CreatedAt = time.UnixMilli(createdAt).UTC()
	account.UpdatedAt = time.UnixMilli(updatedAt).UTC()

	roles, err := s.accountRoles(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	account.Roles = roles

	code, err := s.verificationCode(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	account.VerificationCode = code

	return account, nil
}

// ExistsByIdentity checks whether account with identity exists
func (s *Storage) ExistsByIdentity(ctx context.Context, identity string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE identity = ?)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, identity).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}

	return exists, nil
}

// Save inserts or updates account, its roles and verification code in one transaction
func (s *Storage) Save(ctx context.Context, account *models.Account) error {
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		query := `
			INSERT INTO accounts (id, identity, secret_hash, first_name, last_name, enabled, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				identity = excluded.identity,
				secret_hash = excluded.secret_hash,
				first_name = excluded.first_name,
				last_name = excluded.last_name,
				enabled = excluded.enabled,
				updated_at = excluded.updated_at
		`

		_, err := tx.ExecContext(ctx, query,
			account.ID,
			account.Identity,
			account.SecretHash,
			account.FirstName,
			account.LastName,
			account.Enabled,
			account.CreatedAt.UnixMilli(),
			account.UpdatedAt.UnixMilli(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrAccountAlreadyExists
			}
			return fmt.Errorf("failed to save account: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM account_roles WHERE account_id = ?`, account.ID); err != nil {
			return fmt.Errorf("failed to clear account roles: %w", err)
		}

		for _, role := range account.Roles {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO account_roles (account_id, role_id) VALUES (?, ?)`,
				account.ID, role.ID,
			); err != nil {
				return fmt.Errorf("failed to save account role %s: %w", role.Tag, err)
			}
		}

		// Код либо заменяется новым, либо удаляется (успешная верификация)
		if account.VerificationCode == nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM verification_codes WHERE account_id = ?`, account.ID); err != nil {
				return fmt.Errorf("failed to delete verification code: %w", err)
			}
			return nil
		}

		codeQuery := `
			INSERT INTO verification_codes (account_id, code, expires_at)
			VALUES (?, ?, ?)
			ON CONFLICT(account_id) DO UPDATE SET
				code = excluded.code,
				expires_at = excluded.expires_at
		`
		if _, err := tx.ExecContext(ctx, codeQuery,
			account.ID,
			account.VerificationCode.Code,
			account.VerificationCode.ExpiresAt.UnixMilli(),
		); err != nil {
			return fmt.Errorf("failed to save verification code: %w", err)
		}

		return nil
	})
}

// accountRoles retrieves roles assigned to account
func (s *Storage) accountRoles(ctx context.Context, accountID string) ([]models.Role, error) {
	query := `
		SELECT r.id, r.tag, r.name
		FROM roles r
		JOIN account_roles ar ON ar.role_id = r.id
		WHERE ar.account_id = ?
		ORDER BY r.id
	`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query account roles: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Tag, &role.Name); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return roles, nil
}

// verificationCode retrieves the account's code, nil if there is none
func (s *Storage) verificationCode(ctx context.Context, accountID string) (*models.VerificationCode, error) {
	query := `SELECT code, expires_at FROM verification_codes WHERE account_id = ?`

	code := &models.VerificationCode{}
	var expiresAt int64

	err := s.db.QueryRowContext(ctx, query, accountID).Scan(&code.Code, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get verification code: %w", err)
	}

	code.ExpiresAt = time.UnixMilli(expiresAt).UTC()
	return code, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
