package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iudanet/authkeeper/internal/dbx"
	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/server/storage"
)

const uniqueViolation = "23505"

// FindByIdentity retrieves account by identity together with roles and verification code
func (s *Storage) FindByIdentity(ctx context.Context, identity string) (*models.Account, error) {
	query := `
		SELECT a.id, a.identity, a.secret_hash, a.first_name, a.last_name, a.enabled,
		       a.created_at, a.updated_at, vc.code, vc.expires_at
		FROM accounts a
		LEFT JOIN verification_codes vc ON vc.account_id = a.id
		WHERE a.identity = $1
	`

	account := &models.Account{}
	var code sql.NullString
	var expiresAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, identity).Scan(
		&account.ID,
		&account.Identity,
		&account.SecretHash,
		&account.FirstName,
		&account.LastName,
		&account.Enabled,
		&account.CreatedAt,
		&account.UpdatedAt,
		&code,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if code.Valid && expiresAt.Valid {
		account.VerificationCode = &models.VerificationCode{
			Code:      code.String,
			ExpiresAt: expiresAt.Time,
		}
	}

	roles, err := s.accountRoles(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	account.Roles = roles

	return account, nil
}

// ExistsByIdentity checks whether account with identity exists
func (s *Storage) ExistsByIdentity(ctx context.Context, identity string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE identity = $1)`, identity,
	).Scan(&exists)
	if err != nil {
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
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				identity = EXCLUDED.identity,
				secret_hash = EXCLUDED.secret_hash,
				first_name = EXCLUDED.first_name,
				last_name = EXCLUDED.last_name,
				enabled = EXCLUDED.enabled,
				updated_at = EXCLUDED.updated_at
		`

		if _, err := tx.ExecContext(ctx, query,
			account.ID,
			account.Identity,
			account.SecretHash,
			account.FirstName,
			account.LastName,
			account.Enabled,
			account.CreatedAt,
			account.UpdatedAt,
		); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrAccountAlreadyExists
			}
			return fmt.Errorf("failed to save account: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM account_roles WHERE account_id = $1`, account.ID); err != nil {
			return fmt.Errorf("failed to clear account roles: %w", err)
		}

		for _, role := range account.Roles {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO account_roles (account_id, role_id) VALUES ($1, $2)`,
				account.ID, role.ID,
			); err != nil {
				return fmt.Errorf("failed to save account role %s: %w", role.Tag, err)
			}
		}

		if account.VerificationCode == nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM verification_codes WHERE account_id = $1`, account.ID); err != nil {
				return fmt.Errorf("failed to delete verification code: %w", err)
			}
			return nil
		}

		codeQuery := `
			INSERT INTO verification_codes (account_id, code, expires_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (account_id) DO UPDATE SET
				code = EXCLUDED.code,
				expires_at = EXCLUDED.expires_at
		`
		if _, err := tx.ExecContext(ctx, codeQuery,
			account.ID,
			account.VerificationCode.Code,
			account.VerificationCode.ExpiresAt,
		); err != nil {
			return fmt.Errorf("failed to save verification code: %w", err)
		}

		return nil
	})
}

func (s *Storage) accountRoles(ctx context.Context, accountID string) ([]models.Role, error) {
	query := `
		SELECT r.id, r.tag, r.name
		FROM roles r
		JOIN account_roles ar ON ar.role_id = r.id
		WHERE ar.account_id = $1
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

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
