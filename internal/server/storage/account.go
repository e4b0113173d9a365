package storage

import (
	"context"

	"github.com/iudanet/authkeeper/internal/models"
)

//go:generate moq -out account_mock.go . AccountStorage RoleStorage

// AccountStorage defines interface for account persistence
type AccountStorage interface {
	// FindByIdentity retrieves account with its roles and verification code
	// Returns ErrAccountNotFound if account doesn't exist
	FindByIdentity(ctx context.Context, identity string) (*models.Account, error)

	// ExistsByIdentity reports whether an account with this identity exists
	ExistsByIdentity(ctx context.Context, identity string) (bool, error)

	// Save inserts or updates the account, its roles and its verification code
	// in one transaction. A nil VerificationCode removes the stored code.
	// Returns ErrAccountAlreadyExists if the identity belongs to another account
	Save(ctx context.Context, account *models.Account) error
}

// RoleStorage defines interface for role lookup
type RoleStorage interface {
	// FindByTag retrieves role by its tag
	// Returns ErrRoleNotFound if role doesn't exist
	FindByTag(ctx context.Context, tag string) (*models.Role, error)
}

// Pinger is implemented by storages that can report their availability
type Pinger interface {
	Ping(ctx context.Context) error
}
