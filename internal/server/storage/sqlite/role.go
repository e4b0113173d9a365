package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/server/storage"
)

// FindByTag retrieves role by tag
func (s *Storage) FindByTag(ctx context.Context, tag string) (*models.Role, error) {
	query := `SELECT id, tag, name FROM roles WHERE tag = ?`

	role := &models.Role{}
	err := s.db.QueryRowContext(ctx, query, tag).Scan(&role.ID, &role.Tag, &role.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return role, nil
}
