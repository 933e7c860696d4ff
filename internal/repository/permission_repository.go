package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/classroom-gateway/internal/domain"
)

// PermissionRepository resolves permission type ids to names.
type PermissionRepository interface {
	GetByID(ctx context.Context, id int) (*domain.Permission, error)
}

type permissionRepository struct {
	pool *pgxpool.Pool
}

// NewPermissionRepository returns a Postgres-backed implementation.
func NewPermissionRepository(pool *pgxpool.Pool) PermissionRepository {
	return &permissionRepository{pool: pool}
}

func (r *permissionRepository) GetByID(ctx context.Context, id int) (*domain.Permission, error) {
	const query = `SELECT id, name FROM permission_types WHERE id=$1`

	var perm domain.Permission
	if err := r.pool.QueryRow(ctx, query, id).Scan(&perm.ID, &perm.Name); err != nil {
		return nil, err
	}
	return &perm, nil
}
