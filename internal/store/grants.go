package store

import (
	"context"
	"fmt"
)

// grantRepo implements GrantRepository.
type grantRepo struct {
	pool PgxPool
}

func (r *grantRepo) Share(ctx context.Context, eventID, userID int64, permissionName string) (*Permission, error) {
	defer observeDB(ctx, "db.grants.share")()

	// The vocabulary entry is created lazily and is never rolled back: a
	// permission name that lost the grant insert is acceptable residue.
	const upsert = `INSERT INTO permissions (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name=EXCLUDED.name
RETURNING id, name, description`

	var perm Permission
	if err := r.pool.QueryRow(ctx, upsert, permissionName).Scan(&perm.ID, &perm.Name, &perm.Description); err != nil {
		return nil, fmt.Errorf("upsert permission: %w", err)
	}

	// Granting the same permission twice is a no-op, not an error.
	const grant = `INSERT INTO user_permissions (event_id, user_id, permission_id)
VALUES ($1, $2, $3)
ON CONFLICT ON CONSTRAINT user_permissions_grant_unique DO NOTHING`

	if _, err := r.pool.Exec(ctx, grant, eventID, userID, perm.ID); err != nil {
		return nil, fmt.Errorf("insert grant: %w", err)
	}
	return &perm, nil
}

func (r *grantRepo) ListByEvent(ctx context.Context, eventID int64) ([]PermissionGrant, error) {
	defer observeDB(ctx, "db.grants.list_by_event")()

	const q = `SELECT up.id, up.event_id, up.user_id, up.permission_id, p.name
FROM user_permissions up
JOIN permissions p ON p.id = up.permission_id
WHERE up.event_id=$1
ORDER BY up.id ASC`

	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	var grants []PermissionGrant
	for rows.Next() {
		var g PermissionGrant
		if err := rows.Scan(&g.ID, &g.EventID, &g.UserID, &g.PermissionID, &g.PermissionName); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	return grants, nil
}

func (r *grantRepo) Revoke(ctx context.Context, eventID, userID int64, permissionName string) error {
	defer observeDB(ctx, "db.grants.revoke")()

	// Revoking a grant that was never made is a silent no-op.
	const q = `DELETE FROM user_permissions up
USING permissions p
WHERE up.permission_id = p.id AND up.event_id=$1 AND up.user_id=$2 AND p.name=$3`

	if _, err := r.pool.Exec(ctx, q, eventID, userID, permissionName); err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	return nil
}
