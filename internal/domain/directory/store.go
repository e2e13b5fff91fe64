package directory

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// ResolveActive reports which of the given principal IDs exist and are
// active. Missing or deactivated IDs are simply absent from the result.
func (s *Store) ResolveActive(ctx context.Context, tenantID string, ids []string) (map[string]bool, error) {
	active := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return active, nil
	}

	rows, err := s.DB.Query(ctx, `
    SELECT id
    FROM users
    WHERE tenant_id = $1 AND active AND id = ANY($2)
  `, tenantID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		active[id] = true
	}
	return active, rows.Err()
}

func (s *Store) List(ctx context.Context, tenantID string) ([]Principal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, email, role, active, created_at
    FROM users
    WHERE tenant_id = $1
    ORDER BY name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Principal
	for rows.Next() {
		var p Principal
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Role, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
