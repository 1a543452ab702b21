package store

import "context"

// Store aggregates repositories backed by PostgreSQL.
type Store struct {
	pool PgxPool

	Users  UserRepository
	Events EventRepository
	Grants GrantRepository
}

// New wires concrete repository implementations with a shared connection pool.
func New(pool PgxPool) *Store {
	return &Store{
		pool:   pool,
		Users:  &userRepo{pool: pool},
		Events: &eventRepo{pool: pool},
		Grants: &grantRepo{pool: pool},
	}
}

// HealthCheck verifies that the underlying database is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	defer observeDB(ctx, "db.healthcheck")()
	return s.pool.Ping(ctx)
}
