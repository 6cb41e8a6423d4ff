package storage

import (
	"context"
	"delivery-dispatch-service/internal/adapters/repositories"
	"delivery-dispatch-service/internal/config"
	"delivery-dispatch-service/internal/platform/db"
	"delivery-dispatch-service/internal/ports"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Stores bundles the repositories of the selected backend with a closer for
// the underlying connection.
type Stores struct {
	Backend     string
	Drivers     ports.DriverRepository
	Assignments ports.AssignmentRepository

	close func() error
}

func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects to the backend named in cfg and prepares its schema.
func Open(ctx context.Context, cfg config.Config) (*Stores, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return &Stores{
			Backend:     cfg.Store.Backend,
			Drivers:     repositories.NewMemoryDriverRepository(),
			Assignments: repositories.NewMemoryAssignmentRepository(),
		}, nil

	case config.BackendSqlite:
		sqlDB, err := db.OpenSqlite(ctx, cfg.Store.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		if err := repositories.InitSqliteSchema(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("open storage: %w", err)
		}
		return &Stores{
			Backend:     cfg.Store.Backend,
			Drivers:     repositories.NewSqliteDriverRepository(sqlDB),
			Assignments: repositories.NewSqliteAssignmentRepository(sqlDB),
			close:       sqlDB.Close,
		}, nil

	case config.BackendPostgres:
		sqlDB, err := db.Open(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		if err := repositories.InitPostgresSchema(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("open storage: %w", err)
		}
		return &Stores{
			Backend:     cfg.Store.Backend,
			Drivers:     repositories.NewSQLDriverRepository(sqlDB),
			Assignments: repositories.NewSQLAssignmentRepository(sqlDB),
			close:       sqlDB.Close,
		}, nil

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Store.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("open storage: ping redis at %s: %w", cfg.Store.RedisAddr, err)
		}
		return &Stores{
			Backend:     cfg.Store.Backend,
			Drivers:     repositories.NewRedisDriverRepository(rdb),
			Assignments: repositories.NewRedisAssignmentRepository(rdb),
			close:       rdb.Close,
		}, nil
	}

	return nil, fmt.Errorf("open storage: unknown backend %q", cfg.Store.Backend)
}
