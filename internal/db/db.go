package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"peoplework/internal/config"
)

// NewPool abre el pool pgx contra el Postgres del marketplace. El tamaño es
// deliberadamente corto: el tráfico de citas y reseñas es ligero y el API
// corre en pocas instancias.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Ping confirma conectividad antes de arrancar el servidor; un Postgres
// inalcanzable en el boot es fatal.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}
