package db

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver "pgx"
	"github.com/jmoiron/sqlx"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/telemetry"
)

const driverName = "pgx"

// Pool sizes the database/sql pool behind a *sqlx.DB.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
	PingTimeout time.Duration
}

// ServicePool suits the long-running HTTP services.
func ServicePool() Pool {
	return Pool{MaxOpen: 10, MaxIdle: 5, MaxLifetime: time.Hour, MaxIdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second}
}

// CLIPool suits one-shot legalctl runs.
func CLIPool() Pool {
	return Pool{MaxOpen: 2, MaxIdle: 1, MaxLifetime: 10 * time.Minute, PingTimeout: 10 * time.Second}
}

// FromEnv returns p with any DB_* overrides applied.
func (p Pool) FromEnv() Pool {
	envInt("DB_MAX_OPEN_CONNS", &p.MaxOpen)
	envInt("DB_MAX_IDLE_CONNS", &p.MaxIdle)
	envDuration("DB_CONN_MAX_LIFETIME", &p.MaxLifetime)
	envDuration("DB_CONN_MAX_IDLE_TIME", &p.MaxIdleTime)
	envDuration("DB_PING_TIMEOUT", &p.PingTimeout)
	return p
}

func (p Pool) apply(db *sqlx.DB) {
	if p.MaxOpen > 0 {
		db.SetMaxOpenConns(p.MaxOpen)
	}
	if p.MaxIdle > 0 {
		db.SetMaxIdleConns(p.MaxIdle)
	}
	if p.MaxLifetime > 0 {
		db.SetConnMaxLifetime(p.MaxLifetime)
	}
	if p.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(p.MaxIdleTime)
	}
}

// IsPostgresURL reports whether url selects the Postgres backend.
func IsPostgresURL(url string) bool {
	u := strings.ToLower(strings.TrimSpace(url))
	return strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://")
}

var open = func(dsn string) (*sqlx.DB, error) {
	return sqlx.Open(driverName, dsn)
}

// Connect opens a pool for databaseURL, sizes it and pings it. Callers share
// the returned handle for the life of the process.
func Connect(ctx context.Context, databaseURL string, pool Pool) (*sqlx.DB, error) {
	if !IsPostgresURL(databaseURL) {
		return nil, fmt.Errorf("not a postgres url")
	}
	db, err := open(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pool.apply(db)

	timeout := pool.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	stats := db.Stats()
	telemetry.Info("postgres.connected", map[string]any{
		"max_open": stats.MaxOpenConnections,
		"open":     stats.OpenConnections,
	})
	return db, nil
}

func envInt(key string, dst *int) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "value": raw})
		return
	}
	*dst = v
}

func envDuration(key string, dst *time.Duration) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "value": raw})
		return
	}
	*dst = v
}
