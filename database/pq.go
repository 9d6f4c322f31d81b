package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/lib/pq"
	"github.com/sahilchouksey/noticeboard-api/config"
)

const preflightTimeout = 5 * time.Second

// Preflight connects to PostgreSQL through database/sql and lib/pq before
// any migration runs, so a misconfigured server is reported in plain words
// instead of as a failed AutoMigrate.
func Preflight(ctx context.Context, env *config.EnvironmentVariable) error {
	db, err := sql.Open("postgres", PostgresDSN(env))
	if err != nil {
		return fmt.Errorf("invalid PostgreSQL settings: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, preflightTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return DescribeConnectError(err, env)
	}

	var version string
	if err := db.QueryRowContext(ctx, "SHOW server_version").Scan(&version); err != nil {
		return DescribeConnectError(err, env)
	}

	log.Infof("PostgreSQL %s reachable at %s:%s/%s", version, env.DB_HOST, env.DB_PORT, env.DB_NAME)
	return nil
}

// DescribeConnectError maps the server's SQLSTATE on a failed connection to
// the setting that most likely needs fixing
func DescribeConnectError(err error, env *config.EnvironmentVariable) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return fmt.Errorf("cannot reach PostgreSQL at %s:%s: %w", env.DB_HOST, env.DB_PORT, err)
	}

	switch pqErr.Code {
	case "28P01", "28000":
		return fmt.Errorf("PostgreSQL rejected user %q, check DB_USER_NAME and DB_PASSWORD: %w", env.DB_USER_NAME, err)
	case "3D000":
		return fmt.Errorf("database %q does not exist, create it or fix DB_NAME: %w", env.DB_NAME, err)
	case "57P03":
		return fmt.Errorf("PostgreSQL is starting up or shutting down, retry shortly: %w", err)
	default:
		return fmt.Errorf("PostgreSQL error %s (%s): %w", pqErr.Code, pqErr.Code.Name(), err)
	}
}
