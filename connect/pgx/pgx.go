// Package pgx provides the optional Postgres connection used by
// manager/configstore to poll a durably-stored Config row instead of a
// local config file.
//
//	w, _ := connect.ParseWiring(ctx)
//	pool, err := pgx.Connect(ctx, w.Egress("configdb"))
package pgx

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // register "pgx" database/sql driver
	"github.com/matgreaves/evtrace/connect"
)

// DSN builds a Postgres connection string from endpoint attributes.
// Uses PGHOST/PGPORT/PGUSER/PGPASSWORD/PGDATABASE with sslmode=disable.
func DSN(ep connect.Endpoint) string {
	return connect.PostgresDSN(ep)
}

// Connect returns a pgx connection pool from a resolved Postgres endpoint.
func Connect(ctx context.Context, ep connect.Endpoint) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, DSN(ep))
}

// OpenDB returns a *sql.DB backed by the pgx driver.
func OpenDB(ep connect.Endpoint) (*sql.DB, error) {
	return sql.Open("pgx", DSN(ep))
}
