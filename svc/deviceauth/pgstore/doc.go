// Package pgstore persists deviceauth state in PostgreSQL through pgx/v5.
//
// The schema ships as embedded goose migrations; apply them with
// pg.Migrate(ctx, pool, pgstore.Migrations, pgstore.MigrationsDir, cfg, log)
// before serving. Users are owned elsewhere; EnsureUser mirrors a known user
// ID into the users table so devices and secrets can reference it.
//
// Challenge consumption is one conditional UPDATE, which gives the
// single-approval guarantee deviceauth.ChallengeStorage requires without an
// explicit transaction.
package pgstore
