// Package pg wires PostgreSQL into devicekey through pgx/v5.
//
// Connect opens a pgxpool.Pool configured from PG_* environment variables and
// retries with exponential backoff (sethvargo/go-retry) while the database is
// starting. Migrate runs goose migrations from an fs.FS over the same pool,
// and Healthcheck exposes a ping for readiness probes.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil { ... }
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, pgstore.Migrations, "migrations", cfg, log); err != nil { ... }
//
// IsNotFoundError, IsDuplicateKeyError and IsForeignKeyViolationError
// classify driver errors for store implementations.
package pg
