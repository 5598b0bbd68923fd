// Package httpserver wraps net/http with graceful shutdown, configurable
// timeouts, lifecycle logging and JSON health probes.
//
// Server.Run blocks until the context is cancelled, an interrupt or SIGTERM
// arrives, or Shutdown is called, then drains connections within the
// configured shutdown timeout. Start errors are joined with ErrStart and
// shutdown errors with ErrShutdown.
//
//	r := chi.NewRouter()
//	r.Get("/health/live", httpserver.LivenessHandler())
//	r.Get("/health/ready", httpserver.ReadinessHandler(log,
//		httpserver.Check{Name: "postgres", Probe: pg.Healthcheck(pool)},
//	))
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Config is loaded from HTTP_* environment variables with pkg/config.
package httpserver
