// Package logger builds *slog.Logger instances for devicekey services.
//
// New assembles a text or JSON handler from functional options; NewFromConfig
// does the same from the APP_ENV, APP_NAME and LOG_LEVEL environment
// variables. Context extractors attach request-scoped values such as the
// request ID to every record logged with a context.
//
//	log, err := logger.NewFromConfig(cfg,
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "challenge approved",
//	    logger.ChallengeID(ch.ID),
//	    logger.DeviceID(dev.ID),
//	)
//
// Attribute helpers in attr.go keep key names consistent across packages.
// Error and Errors return an empty attribute for nil errors so they can be
// passed unconditionally.
package logger
