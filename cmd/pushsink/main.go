// Command pushsink is a development push gateway. It accepts the signed
// requests GatewaySender makes, verifies them with PUSH_SIGNING_SECRET and
// logs each message instead of forwarding it to FCM or APNs.
//
// Point the server at it with PUSH_GATEWAY_URL=http://localhost:8081/push.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/devicekey/pkg/config"
	"github.com/dmitrymomot/devicekey/pkg/httpserver"
	"github.com/dmitrymomot/devicekey/pkg/logger"
	"github.com/dmitrymomot/devicekey/pkg/push"
)

type sinkConfig struct {
	Addr          string        `env:"PUSH_SINK_ADDR" envDefault:":8081"`
	SigningSecret string        `env:"PUSH_SIGNING_SECRET,required"`
	MaxAge        time.Duration `env:"PUSH_SINK_MAX_AGE" envDefault:"5m"` // oldest signature accepted
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("pushsink exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		logCfg logger.Config
		cfg    sinkConfig
	)
	if err := config.Load(&logCfg); err != nil {
		return err
	}
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log, err := logger.NewFromConfig(logCfg)
	if err != nil {
		return err
	}

	mux, err := newMux(cfg, log)
	if err != nil {
		return err
	}
	return httpserver.New(httpserver.WithAddr(cfg.Addr), httpserver.WithLogger(log)).Run(ctx, mux)
}

func newMux(cfg sinkConfig, log *slog.Logger) (*http.ServeMux, error) {
	receiver, err := push.NewReceiver(cfg.SigningSecret, cfg.MaxAge, func(ctx context.Context, msg push.Message) error {
		log.InfoContext(ctx, "push received",
			slog.String("token", msg.Token),
			slog.String("title", msg.Title),
			slog.Any("data", msg.Data),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/push", receiver)
	return mux, nil
}
