package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"ytfinder/internal/infra/gateway"
	"ytfinder/internal/infra/swr"
	"ytfinder/internal/infra/telemetry"
	"ytfinder/internal/infra/upstream"
)

// Application wires the upstream client, the SWR engine, the MCP gateway
// and the observability surface together.
type Application struct {
	cfg      *Config
	logger   *zap.Logger
	engine   *swr.Engine
	gateway  *gateway.Gateway
	registry *prometheus.Registry
}

func NewApplication(cfg *Config, v *viper.Viper, logger *zap.Logger) (*Application, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewPrometheusMetrics(registry)

	client, err := upstream.New(upstream.Options{
		BaseURL:    cfg.Upstream.BaseURL,
		VideosPath: cfg.Upstream.VideosPath,
		UserAgent:  cfg.Upstream.UserAgent,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	engine := swr.NewEngine(swr.Options{
		Fetcher: client,
		Policy:  cfg.Cache.Policy(),
		Logger:  logger,
		Metrics: metrics,
	})

	gw, err := gateway.NewGateway(gateway.Options{
		Engine:    engine,
		Logger:    logger,
		Metrics:   metrics,
		Transport: cfg.Server.Transport,
		HTTPAddr:  cfg.Server.HTTPAddr,
		HTTPPath:  cfg.Server.HTTPPath,
	})
	if err != nil {
		return nil, err
	}

	if v != nil && v.ConfigFileUsed() != "" {
		WatchCachePolicy(v, engine, logger)
	}

	return &Application{
		cfg:      cfg,
		logger:   logger.Named("app"),
		engine:   engine,
		gateway:  gw,
		registry: registry,
	}, nil
}

// Run serves until the context is canceled, then drains any in-flight
// background refresh.
func (a *Application) Run(ctx context.Context) error {
	if a.cfg.Observability.Enabled {
		go func() {
			err := telemetry.StartHTTPServer(ctx, telemetry.HTTPServerOptions{
				Addr:       a.cfg.Observability.ListenAddress,
				Engine:     a.engine,
				Registry:   a.registry,
				DebugToken: a.cfg.Observability.DebugToken,
			}, a.logger)
			if err != nil {
				a.logger.Error("observability server exited", zap.Error(err))
			}
		}()
	}

	err := a.gateway.Run(ctx)
	a.engine.Close()
	return err
}
