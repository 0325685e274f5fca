package app

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/neurobridge-coursegen/internal/http"
	"github.com/yungbote/neurobridge-coursegen/internal/observability"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/config"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
	"github.com/yungbote/neurobridge-coursegen/internal/realtime"
	"github.com/yungbote/neurobridge-coursegen/internal/realtime/bus"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	Log      *logger.Logger
	Cfg      config.Config
	Server   *http.Server
	Services Services
	SSEHub   *realtime.SSEHub
	Bus      bus.Bus
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context, log *logger.Logger, cfg config.Config) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.LogMode,
		Version:     cfg.Version,
	})

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics(log)
	}

	b, err := newBus(log, cfg)
	if err != nil {
		return nil, err
	}
	ssehub := realtime.NewSSEHub(log)

	serviceset, err := NewServices(log, cfg, b, metrics)
	if err != nil {
		_ = b.Close()
		return nil, err
	}

	handlerset := wireHandlers(log, cfg, serviceset, ssehub, metrics)
	router := wireRouter(log, cfg, handlerset, metrics)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Server:       &http.Server{Engine: router},
		Services:     serviceset,
		SSEHub:       ssehub,
		Bus:          b,
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}, nil
}

func newBus(log *logger.Logger, cfg config.Config) (bus.Bus, error) {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set; realtime events stay in-process")
		return bus.NewLocalBus(), nil
	}
	b, err := bus.NewRedisBus(log, bus.RedisConfig{Addr: cfg.RedisAddr, Channel: cfg.RedisChannel})
	if err != nil {
		return nil, fmt.Errorf("init redis bus: %w", err)
	}
	return b, nil
}

// Start forwards bus messages into the local hub and starts the optional
// metrics listener.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
		return fmt.Errorf("start realtime forwarder: %w", err)
	}
	a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
	return nil
}

// Run serves HTTP until ctx ends.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
	return a.Server.Run(ctx, a.Cfg.HTTPAddr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Bus != nil {
		_ = a.Bus.Close()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
