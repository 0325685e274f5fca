package app

import (
	"context"
	"fmt"

	"github.com/yungbote/neurobridge-coursegen/internal/content/blockgen"
	"github.com/yungbote/neurobridge-coursegen/internal/content/showcase"
	"github.com/yungbote/neurobridge-coursegen/internal/course"
	"github.com/yungbote/neurobridge-coursegen/internal/gateway"
	"github.com/yungbote/neurobridge-coursegen/internal/observability"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/config"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
	"github.com/yungbote/neurobridge-coursegen/internal/realtime/bus"
)

type Services struct {
	Gateway *gateway.Client
	Blocks  *blockgen.Generator
	Lessons *showcase.Builder
	Courses *course.Service
}

// NewServices wires the generation pipeline. b and metrics are optional;
// the CLI runs without either.
func NewServices(log *logger.Logger, cfg config.Config, b bus.Bus, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	observers := gateway.Observers{
		gateway.UsageObserverFunc(func(_ context.Context, ev gateway.UsageEvent) {
			log.Debug("AI usage changed", "operation", ev.Operation, "tokens", ev.TokensUsed, "cost", ev.Cost)
		}),
	}
	if b != nil {
		observers = append(observers, bus.NewUsagePublisher(b, log))
	}
	gwOpts := gateway.Options{
		BaseURL:       cfg.GatewayBaseURL,
		Token:         cfg.GatewayToken,
		Timeout:       cfg.GatewayTimeout,
		MaxAttempts:   cfg.MaxAttempts,
		StatusTTL:     cfg.StatusTTL,
		Logger:        log,
		UsageObserver: observers,
	}
	if metrics != nil {
		gwOpts.UsageObserver = append(observers, metrics)
		gwOpts.Requests = metrics
	}
	gw, err := gateway.New(gwOpts)
	if err != nil {
		return Services{}, fmt.Errorf("init gateway: %w", err)
	}

	blockGen := blockgen.New(gw, log)
	lessons := showcase.NewBuilder(blockGen, gw, log, showcase.Options{})

	var pub course.Publisher
	if b != nil {
		pub = b
	}
	var obs course.RunObserver
	if metrics != nil {
		obs = metrics
	}
	courses := course.NewService(
		course.Deps{Gateway: gw, Builder: lessons, Logger: log},
		course.Options{SkipThumbnails: !cfg.Thumbnails, LogUsage: cfg.LogUsage},
		pub, obs,
	)

	return Services{
		Gateway: gw,
		Blocks:  blockGen,
		Lessons: lessons,
		Courses: courses,
	}, nil
}
