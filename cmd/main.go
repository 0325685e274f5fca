package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/neurobridge-coursegen/internal/app"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/config"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
)

func main() {
	cfg, err := config.ParseConfig(flag.NewFlagSet("coursegen-server", flag.ExitOnError), os.Args[1:])
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Error("failed to initialize app", "error", err)
		log.Sync()
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		log.Error("failed to start app", "error", err)
		a.Close()
		os.Exit(1)
	}
	if err := a.Run(ctx); err != nil {
		log.Error("server exited", "error", err)
		a.Close()
		os.Exit(1)
	}
}
