package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"Crystal3D/internal/config"
	"Crystal3D/internal/engine"
	"Crystal3D/internal/logger"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "viewer config file")
	backend := flag.String("backend", "", "override the configured backend (opengl, g3n)")
	preset := flag.String("preset", "", "override the initial preset")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if cfg.Debug {
		if l, derr := zap.NewDevelopment(); derr == nil {
			logger.InitWith(l)
		}
	} else {
		logger.Init()
	}
	defer logger.Sync()
	if err != nil {
		logger.Log.Fatal("Invalid config", zap.String("path", *configPath), zap.Error(err))
	}
	if *backend != "" {
		cfg.Backend = *backend
		if err := cfg.Validate(); err != nil {
			logger.Log.Fatal("Invalid backend", zap.Error(err))
		}
	}
	if *preset != "" {
		cfg.InitialPreset = *preset
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	viewer := engine.NewViewer(cfg)
	defer viewer.Close()
	if err := viewer.Run(ctx); err != nil {
		logger.Log.Error("Viewer stopped", zap.Error(err))
	}
}
