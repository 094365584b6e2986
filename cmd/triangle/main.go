// Command triangle opens a window and draws a single triangle with WebGPU.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-triangle/engine"
	"github.com/Carmen-Shannon/oxy-triangle/engine/config"
	"github.com/Carmen-Shannon/oxy-triangle/engine/logger"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML configuration file")
		logLevel   = flag.String("log-level", "", "override the configured log level (debug, info, warn, error)")
		once       = flag.Bool("once", false, "exit after the frame is presented")
		spirvOut   = flag.String("spirv-out", "", "write a SPIR-V build of the shader to this path")
		profile    = flag.Bool("profile", false, "log phase timings and memory statistics")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "triangle: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *once {
		cfg.Once = true
	}
	if *spirvOut != "" {
		cfg.Shader.SPIRVOut = *spirvOut
	}

	log, err := logger.New(logger.Config{
		Environment: cfg.Log.Environment,
		Level:       cfg.Log.Level,
		Service:     "triangle",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "triangle: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log, *profile); err != nil {
		log.Error("run failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func run(cfg *config.Config, log *zap.Logger, profile bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := engine.NewEngine(cfg,
		engine.WithLogger(log),
		engine.WithProfiling(profile),
	)
	if err != nil {
		return err
	}
	return eng.Run(ctx)
}
