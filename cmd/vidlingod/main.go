package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vidlingo/internal/config"
	"vidlingo/internal/daemon"
	"vidlingo/internal/deps"
	"vidlingo/internal/logging"
	"vidlingo/internal/notifications"
	"vidlingo/internal/pipeline"
	"vidlingo/internal/preflight"
	"vidlingo/internal/queue"
	"vidlingo/internal/storage"
	"vidlingo/internal/workflow"
)

func main() {
	configFlag := flag.String("config", "", "Configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configFlag); err != nil {
		fmt.Fprintf(os.Stderr, "vidlingod: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	for _, dep := range deps.MissingRequired(preflight.CheckSystemDeps(cfg)) {
		logger.Warn("required binary missing",
			logging.String(logging.FieldEventType, "dependency_missing"),
			logging.String("dependency", dep.Name),
			logging.String("detail", dep.Detail),
			logging.String(logging.FieldErrorHint, dep.Description),
		)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open queue store: %w", err)
	}

	orchestrator, err := pipeline.Build(cfg, pipeline.ConfigFromApp(cfg), logger)
	if err != nil {
		_ = store.Close()
		return err
	}

	notifier := notifications.NewService(cfg, logger)
	defer func() {
		if err := notifications.Close(notifier); err != nil {
			logger.Warn("close notifier", logging.Error(err))
		}
	}()

	opts := []workflow.Option{workflow.WithNotifier(notifier)}
	uploader, err := storage.New(cfg, logger)
	if err != nil {
		_ = store.Close()
		return err
	}
	if uploader != nil {
		opts = append(opts, workflow.WithUploader(uploader))
	}

	manager := workflow.NewManager(cfg, store, orchestrator, logger, opts...)
	d, err := daemon.New(cfg, store, logger, manager)
	if err != nil {
		_ = store.Close()
		return err
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("vidlingod shutting down", logging.String(logging.FieldEventType, "daemon_stopping"))
	return nil
}
