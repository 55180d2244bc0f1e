package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"eventplanner/local-app/internal/api"
	"eventplanner/local-app/internal/bus"
	"eventplanner/local-app/internal/cli"
	"eventplanner/local-app/internal/config"
	"eventplanner/local-app/internal/events"
	"eventplanner/local-app/internal/log"
	"eventplanner/local-app/internal/session"
	"eventplanner/local-app/internal/storage"
	"eventplanner/local-app/internal/ui"
)

// bootstrap initializes every component in dependency order, runs any
// script files and then the interactive shell. Deferred closes run in
// reverse order on the way out.
func bootstrap(configPath string, scripts []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	cfg, err := config.ConfigLoad(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := log.NewLogger(log.Config{
		Folder:     cfg.LogFolder,
		CommandLog: cfg.CommandLog,
		ErrorLog:   cfg.ErrorLog,
		InfoLog:    cfg.InfoLog,
		Level:      log.ParseLevel(cfg.LogLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		if err := logger.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close logger: %v\n", err)
		}
	}()

	logger.Info(ctx, "Application started", log.Fields{"config": configPath, "api": cfg.APIBaseURL})

	store, err := storage.Open(cfg, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initialize storage", log.Fields{"error": err})
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error(context.Background(), "Failed to close storage", log.Fields{"error": err})
		}
	}()

	logger.Info(ctx, "Storage initialized", log.Fields{"path": cfg.DatabasePath()})

	client := api.NewFromConfig(cfg, api.CredentialsFunc(store.Load), logger)
	b := bus.New(logger)
	sessionManager := session.NewManager(client, store, b, logger)
	eventManager := events.NewManager(client, sessionManager, b, logger)

	prompter, err := cli.NewReadlinePrompter(cfg.HistoryFile)
	if err != nil {
		logger.Error(ctx, "Failed to initialize readline", log.Fields{"error": err})
		return err
	}
	defer prompter.Close()

	out := ui.NewUI(os.Stdout, ui.UseColor(cfg.Color, os.Stdout))
	shell := cli.NewCLI(sessionManager, eventManager, out, prompter, logger)

	logger.Info(ctx, "CLI instance created", nil)

	shell.Start(ctx)

	for _, script := range scripts {
		err := shell.ExecuteScript(ctx, script)
		if errors.Is(err, cli.ErrExit) {
			logger.Info(ctx, "Exit requested by script", log.Fields{"script": script})
			return nil
		}
		if err != nil {
			logger.Error(ctx, "Script failed", log.Fields{"script": script, "error": err})
			out.Error(err.Error())
		}
	}

	if err := shell.Run(ctx); err != nil {
		logger.Error(ctx, "CLI error", log.Fields{"error": err})
		return fmt.Errorf("CLI error: %w", err)
	}

	logger.Info(ctx, "Application shutting down", nil)
	out.Println("¡Hasta pronto!")
	return nil
}
