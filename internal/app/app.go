// Package app wires configuration, logging, the backend client and the
// session controller into one Application the CLI and TUI share.
package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"talino-cli/internal/api"
	"talino-cli/internal/chat"
)

type Application struct {
	Config     Config
	Logger     *slog.Logger
	Client     *api.Client
	Controller *chat.Controller

	cleanup func() error
}

// New builds an Application from cfg. interactive controls whether
// stderr logging is suppressed (the TUI owns the terminal).
func New(cfg Config, interactive bool) (*Application, error) {
	logger, cleanup := SetupLogger(cfg.LogFile, ParseLogLevel(cfg.LogLevel), interactive)

	client, err := api.NewClient(cfg.Server)
	if err != nil {
		cleanup()
		return nil, err
	}
	if err := client.LoadSession(sessionPath()); err != nil {
		logger.Warn("could not restore session cookie", "error", err)
	}

	controller := chat.NewController(client, chat.Options{
		RevealRate:      cfg.RevealCPS,
		SuggestionCount: cfg.Suggestions,
		Logger:          logger,
	})

	return &Application{
		Config:     cfg,
		Logger:     logger,
		Client:     client,
		Controller: controller,
		cleanup:    cleanup,
	}, nil
}

// ProbeIdentity resolves the current user once at startup and hands the
// result to the controller. An anonymous session is not an error.
func (a *Application) ProbeIdentity(ctx context.Context) {
	user, err := a.Client.Me(ctx)
	if err != nil {
		a.Logger.Error("identity probe failed", "error", err)
		return
	}
	if user != nil {
		a.Controller.SetUser(user)
	}
}

// Close tears down the controller, saves the session cookie and
// flushes the log file.
func (a *Application) Close() error {
	a.Controller.Close()
	if err := a.Client.SaveSession(sessionPath()); err != nil {
		a.Logger.Warn("could not save session cookie", "error", err)
	}
	if a.cleanup != nil {
		return a.cleanup()
	}
	return nil
}

func sessionPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "talino", "session.json")
	}
	return filepath.Join(base, "talino", "session.json")
}
