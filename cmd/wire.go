package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bnema/bws-ssh-agent/internal/adapters/secrets/bws"
	"github.com/bnema/bws-ssh-agent/internal/application"
	"github.com/bnema/bws-ssh-agent/internal/config"
	"github.com/bnema/bws-ssh-agent/internal/daemon"
	"github.com/bnema/bws-ssh-agent/internal/logging"
)

// isSupervisedChild reports whether this process was spawned by
// StartBackground. A child logs to file and never daemonizes again.
func isSupervisedChild() bool {
	return os.Getenv(daemon.ChildEnvVar) == "1"
}

// wireSupervisor builds a supervisor over the per-user paths, with the
// agent.socket_path override applied so stop, restart and status manage
// the same socket the daemon binds.
func wireSupervisor(configPath string) (*daemon.Supervisor, error) {
	logger, err := logging.Setup("info", true)
	if err != nil {
		return nil, fmt.Errorf("set up logging: %w", err)
	}

	paths := daemon.UserPaths()
	socket, err := config.SocketOverride(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if socket != "" {
		paths.Socket = socket
	}

	return daemon.NewSupervisor(paths, logger), nil
}

// runForeground wires the full serving stack and blocks until the
// server exits: config, provider, shared keyring, unix-socket server.
func runForeground(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := logging.Setup(cfg.LogLevel, !isSupervisedChild())
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	slog.SetDefault(logger)

	provider := bws.NewProvider(cfg.AccessToken)
	keyring := application.NewKeyring(provider, cfg.References())

	paths := daemon.UserPaths()
	if cfg.SocketPath != "" {
		paths.Socket = cfg.SocketPath
	}

	logger.Info("starting agent",
		"keys", keyring.Len(),
		"socket", paths.Socket,
		"supervised", isSupervisedChild(),
	)

	return daemon.NewServer(paths, keyring, logger).Run(ctx)
}
