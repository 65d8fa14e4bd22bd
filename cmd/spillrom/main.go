// Command spillrom runs the party-game coordination server: room
// registry, websocket hub, game engine and demo-mode bots behind a
// single HTTP listener.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spillrom/spillrom/internal/config"
	"github.com/spillrom/spillrom/internal/game/room"
	"github.com/spillrom/spillrom/internal/gameserver"
	"github.com/spillrom/spillrom/internal/observability"
	"github.com/spillrom/spillrom/internal/server"
)

func main() {
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "spillrom",
		Short:         "Classroom party-game server",
		Long:          "spillrom hosts room-code based party games played from phones against a shared screen.",
		Version:       gameserver.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"path to config file (also SPILLROM_CONFIG)")
	return cmd
}

func run(configPath string) error {
	if configPath == "" {
		configPath = os.Getenv("SPILLROM_CONFIG")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	publicURL := cfg.Server.PublicURL
	if publicURL == "" {
		publicURL = "http://" + cfg.Server.Addr()
	}

	registry := room.NewRegistry(cfg.Rooms.CodeLength)
	hub := gameserver.NewHub(logger)
	service := gameserver.NewService(registry, hub, cfg.Demo.MaxBots, logger)
	hub.Bind(service)

	httpSrv := gameserver.NewHTTPServer(cfg.Server.Addr(), publicURL, hub, service, registry, logger)
	sweeper := gameserver.NewSweeper(service, cfg.Rooms.CleanupInterval, cfg.Rooms.MaxAge, logger)

	logger.Info("spillrom starting",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("publicUrl", publicURL))

	lc := server.NewLifecycle(logger)
	lc.Add("http", httpSrv)
	lc.Add("sweeper", sweeper)
	return lc.Run(context.Background())
}
