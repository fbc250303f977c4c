package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dropspace/dropspace/internal/server"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the dropspace HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart()
		},
	}

	return cmd
}

func runStart() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info().Msg("Starting dropspace service")

	config, err := LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	deps, err := BuildAppDependencies(ctx, config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build dependencies")
	}

	app := server.NewHTTPServer(server.HTTPServerDependencies{
		UploadController: deps.UploadController,
		LinkController:   deps.LinkController,
		TreeController:   deps.TreeController,
		WorkspaceAPIKeys: config.WorkspaceAPIKeys,
	})

	if err := app.Listen(config.HTTPAddress, fiber.ListenConfig{
		GracefulContext:       ctx,
		DisableStartupMessage: true,
	}); err != nil {
		log.Error().Err(err).Msg("HTTP server failed")
	}

	log.Info().Msg("Dropspace service stopped")
	return nil
}
