package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mwallet-gateway/internal/application"
	"mwallet-gateway/internal/infra/metrics"
)

func newServeCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the callback HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			logger := g.logger(cfg, os.Stdout)
			metrics.MustRegister()
			metrics.SetBuildInfo(cmd.Root().Version, "", cfg.JazzCash.Environment)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, err := application.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer svc.Close()
			return svc.Serve(ctx)
		},
	}
}

