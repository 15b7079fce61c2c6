package cli

import (
	"github.com/spf13/cobra"

	"mwallet-gateway/internal/application"
)

func newStatusCommand(g *globalFlags) *cobra.Command {
	var ref string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query the status of a transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			svc, err := application.New(cmd.Context(), cfg, g.logger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer svc.Close()

			resp, err := svc.Payments.Status(cmd.Context(), ref)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&ref, "ref", "", "transaction reference")
	_ = cmd.MarkFlagRequired("ref")
	return cmd
}
