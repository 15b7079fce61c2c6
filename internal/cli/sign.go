package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mwallet-gateway/internal/domain/model"
	"mwallet-gateway/internal/infra/payment"
)

func newSignCommand(g *globalFlags) *cobra.Command {
	var salt string
	cmd := &cobra.Command{
		Use:   "sign key=value...",
		Short: "Print the pp_SecureHash of a field set",
		Long:  `Compute the secure hash over the given fields. Uses --salt, or the active environment's integrity salt from the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(args)
			if err != nil {
				return err
			}
			if salt == "" {
				cfg, err := g.load()
				if err != nil {
					return err
				}
				salt = cfg.JazzCash.Credentials().IntegritySalt
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), payment.Sign(fields, salt))
			return err
		},
	}
	cmd.Flags().StringVar(&salt, "salt", "", "integrity salt (defaults to the configured one)")
	return cmd
}

func newVerifyCommand(g *globalFlags) *cobra.Command {
	var salt string
	cmd := &cobra.Command{
		Use:   "verify key=value...",
		Short: "Verify the pp_SecureHash of a callback field set",
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(args)
			if err != nil {
				return err
			}
			if salt == "" {
				cfg, err := g.load()
				if err != nil {
					return err
				}
				salt = cfg.JazzCash.Credentials().IntegritySalt
			}
			verdict := payment.NewVerifier(salt).Verify(fields)
			n := model.Notification{Fields: fields}
			fmt.Fprintf(cmd.OutOrStdout(), "%s txn_ref=%s response_code=%s\n", verdict, n.TransactionRef(), n.ResponseCode())
			if !verdict.Verified() {
				return fmt.Errorf("callback rejected: %s", verdict)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&salt, "salt", "", "integrity salt (defaults to the configured one)")
	return cmd
}
