// Package cli implements the mwallet command line tool.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mwallet-gateway/internal/config"
	"mwallet-gateway/internal/infra/logging"
)

type globalFlags struct {
	configPath string
	dev        bool
}

// NewRootCommand builds the mwallet command tree.
func NewRootCommand(version string) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "mwallet",
		Short:         "JazzCash MWallet merchant client",
		Long:          `mwallet signs and sends JazzCash mobile-wallet requests, verifies callbacks and runs the callback server.`,
		Version:       version,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "config.yaml", "path to YAML config file")
	root.PersistentFlags().BoolVar(&g.dev, "dev", false, "developer mode (console logs, no secret redaction)")

	root.AddCommand(
		newSignCommand(g),
		newVerifyCommand(g),
		newInitiateCommand(g),
		newStatusCommand(g),
		newServeCommand(g),
	)
	return root
}

func (g *globalFlags) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(g.configPath, g.dev)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func (g *globalFlags) logger(cfg *config.Config, w io.Writer) *zerolog.Logger {
	return logging.NewWithWriter(w, cfg.Log, g.dev)
}

// parseFields turns key=value arguments into a field mapping.
func parseFields(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("argument %q is not key=value", a)
		}
		out[k] = v
	}
	return out, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
