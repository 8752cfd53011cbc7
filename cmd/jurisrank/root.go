package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jurisrank/internal/config"
	logpkg "github.com/kailas-cloud/jurisrank/internal/logger"
)

type rootOptions struct {
	env string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "jurisrank",
		Short:         "Rank Dutch case law for a legal question",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "config environment (config/<env>.yaml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newQueryCmd(opts),
		newIngestCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// load reads the configuration and builds the logger for opts.env.
func (o *rootOptions) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.env)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(o.env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}
