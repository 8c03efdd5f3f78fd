// Package cmd wires configuration, logging and the reasoning engine into
// the command-line entry points.
package cmd

import (
	"fmt"
	"os"

	"techsupport-agent/config"
	apperrors "techsupport-agent/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type rootOptions struct {
	configFile string
	logLevel   string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "techsupport-agent",
		Short:         "Answer IT-support questions from a knowledge base and symptom rules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to a config file (default: config.yaml in ., .. or ./config)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(opts),
		newAskCmd(opts),
		newImportCmd(opts),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates bad input from an unreachable database and broken
// data files so scripts can tell them apart.
func exitCode(err error) int {
	switch {
	case apperrors.IsInvalidInput(err):
		return 2
	case apperrors.IsServiceUnavailable(err):
		return 3
	case apperrors.IsKnowledgeBase(err), apperrors.IsRegistry(err):
		return 4
	default:
		return 1
	}
}

// bootstrap loads configuration and builds the logger. Flags override the
// config file and environment.
func bootstrap(cmd *cobra.Command, opts *rootOptions) (*config.Config, *zap.Logger, error) {
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if opts.configFile != "" {
		viper.SetConfigFile(opts.configFile)
	}
	if err := viper.BindPFlag("LOG_LEVEL", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
		return nil, nil, err
	}
	if flag := cmd.Flags().Lookup("port"); flag != nil {
		if err := viper.BindPFlag("WEB_PORT", flag); err != nil {
			return nil, nil, err
		}
	}

	cfg := config.Load(tempLogger)

	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to re-initialize logger with configured level: %w", err)
	}
	return cfg, logger, nil
}
