package cmd

import (
	"fmt"

	"techsupport-agent/config"
	apperrors "techsupport-agent/errors"
	"techsupport-agent/knowledge"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the Postgres knowledge base with a JSON or YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap(cmd, opts)
			if err != nil {
				return err
			}
			defer config.Cleanup()

			if cfg.DatabaseURL == "" {
				return apperrors.WrapError(apperrors.ErrInvalidInput, "import requires DATABASE_URL")
			}

			ctx := cmd.Context()

			kb, err := knowledge.LoadFile(file, logger)
			if err != nil {
				return err
			}

			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			written, err := store.ImportKnowledgeBase(ctx, kb)
			if err != nil {
				logger.Error("Import failed", zap.Error(err), zap.String("file", file))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d questions in %d categories from %s\n", written, kb.Stats().Categories, file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Knowledge base file (.json, .yaml or .yml)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
