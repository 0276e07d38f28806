package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/aggregate/internal/logging"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Build entity trees from declarative rules",
		Long: `aggregate applies builder rules (YAML) to input documents (YAML or JSON):
fields are aliased, cast and validated, and nested collections are reconciled by key.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringP("rules", "r", "", "Rules file (YAML)")
	cmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error, off)")

	cmd.AddCommand(buildCmd(), validateCmd(), versionCmd())
	return cmd
}

// newLogger builds the logger selected by --log-level. "off" discards everything.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	levelFlag, _ := cmd.Flags().GetString("log-level")
	if levelFlag == "off" {
		return logging.NewNop(), nil
	}
	level, err := logging.ParseLevel(levelFlag)
	if err != nil {
		return nil, err
	}
	if w := cmd.ErrOrStderr(); w != os.Stderr {
		return logging.NewWriter(w, level), nil
	}
	return logging.New(level), nil
}
