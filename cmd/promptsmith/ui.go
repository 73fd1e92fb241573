package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/promptsmith/promptsmith/internal/chain"
	"github.com/promptsmith/promptsmith/internal/logging"
	"github.com/promptsmith/promptsmith/internal/tui"
)

func uiCmd() *cobra.Command {
	var provider, scenario string
	var varFlags []string
	var noHistory bool
	cmd := &cobra.Command{
		Use:          "ui <file.yaml>",
		Short:        "Run a chain in the interactive terminal UI",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, fileVars, err := chain.LoadFile(args[0])
			if err != nil {
				return err
			}

			s, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			scope, err := buildScope(cmd.Context(), s, fileVars, scenario, varFlags)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, gen, err := buildGenerator(cmd.Context(), cfg, provider)
			if err != nil {
				return err
			}

			// Keep executor log lines off the alternate screen.
			restore := logging.Redirect(io.Discard)
			res, runErr := tui.Run(c, gen, scope)
			restore()

			if !noHistory && len(res.Stages) > 0 {
				if _, err := s.RecordRun(cmd.Context(), res); err != nil {
					log.Warn().Err(err).Msg("failed to record run history")
				}
			}
			if runErr != nil {
				return fmt.Errorf("chain failed: %w", runErr)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "provider name from config (default: default_provider)")
	cmd.Flags().StringVar(&scenario, "scenario", "", "scenario supplying variable values")
	cmd.Flags().StringArrayVar(&varFlags, "var", nil, "variable as name=value (repeatable)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "skip recording the run in history")
	return cmd
}
