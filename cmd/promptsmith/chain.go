package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/promptsmith/promptsmith/internal/chain"
)

func chainCmd() *cobra.Command {
	var provider, scenario string
	var varFlags []string
	var noHistory bool
	cmd := &cobra.Command{
		Use:          "chain <file.yaml>",
		Short:        "Run a multi-stage prompt chain",
		Long:         "Run a multi-stage prompt chain defined in YAML. Each stage can reference earlier outputs as {{output_1}}, {{output_2}}, and so on; the first failing stage halts the chain.",
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
			providerName, gen, err := buildGenerator(cmd.Context(), cfg, provider)
			if err != nil {
				return err
			}
			log.Debug().Str("chain", c.Name()).Str("provider", providerName).Int("stages", c.Len()).Msg("running chain")

			out := cmd.OutOrStdout()
			ex := chain.NewExecutor(gen, chain.WithObserver(func(ev chain.Event) {
				switch ev.Kind {
				case chain.EventStageStarted:
					fmt.Fprintf(out, "\n── stage %d/%d: %s ──\n", ev.StageIndex+1, c.Len(), ev.Stage.Name())
				case chain.EventStageChunk:
					fmt.Fprint(out, ev.Chunk)
				case chain.EventStageFinished:
					fmt.Fprintln(out)
				}
			}))

			res, runErr := ex.Run(cmd.Context(), c, scope)

			if !noHistory && len(res.Stages) > 0 {
				if runID, err := s.RecordRun(cmd.Context(), res); err != nil {
					log.Warn().Err(err).Msg("failed to record run history")
				} else {
					fmt.Fprintf(out, "\nrecorded run %s\n", runID)
				}
			}

			if runErr != nil {
				return fmt.Errorf("chain failed: %w", runErr)
			}
			fmt.Fprintf(out, "chain %q completed: %d/%d stages\n", c.Name(), c.Len(), c.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "provider name from config (default: default_provider)")
	cmd.Flags().StringVar(&scenario, "scenario", "", "scenario supplying variable values")
	cmd.Flags().StringArrayVar(&varFlags, "var", nil, "variable as name=value (repeatable)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "skip recording the run in history")
	return cmd
}
