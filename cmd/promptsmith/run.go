package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var provider, scenario string
	var varFlags []string
	cmd := &cobra.Command{
		Use:          "run <template>",
		Short:        "Run one template against a provider, streaming the output",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			t, err := s.GetTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			scope, err := buildScope(cmd.Context(), s, nil, scenario, varFlags)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			name, gen, err := buildGenerator(cmd.Context(), cfg, provider)
			if err != nil {
				return err
			}

			request := t.Spec.Resolved(scope).Assemble()
			log.Debug().Str("template", args[0]).Str("provider", name).Msg("running prompt")

			out := cmd.OutOrStdout()
			if err := gen.Stream(cmd.Context(), request, func(chunk string) {
				fmt.Fprint(out, chunk)
			}); err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "provider name from config (default: default_provider)")
	cmd.Flags().StringVar(&scenario, "scenario", "", "scenario supplying variable values")
	cmd.Flags().StringArrayVar(&varFlags, "var", nil, "variable as name=value (repeatable)")
	return cmd
}
