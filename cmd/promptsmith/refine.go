package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/promptsmith/promptsmith/internal/refine"
)

func refineCmd() *cobra.Command {
	var provider string
	var apply bool
	cmd := &cobra.Command{
		Use:          "refine <template>",
		Short:        "Critique a template via the structured-output capability",
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

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, gen, err := buildGenerator(cmd.Context(), cfg, provider)
			if err != nil {
				return err
			}

			critique, err := refine.Run(cmd.Context(), gen, t.Spec)
			if err != nil {
				return err
			}

			md := critique.Markdown()
			if rendered, err := glamour.Render(md, "auto"); err == nil {
				md = rendered
			}
			fmt.Fprintln(cmd.OutOrStdout(), md)

			if apply {
				if critique.Revised.Empty() {
					return fmt.Errorf("critique contained no revised prompt to apply")
				}
				if err := s.SaveTemplate(cmd.Context(), args[0], critique.Revised); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied revised prompt to template %q\n", args[0])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "provider name from config (default: default_provider)")
	cmd.Flags().BoolVar(&apply, "apply", false, "save the revised prompt back to the template")
	return cmd
}
