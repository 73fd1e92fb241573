package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptsmith/promptsmith/internal/chain"
	"github.com/promptsmith/promptsmith/internal/prompt"
)

func varsCmd() *cobra.Command {
	var templateName, chainFile string
	cmd := &cobra.Command{
		Use:          "vars",
		Short:        "List the variables a template or chain expects",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case templateName != "" && chainFile != "":
				return fmt.Errorf("pass either --template or --chain, not both")
			case templateName != "":
				s, closeFn, err := openDB()
				if err != nil {
					return err
				}
				defer closeFn()

				t, err := s.GetTemplate(cmd.Context(), templateName)
				if err != nil {
					return err
				}
				for _, name := range prompt.DetectVariables(t.Spec) {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			case chainFile != "":
				c, _, err := chain.LoadFile(chainFile)
				if err != nil {
					return err
				}
				for _, name := range c.Variables() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			default:
				return fmt.Errorf("pass --template <name> or --chain <file>")
			}
		},
	}
	cmd.Flags().StringVar(&templateName, "template", "", "template name")
	cmd.Flags().StringVar(&chainFile, "chain", "", "chain file path")
	return cmd
}
