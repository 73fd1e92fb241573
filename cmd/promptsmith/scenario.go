package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/promptsmith/promptsmith/internal/prompt"
)

func scenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Manage named variable sets",
	}
	cmd.AddCommand(scenarioSetCmd())
	cmd.AddCommand(scenarioListCmd())
	cmd.AddCommand(scenarioShowCmd())
	cmd.AddCommand(scenarioDeleteCmd())
	return cmd
}

func scenarioSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "set <name> <var=value>...",
		Short:        "Create or update a scenario from var=value pairs",
		Args:         cobra.MinimumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := parseVarFlags(args[1:])
			if err != nil {
				return err
			}

			s, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			// Merge over an existing scenario so repeated `set` calls
			// accumulate.
			existing := prompt.Scope{}
			if sc, err := s.GetScenario(cmd.Context(), args[0]); err == nil {
				existing = sc.Vars
			}
			if err := s.SaveScenario(cmd.Context(), args[0], existing.Merged(vars)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved scenario %q\n", args[0])
			return nil
		},
	}
}

func scenarioListCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "list",
		Short:        "List scenarios",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			scenarios, err := s.ListScenarios(cmd.Context())
			if err != nil {
				return err
			}
			if len(scenarios) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no scenarios")
				return nil
			}
			for _, sc := range scenarios {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  (%d vars)\n", sc.Name, len(sc.Vars))
			}
			return nil
		},
	}
}

func scenarioShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "show <name>",
		Short:        "Print a scenario's variables",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			sc, err := s.GetScenario(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			names := make([]string, 0, len(sc.Vars))
			for name := range sc.Vars {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", name, sc.Vars[name])
			}
			return nil
		},
	}
}

func scenarioDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "delete <name>",
		Short:        "Delete a scenario",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			if err := s.DeleteScenario(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted scenario %q\n", args[0])
			return nil
		},
	}
}
