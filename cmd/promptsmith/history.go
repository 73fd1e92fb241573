package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded chain runs",
	}
	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyShowCmd())
	return cmd
}

func historyListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List recent runs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			runs, err := s.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no recorded runs")
				return nil
			}
			for _, r := range runs {
				line := fmt.Sprintf("%s  %s  %s  %s", r.RunID, r.StartedAt, r.ChainName, r.Status)
				if r.FailedStage != "" {
					line += "  (failed at: " + r.FailedStage + ")"
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	return cmd
}

func historyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "show <run-id>",
		Short:        "Print one run's stage outcomes and outputs",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			run, stages, err := s.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "chain %q  %s  %s (%s)\n", run.ChainName, run.Status, run.StartedAt, run.Duration)
			for _, st := range stages {
				fmt.Fprintf(out, "\n── stage %d: %s [%s] ──\n", st.StageIndex, st.Name, st.Status)
				if st.Output != "" {
					fmt.Fprintln(out, st.Output)
				}
			}
			return nil
		},
	}
}
