package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/promptsmith/promptsmith/internal/compare"
)

var (
	compareHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	compareColStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1).Width(48)
	compareErrStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func compareCmd() *cobra.Command {
	var providerA, providerB, scenario string
	var varFlags []string
	cmd := &cobra.Command{
		Use:          "compare <template>",
		Short:        "Run one template against two providers side by side",
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
			nameA, nameB, err := cfg.ComparePair(providerA, providerB)
			if err != nil {
				return err
			}
			_, genA, err := buildGenerator(cmd.Context(), cfg, nameA)
			if err != nil {
				return err
			}
			_, genB, err := buildGenerator(cmd.Context(), cfg, nameB)
			if err != nil {
				return err
			}

			request := t.Spec.Resolved(scope).Assemble()
			resA, resB := compare.Run(cmd.Context(), request,
				compare.Arm{Name: nameA, Gen: genA},
				compare.Arm{Name: nameB, Gen: genB})

			left := renderArm(resA)
			right := renderArm(resB)
			fmt.Fprintln(cmd.OutOrStdout(), lipgloss.JoinHorizontal(lipgloss.Top, left, right))

			if resA.Err != nil || resB.Err != nil {
				return fmt.Errorf("comparison had failures")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&providerA, "provider-a", "", "first provider (default: compare.a)")
	cmd.Flags().StringVar(&providerB, "provider-b", "", "second provider (default: compare.b)")
	cmd.Flags().StringVar(&scenario, "scenario", "", "scenario supplying variable values")
	cmd.Flags().StringArrayVar(&varFlags, "var", nil, "variable as name=value (repeatable)")
	return cmd
}

func renderArm(res compare.Result) string {
	header := compareHeaderStyle.Render(fmt.Sprintf("%s (%s)", res.Name, res.Duration.Round(10*time.Millisecond)))
	body := res.Output
	if res.Err != nil {
		body = compareErrStyle.Render("error: " + res.Err.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, compareColStyle.Render(body))
}
