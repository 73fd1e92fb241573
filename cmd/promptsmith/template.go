package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/promptsmith/promptsmith/internal/prompt"
)

func templateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage the RICCE template library",
	}
	cmd.AddCommand(templateSaveCmd())
	cmd.AddCommand(templateListCmd())
	cmd.AddCommand(templateShowCmd())
	cmd.AddCommand(templateDeleteCmd())
	cmd.AddCommand(templateExportCmd())
	return cmd
}

func templateSaveCmd() *cobra.Command {
	var role, instruction, contextField, constraints, evaluation, fromFile string
	cmd := &cobra.Command{
		Use:          "save <name>",
		Short:        "Save or update a template",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := prompt.Spec{
				Role:        role,
				Instruction: instruction,
				Context:     contextField,
				Constraints: constraints,
				Evaluation:  evaluation,
			}
			if fromFile != "" {
				raw, err := os.ReadFile(fromFile)
				if err != nil {
					return fmt.Errorf("read template file: %w", err)
				}
				if err := yaml.Unmarshal(raw, &spec); err != nil {
					return fmt.Errorf("parse template file: %w", err)
				}
			}
			if spec.Empty() {
				return fmt.Errorf("template is empty; set at least one field")
			}

			s, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			if err := s.SaveTemplate(cmd.Context(), args[0], spec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved template %q\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "role field")
	cmd.Flags().StringVar(&instruction, "instruction", "", "instruction field")
	cmd.Flags().StringVar(&contextField, "context", "", "context field")
	cmd.Flags().StringVar(&constraints, "constraints", "", "constraints field")
	cmd.Flags().StringVar(&evaluation, "evaluation", "", "evaluation field")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "load the template from a YAML file instead of flags")
	return cmd
}

func templateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "list",
		Short:        "List templates",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			templates, err := s.ListTemplates(cmd.Context())
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no templates")
				return nil
			}
			for _, t := range templates {
				vars := prompt.DetectVariables(t.Spec)
				line := t.Name
				if len(vars) > 0 {
					line += "  (vars: " + strings.Join(vars, ", ") + ")"
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func templateShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "show <name>",
		Short:        "Print a template's assembled prompt and variables",
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
			fmt.Fprintln(cmd.OutOrStdout(), t.Spec.Assemble())
			if vars := prompt.DetectVariables(t.Spec); len(vars) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\nvariables: %s\n", strings.Join(vars, ", "))
			}
			return nil
		},
	}
}

func templateDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "delete <name>",
		Short:        "Delete a template",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			if err := s.DeleteTemplate(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted template %q\n", args[0])
			return nil
		},
	}
}

func templateExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "export <name>",
		Short:        "Print a template as YAML",
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
			raw, err := yaml.Marshal(t.Spec)
			if err != nil {
				return fmt.Errorf("encode template: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(raw))
			return nil
		},
	}
}
