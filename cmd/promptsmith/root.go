package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/promptsmith/promptsmith/internal/config"
	"github.com/promptsmith/promptsmith/internal/logging"
)

var (
	cfgFile string
	debug   bool
	rootCmd = &cobra.Command{
		Use:   "promptsmith",
		Short: "promptsmith is a workbench for structured RICCE prompts and prompt chains",
	}
)

// Execute runs the root command.
func Execute() error {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultFile, "config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		return fmt.Errorf("bind config flag: %w", err)
	}
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.Init(debug)
		_ = godotenv.Load()
	}
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(templateCmd())
	rootCmd.AddCommand(scenarioCmd())
	rootCmd.AddCommand(varsCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(chainCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(refineCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(uiCmd())
	return rootCmd.Execute()
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = config.DefaultFile
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("json")
}
