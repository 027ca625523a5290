package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tanq16/speedtest/internal/config"
	"github.com/tanq16/speedtest/internal/output"
	"github.com/tanq16/speedtest/internal/utils"
)

var (
	debug      bool
	configPath string
	cfg        *config.Config
)

var SpeedtestVersion = "dev"

var rootCmd = &cobra.Command{
	Use:           "speedtest",
	Short:         "Speedtest measures download throughput against a payload generator",
	Version:       SpeedtestVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		utils.InitLogger(debug)
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.PrintError(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "C", "", "Path to YAML config (default "+config.DefaultPath()+")")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRunCmd())
}
