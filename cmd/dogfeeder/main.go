// Command dogfeeder runs the feeding schedule on a Raspberry Pi and reports
// each feeding over Pushcut and MQTT.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/AnnaPov19/DogFeeder/internal/config"
	"github.com/AnnaPov19/DogFeeder/internal/logging"
)

var (
	logger zerolog.Logger
	cfg    *config.Config

	configPath string
	logLevel   string
	logPretty  bool
)

var rootCmd = &cobra.Command{
	Use:   "dogfeeder",
	Short: "Scheduled dog feeder",
	Long: `dogfeeder opens the dispenser at the configured feeding times, weighs the
bowl afterwards and notifies how much was eaten and how much is left.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "log-pretty", false, "Human readable console logs")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file, applies the persistent flag
// overrides and sets up logging. Called by every command that needs it.
func loadConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if cmd.Flags().Changed("log-pretty") {
		cfg.Log.Pretty = logPretty
	}
	logger, err = logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	return nil
}
