// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/diveerp/diveerp/internal/config"
	"github.com/diveerp/diveerp/internal/logger"
)

var (
	configPath string // Path to the configuration directory
	devMode    bool

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "diveerp",
	Short: "diveerp is the administration backend of a dive shop ERP",
	Long: `diveerp serves the staff accounts, roles, permissions and navigation
menus of the dive shop ERP and authorizes every API request against them.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./etc/", "Directory holding main.toml")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Enable dev mode")
}

// loadConfig reads the configuration and initializes logging.
func loadConfig() error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err //nolint:wrapcheck
	}

	if devMode {
		cfg.DevMode = true
	}

	return logger.Init(cfg.Log) //nolint:wrapcheck
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute() //nolint:wrapcheck
}
