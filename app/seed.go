package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/diveerp/diveerp/internal/daemon"
)

var forceSeed bool

func init() { //nolint: gochecknoinits
	seedCmd.Flags().BoolVar(&forceSeed, "force", false, "Seed even if the database already has users")

	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Install the default permissions, roles, accounts and menus",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfig()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := daemon.OpenStore(cmd.Context(), &cfg)
		if err != nil {
			return err //nolint:wrapcheck
		}

		report, err := daemon.Seed(cmd.Context(), st, forceSeed)
		if err != nil {
			return err //nolint:wrapcheck
		}

		if report.Skipped {
			log.Info().Msg("database already has users, use --force to seed anyway")
		}

		return nil
	},
}
