package main

import (
	"arvista/config"
	"arvista/database"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// arvista migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		database.InitDB()
		log.Info().Msg("Running migrations")
		return database.Migrate(database.DB)
	},
}

// arvista seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert default categories and the admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		database.InitDB()
		if err := database.Migrate(database.DB); err != nil {
			return err
		}
		log.Info().Msg("Running seeders")
		return database.Seed(database.DB, config.SEED_ADMIN_EMAIL, config.SEED_ADMIN_PASSWORD)
	},
}
