package main

import (
	"github.com/spf13/cobra"

	"pmblueprints/internal/adapter/repository/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}

		if err := postgres.Migrate(db); err != nil {
			return err
		}

		log.Info("database schema is up to date")
		return nil
	},
}
