package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rahul4469/runtime-calculator/internal/config"
	"github.com/rahul4469/runtime-calculator/internal/models"
	"github.com/rahul4469/runtime-calculator/migrations"
)

func newMigrateCommand() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the postgres state store",
		Long: `Apply every pending migration to the database named by --database-url
or DATABASE_URL. The server also migrates on startup when STATE_STORE=postgres.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			if databaseURL == "" {
				databaseURL = os.Getenv("DATABASE_URL")
			}
			if databaseURL == "" {
				return errors.New("DATABASE_URL or --database-url is required")
			}

			db, err := models.NewDatabase(cmd.Context(), models.DefaultDatabaseConfig(databaseURL))
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.MigrateFS(migrations.FS, "."); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "postgres connection URL (default $DATABASE_URL)")

	return cmd
}
