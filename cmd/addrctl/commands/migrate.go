package commands

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/dukerupert/addressbook/internal"
)

func migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending address book migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("database URL required (--database-url or DATABASE_URL)")
			}

			db, err := sql.Open("pgx", databaseURL)
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			defer db.Close()

			if status {
				return internal.MigrationStatus(db)
			}
			if err := internal.RunMigrations(db); err != nil {
				return err
			}
			logger.Info("Database migrations completed successfully")
			return nil
		},
	}

	databaseURLFlag(cmd)
	cmd.Flags().BoolVar(&status, "status", false, "print migration status instead of migrating")

	return cmd
}
