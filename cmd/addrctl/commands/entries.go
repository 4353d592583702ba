package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dukerupert/addressbook/internal/address"
	"github.com/dukerupert/addressbook/internal/addressbook"
)

var databaseURL string

func databaseURLFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string (default $DATABASE_URL)")
}

func entriesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List the entries stored in the Postgres address book",
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("database URL required (--database-url or DATABASE_URL)")
			}

			pool, err := pgxpool.New(cmd.Context(), databaseURL)
			if err != nil {
				return fmt.Errorf("failed to create connection pool: %w", err)
			}
			defer pool.Close()

			entries, err := addressbook.NewPostgresBook(pool).Entries(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s\t%s\t%s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.FullName(), address.Format(e.Address))
			}
			return nil
		},
	}

	databaseURLFlag(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")

	return cmd
}
