package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Create or update the taskline tables and seed the built-in system
categories. Safe to run repeatedly.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	cmd.Println("Schema is up to date")
	return nil
}
