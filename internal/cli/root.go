// Package cli wires the taskline commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"taskline"
	"taskline/internal/config"
	"taskline/internal/store/postgres"
)

var (
	configFile string
	ownerFlag  string
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "taskline",
		Short: "Taskline - task lifecycle and history analytics",
		Long: `Taskline tracks ordered, deadline-aware tasks and turns their
completion history into chartable statistics.

Tasks live in color-coded categories and hold a rank, a deadline and a
planned duration. Completing or failing a task retires it into history,
where eight aggregates (counts, planning accuracy, success rate,
weekday spread) can be queried and shared via short links.`,
		Version:       taskline.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: environment only)")
	rootCmd.PersistentFlags().StringVar(&ownerFlag, "owner", "", "owner id the command acts for")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// openStore loads the config and connects to the database. Config is
// read here rather than in a persistent pre-run so that help and
// version work without an environment.
func openStore() (*postgres.Store, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	st, err := postgres.Open(log, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return st, nil
}

// openTracker builds the façade every data command runs against.
func openTracker() (*taskline.Tracker, *postgres.Store, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	tracker := taskline.New(taskline.Stores{
		Tasks:      st,
		Categories: st,
		History:    st,
		Snapshots:  st,
	})
	return tracker, st, nil
}

// owner parses the required --owner flag.
func owner() (uuid.UUID, error) {
	if ownerFlag == "" {
		return uuid.Nil, fmt.Errorf("--owner is required")
	}
	id, err := uuid.Parse(ownerFlag)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse --owner %q: %w", ownerFlag, err)
	}
	return id, nil
}
