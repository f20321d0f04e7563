package main

import (
	"fmt"

	"palbot/internal/config"
	"palbot/internal/database"

	"github.com/spf13/cobra"
)

func init() {
	tz := &cobra.Command{
		Use:   "tz",
		Short: "Read or change stored user time zones",
	}

	tz.AddCommand(&cobra.Command{
		Use:   "get <user-id>",
		Short: "Print a user's time zone",
		Args:  cobra.ExactArgs(1),
		RunE:  runTZGet,
	})
	tz.AddCommand(&cobra.Command{
		Use:   "set <user-id> <zone>",
		Short: "Store a user's time zone",
		Args:  cobra.ExactArgs(2),
		RunE:  runTZSet,
	})

	rootCmd.AddCommand(tz)
}

func openDB() (*database.DB, error) {
	cfg, err := config.NewToolConfig()
	if err != nil {
		return nil, err
	}
	return database.NewDB(cfg.GetDatabasePath())
}

func runTZGet(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	zone, err := db.GetUserTimezone(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if zone == "" {
		zone = "UTC (not set)"
	}
	fmt.Fprintln(cmd.OutOrStdout(), zone)
	return nil
}

func runTZSet(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SetUserTimezone(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], args[1])
	return nil
}
