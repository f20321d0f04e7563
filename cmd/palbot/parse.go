package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"palbot/internal/config"
	"palbot/internal/database"
	"palbot/internal/timeparse"
	"palbot/internal/usererr"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Split text into a time and a label with the configured parser",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runParse,
	}

	cmd.Flags().String("tz", "", "IANA time zone to resolve in (default UTC)")
	cmd.Flags().String("user", "", "Resolve in this Discord user's stored time zone")

	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	zone, _ := cmd.Flags().GetString("tz")
	userID, _ := cmd.Flags().GetString("user")

	cfg, err := config.NewToolConfig()
	if err != nil {
		return err
	}

	parser := timeparse.NewParser(cfg.GetTimeParser(), cfg.GetDucklingURL(), &http.Client{Timeout: 15 * time.Second})
	if parser == nil {
		return fmt.Errorf("time parser %q is not usable; is duckling_host set?", cfg.GetTimeParser())
	}

	ctx := context.Background()
	text := strings.Join(args, " ")
	now := time.Now()

	var result timeparse.SplitResult
	if userID != "" {
		db, dbErr := database.NewDB(cfg.GetDatabasePath())
		if dbErr != nil {
			return dbErr
		}
		defer db.Close()
		result, err = timeparse.NewSplitter(parser, db).SplitForUser(ctx, userID, text, now)
	} else {
		loc := time.UTC
		if zone != "" {
			if loc, err = time.LoadLocation(zone); err != nil {
				return fmt.Errorf("unknown time zone %q", zone)
			}
		}
		result, err = timeparse.NewSplitter(parser, nil).Split(ctx, text, now.In(loc), loc)
	}
	if err != nil {
		var uerr *usererr.Error
		if errors.As(err, &uerr) {
			return errors.New(usererr.Message(err))
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "when: %s\nwhat: %s\n", result.When.Format(time.RFC3339), result.What)
	return nil
}
