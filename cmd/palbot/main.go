package main

import (
	"fmt"
	"os"

	"palbot/internal/bot"
	"palbot/internal/config"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "palbot",
	Short:         "Discord bot for reminders, time conversion and lookups",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBot,
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Start the bot (default)",
		Args:  cobra.NoArgs,
		RunE:  runBot,
	})
}

func runBot(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create and start bot
	palBot, err := bot.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	if err := palBot.Start(); err != nil {
		return fmt.Errorf("failed to start bot: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
