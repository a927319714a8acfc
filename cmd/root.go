package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/policysync/mongofetch/internal/logging"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "mongofetch",
	Short: "Fetch and reshape MongoDB documents for policy-store ingestion",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; a missing file is not an error.
		_ = godotenv.Load()
		logging.Setup(logLevel, logFormat)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
}

// resolveURI returns the first non-empty candidate, falling back to the
// MONGOFETCH_URI environment variable.
func resolveURI(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return os.Getenv("MONGOFETCH_URI")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
