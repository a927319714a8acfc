package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/policysync/mongofetch/api"
	"github.com/policysync/mongofetch/internal/fetch"
	"github.com/policysync/mongofetch/internal/mongodb"
)

var fetchURI string

func init() {
	fetchCmd.Flags().StringVar(&fetchURI, "uri", "", "MongoDB connection URI (overrides the config file and MONGOFETCH_URI)")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [config.json]",
	Short: "Run a single source entry and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		var src api.Source
		if err := oj.Unmarshal(raw, &src); err != nil {
			return fmt.Errorf("parse config %s: %w", args[0], err)
		}
		if src.Collection == "" {
			return fmt.Errorf("config %s: collection is required", args[0])
		}

		uri := resolveURI(fetchURI, src.URI)
		if uri == "" {
			return fmt.Errorf("no MongoDB URI: set --uri, the config uri field or MONGOFETCH_URI")
		}

		client, err := mongodb.Connect(uri, slog.Default())
		if err != nil {
			return err
		}
		defer client.Close(context.Background())

		out, err := fetch.NewProvider(slog.Default()).Fetch(cmd.Context(), &src, client)
		if err != nil {
			return err
		}

		fmt.Println(oj.JSON(out, 2))
		return nil
	},
}
