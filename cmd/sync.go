package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ohler55/ojg/oj"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/policysync/mongofetch/internal/fetch"
	"github.com/policysync/mongofetch/internal/manifest"
	"github.com/policysync/mongofetch/internal/mongodb"
)

var (
	syncURI      string
	syncParallel int
	metricsAddr  string
)

func init() {
	syncCmd.Flags().StringVar(&syncURI, "uri", "", "MongoDB connection URI (overrides the manifest and MONGOFETCH_URI)")
	syncCmd.Flags().IntVar(&syncParallel, "parallel", 4, "maximum source entries fetched concurrently")
	syncCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while syncing")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync [manifest.hcl]",
	Short: "Run every source entry in a manifest",
	Long: `Run every source entry in an HCL manifest, each against its own
connection, writing results to the entries' output files (stdout when no
output is set).

Entries fail independently: a malformed entry yields an empty result and
a warning, a failing query is reported without stopping the other
entries. The exit status is non-zero if any entry failed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		man, err := manifest.Load(args[0])
		if err != nil {
			return err
		}
		if len(man.Entries) == 0 {
			return fmt.Errorf("manifest %s defines no sources", args[0])
		}

		if metricsAddr != "" {
			go serveMetrics(metricsAddr)
		}

		log := slog.Default()
		provider := fetch.NewProvider(log)
		start := time.Now()

		var g errgroup.Group
		g.SetLimit(syncParallel)

		var mu sync.Mutex
		failed := 0
		for _, entry := range man.Entries {
			entry := entry
			g.Go(func() error {
				if err := runEntry(cmd.Context(), provider, man, entry); err != nil {
					log.Error("source entry failed", "source", entry.Name, "error", err)
					mu.Lock()
					failed++
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait()

		if failed > 0 {
			return fmt.Errorf("%d of %d source entries failed", failed, len(man.Entries))
		}
		log.Info("sync complete", "sources", len(man.Entries), "elapsed", time.Since(start))
		return nil
	},
}

// runEntry fetches one source with its own scoped connection and writes
// the result to the entry's output destination.
func runEntry(ctx context.Context, provider *fetch.Provider, man *manifest.Manifest, entry manifest.Entry) error {
	uri := resolveURI(syncURI, entry.Source.URI, man.URI)
	if uri == "" {
		return fmt.Errorf("no MongoDB URI for source %q", entry.Name)
	}

	client, err := mongodb.Connect(uri, slog.Default())
	if err != nil {
		return err
	}
	defer client.Close(context.Background())

	out, err := provider.Fetch(ctx, entry.Source, client)
	if err != nil {
		return err
	}

	payload := oj.JSON(out, 2) + "\n"
	if entry.Output == "" {
		fmt.Print(payload)
		return nil
	}
	if dir := filepath.Dir(entry.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return os.WriteFile(entry.Output, []byte(payload), 0o644)
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics listener failed", "addr", addr, "error", err)
	}
}
