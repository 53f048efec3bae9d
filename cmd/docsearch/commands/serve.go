package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thoreinstein/docsearch/internal/errors"
	"github.com/thoreinstein/docsearch/internal/ipc"
	"github.com/thoreinstein/docsearch/internal/logging"
	"github.com/thoreinstein/docsearch/internal/metrics"
	"github.com/thoreinstein/docsearch/internal/paths"
	"github.com/thoreinstein/docsearch/internal/watch"
)

var (
	serveWatch       bool
	serveDebounce    time.Duration
	serveMetricsAddr string
	serveLimit       int
)

func init() {
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "reload the index when it changes (default: serve.watch)")
	serveCmd.Flags().DurationVar(&serveDebounce, "debounce", 0, "quiet period before a reload (default: serve.debounce)")
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (default: serve.metrics_addr)")
	serveCmd.Flags().IntVarP(&serveLimit, "limit", "n", 0, "default result limit per session (default: search.limit)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve <index>",
	Short: "Answer queries over stdin and stdout",
	Long: `Serve search sessions over stdin and stdout.

Requests and responses are MessagePack maps, one after another on the
stream. A client opens a session, sends the query text on every keystroke
and receives the ranked results of the latest query. A newer query always
supersedes an older one.

Operations: open, query, results, reset, close, stats, health.

With --watch the index is reloaded when it changes on disk. Open sessions
pick up the new catalog on their next query.`,
	Example: `  # Serve an index
  docsearch serve package-search-index.js

  # Reload on change and expose metrics
  docsearch serve package-search-index.js --watch --metrics-addr 127.0.0.1:9464

See Also: docsearch query`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

// serveOptions holds the resolved serve settings.
type serveOptions struct {
	watch       bool
	debounce    time.Duration
	metricsAddr string
	limit       int
}

func resolveServeOptions(cmd *cobra.Command) serveOptions {
	opts := serveOptions{
		watch:       cfg.Serve.Watch,
		debounce:    cfg.Serve.Debounce,
		metricsAddr: cfg.Serve.MetricsAddr,
		limit:       cfg.Search.Limit,
	}
	flags := cmd.Flags()
	if flags.Changed("watch") {
		opts.watch = serveWatch
	}
	if flags.Changed("debounce") {
		opts.debounce = serveDebounce
	}
	if flags.Changed("metrics-addr") {
		opts.metricsAddr = serveMetricsAddr
	}
	if flags.Changed("limit") {
		opts.limit = serveLimit
	}
	return opts
}

func runServe(cmd *cobra.Command, args []string) error {
	opts := resolveServeOptions(cmd)
	if opts.limit < 0 {
		return errors.NewUserError(errors.Newf("invalid limit %d", opts.limit), "Use --limit 0 for unlimited results")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runServeWithIO(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), args[0], opts)
}

// runServeWithIO allows injecting the request and response streams for testing.
func runServeWithIO(ctx context.Context, in io.Reader, out io.Writer, index string, opts serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.FromContext(ctx)
	m := metrics.New()

	index, err := paths.ExpandHome(index)
	if err != nil {
		return errors.NewSystemError(err, "Use an absolute index path")
	}

	cat, skipped, err := loadCatalog(ctx, index)
	if err != nil {
		return err
	}
	m.ObserveCatalog(cat.Size(), len(skipped))

	server := ipc.NewServer(newEngine(cat, logger),
		ipc.WithLimit(opts.limit),
		ipc.WithLogger(logger),
		ipc.WithMetrics(m),
	)

	if opts.metricsAddr != "" {
		shutdown, err := metrics.StartServer(opts.metricsAddr, m, logger)
		if err != nil {
			return errors.NewUserError(err, "Choose a free address with --metrics-addr")
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if opts.watch {
		w, err := watch.New(index, reloader(server, m, logger),
			watch.WithDebounce(opts.debounce),
			watch.WithLogger(logger),
		)
		if err != nil {
			return errors.NewSystemError(err, "Run without --watch")
		}
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	// The decoder blocks on input, so a signal returns without waiting for it.
	served := make(chan error, 1)
	go func() {
		served <- server.Serve(gctx, in, out)
	}()
	g.Go(func() error {
		defer cancel()
		select {
		case err := <-served:
			return err
		case <-gctx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil {
		return errors.NewSystemError(err, "Check that the client writes MessagePack requests")
	}
	logger.Debug("serve finished", "stats", server.Stats())
	return nil
}

// reloader rebuilds the engine from the index and swaps it into server.
func reloader(server *ipc.Server, m *metrics.Metrics, logger *slog.Logger) watch.ReloadFunc {
	return func(ctx context.Context, path string) error {
		cat, skipped, err := loadCatalog(ctx, path)
		m.ObserveReload(err)
		if err != nil {
			return err
		}
		m.ObserveCatalog(cat.Size(), len(skipped))
		server.Swap(newEngine(cat, logger))
		return nil
	}
}
