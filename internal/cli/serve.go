package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/hospitaldelmovil/cotizador/internal/pipeline"
	"github.com/hospitaldelmovil/cotizador/internal/server"
	"github.com/hospitaldelmovil/cotizador/internal/supplier"
)

var (
	serveAddr   string
	logRequests bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quoting HTTP API",
	Long: `Serve exposes the price search and quote editing over HTTP.

Routes:
  GET   /health                        liveness
  GET   /metrics                       prometheus metrics
  POST  /api/quotes                    online lookup only
  POST  /api/search                    full search, replaces the current report
  GET   /api/report                    current report with edited quotes
  PATCH /api/report/quotes/:strategy   edit the fastest or cheapest quote
  GET   /api/history                   historical offers
  GET   /api/catalog                   device and part catalog

Example:
  cotizador serve
  cotizador serve --addr :9090 --llm-provider openai`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (config default when empty)")
	serveCmd.Flags().BoolVar(&logRequests, "log-requests", false, "log every HTTP request")
	addLookupFlags(serveCmd.Flags())
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := newLimiter(cfg)
	p, err := pipeline.NewPipeline(cfg, limiter)
	if err != nil {
		return err
	}

	fetcher := supplier.NewFetcher(cfg.HTTP, limiter)
	catalog, warnings := fetcher.LoadCatalog(ctx, cfg.Supplier.DeviceSheetURL, cfg.Supplier.PartsSheetURL)
	if cfg.Output.Verbose {
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
	}

	srv := server.New(server.Options{
		Lookup:  p.Lookup(),
		Session: pipeline.NewSession(p, p.Deriver(), cfg.Quote.Settings),
		History: p.History(),
		Catalog: catalog,
		Logging: logRequests || cfg.Output.Verbose,
	})

	fmt.Fprintf(os.Stderr, "Price provider: %s\n", p.Lookup().ProviderName())
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
