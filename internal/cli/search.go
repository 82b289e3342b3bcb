package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hospitaldelmovil/cotizador/internal/model"
	"github.com/hospitaldelmovil/cotizador/internal/pipeline"
	"github.com/hospitaldelmovil/cotizador/internal/worker"
)

var (
	query       model.SearchQuery
	outJSON     string
	outMD       string
	outXLSX     string
	export      bool
	noSummary   bool
	timeout     time.Duration
	noCache     bool
	llmProvider string
	llmModel    string
	sheetURL    string
	sheetPath   string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Price a repair part and draft customer quotes",
	Long: `Search looks up online listings and local supplier prices for one part,
computes the price indicators, and derives the fastest and cheapest quotes.

Example:
  cotizador search
  cotizador search --brand Samsung --model "Galaxy S23" --part Batería
  cotizador search --llm-provider openai --sheet-url https://docs.google.com/spreadsheets/d/.../pub?output=csv
  cotizador search --md analisis.md --xlsx analisis.xlsx
  cotizador search --export`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	def := model.DefaultQuery()
	f := searchCmd.Flags()
	f.StringVar(&query.DeviceType, "device-type", def.DeviceType, "device type")
	f.StringVar(&query.Brand, "brand", def.Brand, "device brand")
	f.StringVar(&query.Model, "model", def.Model, "device model")
	f.StringVar(&query.Part, "part", def.Part, "repair part")
	f.StringVar(&query.Variant1, "variant1", def.Variant1, "first part variant")
	f.StringVar(&query.Variant2, "variant2", def.Variant2, "second part variant")

	f.StringVar(&outJSON, "json", "", "output JSON path")
	f.StringVar(&outMD, "md", "", "output Markdown path")
	f.StringVar(&outXLSX, "xlsx", "", "output XLSX path")
	f.BoolVar(&export, "export", false, "write Cotizacion-HMOV-<model>-<ms>.md and .xlsx to the output directory")
	f.BoolVar(&noSummary, "quiet", false, "do not print the summary")
	f.DurationVar(&timeout, "timeout", 2*time.Minute, "overall search timeout")

	addLookupFlags(f)
}

// addLookupFlags registers the flags shared by search, batch and serve
func addLookupFlags(f *pflag.FlagSet) {
	f.BoolVar(&noCache, "no-cache", false, "disable the lookup cache")
	f.StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama); empty uses sample data")
	f.StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
	f.StringVar(&sheetURL, "sheet-url", "", "published supplier sheet URL (CSV)")
	f.StringVar(&sheetPath, "sheet-path", "", "local supplier sheet (.csv or .xlsx)")
}

// commandConfig loads the configuration and applies the flags that were set
func commandConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	applyLookupFlags(cmd.Flags(), cfg)
	if verbose {
		cfg.Output.Verbose = true
	}
	return cfg, nil
}

func applyLookupFlags(f *pflag.FlagSet, cfg *model.Config) {
	if f.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if f.Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
	}
	if f.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if f.Changed("sheet-url") {
		cfg.Supplier.SheetURL = sheetURL
	}
	if f.Changed("sheet-path") {
		cfg.Supplier.SheetPath = sheetPath
	}
}

// newLimiter returns the per-host limiter shared by fetches and lookups
func newLimiter(cfg *model.Config) *worker.Limiter {
	return worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	p, err := pipeline.NewPipeline(cfg, newLimiter(cfg))
	if err != nil {
		return err
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Searching: %s\n", query.Subject())
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n\n", cfg.Cache.Enabled)
	}

	session := pipeline.NewSession(p, p.Deriver(), cfg.Quote.Settings)
	report, err := session.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	renderer := pipeline.NewRenderer(session.Settings())
	if export {
		base := filepath.Join(cfg.Output.Dir, pipeline.ExportName(query, time.Now()))
		if outMD == "" {
			outMD = base + ".md"
		}
		if outXLSX == "" {
			outXLSX = base + ".xlsx"
		}
	}
	if err := writeOutputs(renderer, report, outJSON, outMD, outXLSX, cfg.Output.Verbose); err != nil {
		return err
	}

	if !noSummary {
		renderer.RenderSummary(report)
	}
	return nil
}

func writeOutputs(r *pipeline.Renderer, report *model.Report, jsonPath, mdPath, xlsxPath string, verbose bool) error {
	if jsonPath != "" {
		if err := r.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}
	if mdPath != "" {
		if err := r.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}
	if xlsxPath != "" {
		if err := r.RenderXLSX(report, xlsxPath); err != nil {
			return fmt.Errorf("render XLSX: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote XLSX: %s\n", xlsxPath)
		}
	}
	return nil
}
