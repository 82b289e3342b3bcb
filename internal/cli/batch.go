package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hospitaldelmovil/cotizador/internal/model"
	"github.com/hospitaldelmovil/cotizador/internal/pipeline"
	"github.com/hospitaldelmovil/cotizador/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchXLSX    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Price many parts from a CSV file in parallel",
	Long: `Batch prices every query of a CSV file concurrently.

Each line holds: device type, brand, model, part[, variant1[, variant2]].
Lines starting with # are ignored and duplicate queries are priced once.
One JSON and one Markdown report is written per query.

Example:
  cotizador batch consultas.csv
  cotizador batch consultas.csv --concurrency 8 --output-dir ./cotizaciones
  cotizador batch consultas.csv --xlsx --timeout 5m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent searches (config default when 0)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory for reports (config default when empty)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&batchXLSX, "xlsx", false, "also write an XLSX workbook per query")

	addLookupFlags(batchCmd.Flags())
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Cotizador Batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg, newLimiter(cfg))
	if err != nil {
		return err
	}
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)

	fmt.Fprintf(os.Stderr, "⚙️  Reading queries and searching with %d workers...\n\n", cfg.Concurrency.Workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Quote.Settings)
	successCount := 0
	failureCount := 0
	fallbackCount := 0

	for _, result := range results {
		subject := result.Query.Subject()
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", subject, result.Error)
			continue
		}

		base := filepath.Join(cfg.Output.Dir, batchFileName(result))
		xlsxPath := ""
		if batchXLSX {
			xlsxPath = base + ".xlsx"
		}
		if err := writeOutputs(renderer, result.Report, base+".json", base+".md", xlsxPath, false); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", subject, err)
			continue
		}

		successCount++
		if result.Report.Lookup.Fallback {
			fallbackCount++
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%s)\n", subject, quoteLine(result.Report))
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d queries\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	if fallbackCount > 0 {
		fmt.Fprintf(os.Stderr, "  Sample:    %d (provider unavailable)\n", fallbackCount)
	}
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "\n")

	if successCount == 0 && failureCount > 0 {
		return fmt.Errorf("all %d searches failed", failureCount)
	}
	return nil
}

// batchFileName keeps per-query files apart when several share a model
func batchFileName(result *worker.SearchResult) string {
	return fmt.Sprintf("%03d-%s", result.Index+1, pipeline.ExportName(result.Query, result.Report.SearchedAt))
}

func quoteLine(report *model.Report) string {
	fastest, _ := report.Quote(model.StrategyFastest)
	cheapest, _ := report.Quote(model.StrategyCheapest)
	return fmt.Sprintf("rápida $%.0f, económica $%.0f", fastest.Draft.CustomerPrice, cheapest.Draft.CustomerPrice)
}
