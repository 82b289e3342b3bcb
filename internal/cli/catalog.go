package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hospitaldelmovil/cotizador/internal/supplier"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the device and part catalog",
	Long: `Catalog loads the device and parts sheets configured under supplier and
prints the resulting catalog. Missing or unreadable sheets fall back to the
built-in catalog with a warning.`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

var suppliersCmd = &cobra.Command{
	Use:   "suppliers",
	Short: "Load the local supplier sheet and report skipped rows",
	Long: `Suppliers reads the supplier sheet (--sheet-url or --sheet-path) and
prints row diagnostics so malformed rows can be fixed at the source.

Example:
  cotizador suppliers --sheet-path proveedores.csv
  cotizador suppliers --sheet-url https://docs.google.com/spreadsheets/d/e/.../pub?output=csv`,
	Args: cobra.NoArgs,
	RunE: runSuppliers,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(suppliersCmd)

	addLookupFlags(suppliersCmd.Flags())
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fetcher := supplier.NewFetcher(cfg.HTTP, newLimiter(cfg))
	catalog, warnings := fetcher.LoadCatalog(ctx, cfg.Supplier.DeviceSheetURL, cfg.Supplier.PartsSheetURL)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	data, err := yaml.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

func runSuppliers(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	src := supplier.SourceFromConfig(cfg.Supplier, cfg.HTTP.Timeout)
	if src.IsZero() {
		return fmt.Errorf("no supplier sheet configured (set supplier.sheet_url or --sheet-path)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	feed, err := supplier.NewFetcher(cfg.HTTP, newLimiter(cfg)).Load(ctx, src)
	if err != nil {
		return fmt.Errorf("%s: %w", supplier.FeedUnavailableMessage, err)
	}

	d := feed.Diagnostics
	fmt.Printf("Rows:       %d\n", d.TotalRows)
	fmt.Printf("Accepted:   %d\n", d.Accepted)
	fmt.Printf("Short rows: %d\n", d.ShortRows)
	fmt.Printf("Bad price:  %d\n", d.BadPrice)

	for _, w := range feed.Warnings() {
		fmt.Printf("  - %s\n", w)
	}

	if cfg.Output.Verbose {
		fmt.Println()
		for _, r := range feed.Records {
			fmt.Printf("%s\t%s\t%s\t%s\t$%.2f\t%s\n",
				r.ID, r.Platform, strings.TrimSpace(r.Brand+" "+r.Model), r.Part, r.PriceMXN, r.DeliveryTime)
		}
	}
	return nil
}
