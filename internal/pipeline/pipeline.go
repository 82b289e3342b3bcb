// Package pipeline runs a complete price search and keeps the quote session.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hospitaldelmovil/cotizador/internal/analysis"
	"github.com/hospitaldelmovil/cotizador/internal/cache"
	"github.com/hospitaldelmovil/cotizador/internal/history"
	"github.com/hospitaldelmovil/cotizador/internal/llm"
	"github.com/hospitaldelmovil/cotizador/internal/model"
	"github.com/hospitaldelmovil/cotizador/internal/normalize"
	"github.com/hospitaldelmovil/cotizador/internal/quote"
	"github.com/hospitaldelmovil/cotizador/internal/supplier"
	"github.com/hospitaldelmovil/cotizador/internal/worker"
)

// maxRowWarnings caps per-row feed warnings copied onto a report
const maxRowWarnings = 10

// ErrNoResults is returned by session edits before any search produced results
var ErrNoResults = errors.New("no search results")

// PriceLookup answers the remote pricing query
type PriceLookup interface {
	Lookup(ctx context.Context, q model.SearchQuery) (*model.LookupResponse, error)
	ProviderName() string
}

// FeedLoader reads the local supplier feed
type FeedLoader interface {
	Load(ctx context.Context, src supplier.Source) (*supplier.Feed, error)
}

// Pipeline orchestrates one search: remote lookup and local feed in
// parallel, then merge, analysis and quote derivation
type Pipeline struct {
	lookup   PriceLookup
	feeds    FeedLoader
	source   supplier.Source
	history  []model.HistoricalOffer
	analyzer *analysis.Analyzer
	deriver  *quote.Deriver
	verbose  bool
	now      func() time.Time
	sequence atomic.Uint64
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithSource sets the supplier feed source
func WithSource(src supplier.Source) Option {
	return func(p *Pipeline) { p.source = src }
}

// WithHistory sets the historical offers plotted next to results
func WithHistory(offers []model.HistoricalOffer) Option {
	return func(p *Pipeline) { p.history = offers }
}

// WithDeriver sets the quote markup rule
func WithDeriver(d *quote.Deriver) Option {
	return func(p *Pipeline) { p.deriver = d }
}

// WithVerbose prints progress to stderr
func WithVerbose(v bool) Option {
	return func(p *Pipeline) { p.verbose = v }
}

// New creates a pipeline from its collaborators
func New(lookup PriceLookup, feeds FeedLoader, opts ...Option) *Pipeline {
	p := &Pipeline{
		lookup:   lookup,
		feeds:    feeds,
		history:  history.Seed(),
		analyzer: analysis.NewAnalyzer(),
		deriver:  quote.DefaultDeriver(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewPipeline wires the production collaborators from cfg. limiter is shared
// by supplier fetches and provider calls and may be nil.
func NewPipeline(cfg *model.Config, limiter *worker.Limiter) (*Pipeline, error) {
	llmConfig := llm.ConfigFromModel(cfg.LLM, cfg.HTTP)
	provider, err := llm.NewProvider(llmConfig)
	if err != nil {
		if !cfg.LLM.FallbackToMock {
			return nil, fmt.Errorf("init LLM provider: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Warning: Failed to initialize LLM provider: %v\n", err)
		provider = nil
	}

	lookupOpts := []llm.LookupOption{
		llm.WithFallback(cfg.LLM.FallbackToMock),
		llm.WithCache(cache.NewLookupStore(cache.New(cfg.Cache), cfg.Cache.DiskTTL)),
	}
	var fetcherLimiter supplier.RateLimiter
	if limiter != nil {
		lookupOpts = append(lookupOpts, llm.WithLimiter(limiter))
		fetcherLimiter = limiter
	}

	offers, err := history.Load(cfg.History.Path)
	if err != nil {
		return nil, err
	}

	return New(
		llm.NewPriceLookup(provider, lookupOpts...),
		supplier.NewFetcher(cfg.HTTP, fetcherLimiter),
		WithSource(supplier.SourceFromConfig(cfg.Supplier, cfg.HTTP.Timeout)),
		WithHistory(offers),
		WithDeriver(quote.NewDeriver(cfg.Quote.Markup, cfg.Quote.RoundingStep, cfg.Quote.Notes)),
		WithVerbose(cfg.Output.Verbose),
	), nil
}

// Lookup returns the online price lookup
func (p *Pipeline) Lookup() PriceLookup {
	return p.lookup
}

// History returns the offers plotted next to results
func (p *Pipeline) History() []model.HistoricalOffer {
	return p.history
}

// Deriver returns the markup rule used for derived quotes
func (p *Pipeline) Deriver() *quote.Deriver {
	return p.deriver
}

// Search runs a complete search for q. A failing supplier feed degrades to
// a warning; a failing remote lookup (with fallback disabled) is an error.
func (p *Pipeline) Search(ctx context.Context, q model.SearchQuery) (*model.Report, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	seq := p.sequence.Add(1)
	if p.verbose {
		fmt.Fprintf(os.Stderr, "[%d] Buscando %s...\n", seq, q.Subject())
	}

	var (
		online  *model.LookupResponse
		feed    *supplier.Feed
		feedErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := p.lookup.Lookup(gctx, q)
		if err != nil {
			return fmt.Errorf("lookup: %w", err)
		}
		online = resp
		return nil
	})
	g.Go(func() error {
		feed, feedErr = p.feeds.Load(gctx, p.source)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &model.Report{
		Sequence:     seq,
		Query:        q,
		SearchedAt:   p.now().UTC(),
		Online:       online.PartResults,
		DevicePrices: online.DevicePrices,
		Lookup: model.LookupMeta{
			Provider: online.Provider,
			Model:    online.Model,
			Cached:   online.Cached,
			Fallback: online.Fallback,
		},
		Feed: model.FeedMeta{Source: p.sourceName()},
	}
	if report.Online == nil {
		report.Online = []model.PartResult{}
	}
	report.Warnings = append(report.Warnings, online.Warnings...)

	report.Local = []model.PartResult{}
	if feedErr != nil {
		report.Feed.Unavailable = true
		report.Warnings = append(report.Warnings, fmt.Sprintf("%s (%v)", supplier.FeedUnavailableMessage, feedErr))
	} else if feed != nil {
		report.Local = normalize.LocalResults(feed.Records, q)
		report.Feed.TotalRows = feed.Diagnostics.TotalRows
		report.Feed.Accepted = feed.Diagnostics.Accepted
		report.Feed.Skipped = feed.Diagnostics.Skipped()
		report.Warnings = append(report.Warnings, rowWarnings(feed)...)
	}
	report.Feed.Matched = len(report.Local)

	report.Merged = normalize.Merge(report.Online, report.Local)
	report.History = history.ForQuery(p.history, q)
	report.Analysis = p.analyzer.Analyze(report.Merged, report.DevicePrices, report.History)

	for _, s := range []model.Strategy{model.StrategyFastest, model.StrategyCheapest} {
		report.Quotes = append(report.Quotes, model.QuoteOption{
			Strategy: s,
			Title:    s.Title(),
			State:    model.QuoteDerived,
			Draft:    p.deriver.Derive(report.Merged, s),
		})
	}

	if p.verbose {
		fmt.Fprintf(os.Stderr, "[%d] %d en línea, %d locales, %d combinados\n",
			seq, len(report.Online), len(report.Local), len(report.Merged))
	}

	return report, nil
}

func (p *Pipeline) sourceName() string {
	if p.source.Path != "" {
		return p.source.Path
	}
	return p.source.URL
}

func rowWarnings(feed *supplier.Feed) []string {
	warnings := feed.Warnings()
	if len(warnings) <= maxRowWarnings {
		return warnings
	}
	rest := len(warnings) - maxRowWarnings
	return append(warnings[:maxRowWarnings:maxRowWarnings], fmt.Sprintf("... and %d more skipped supplier rows", rest))
}
