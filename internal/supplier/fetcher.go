package supplier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"

	"github.com/hospitaldelmovil/cotizador/internal/model"
	"github.com/hospitaldelmovil/cotizador/internal/util"
)

// SheetsPrefix is the only accepted feed origin unless AllowAnyHost is set
const SheetsPrefix = "https://docs.google.com/spreadsheets/"

// FeedUnavailableMessage is shown to staff when the supplier sheet cannot be read
const FeedUnavailableMessage = "No se pudieron cargar los datos de proveedores locales. Revisa la URL y el formato del CSV."

const (
	maxFetchAttempts    = 3
	defaultMaxBytes     = 5_000_000
	defaultFetchTimeout = 2 * time.Minute
	xlsxContentType  = "spreadsheetml"
)

var (
	// ErrFeedUnavailable wraps every network or file failure while loading a feed
	ErrFeedUnavailable = errors.New("supplier feed unavailable")
	// ErrInvalidSource is returned for feed URLs outside SheetsPrefix
	ErrInvalidSource = errors.New("supplier feed url must be a published Google Sheet")
)

// fetchSleepFunc is the sleep function used between retries; overridden in tests
var fetchSleepFunc = time.Sleep

// RateLimiter throttles outbound requests per host
type RateLimiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Source says where to read a supplier feed from. Path wins over URL.
type Source struct {
	URL          string
	Path         string
	Sheet        string // xlsx sheet name, first sheet when empty
	Timeout      time.Duration
	AllowAnyHost bool
}

// SourceFromConfig builds a Source from the supplier config section
func SourceFromConfig(cfg model.SupplierConfig, timeout time.Duration) Source {
	return Source{
		URL:          cfg.SheetURL,
		Path:         cfg.SheetPath,
		Sheet:        cfg.XLSXSheet,
		Timeout:      timeout,
		AllowAnyHost: cfg.AllowAnyHost,
	}
}

// IsZero reports whether no feed is configured
func (s Source) IsZero() bool {
	return s.URL == "" && s.Path == ""
}

// Fetcher downloads supplier and catalog sheets
type Fetcher struct {
	client       *resty.Client
	limiter      RateLimiter
	maxBytes     int64
	fetchTimeout time.Duration // bounds one shared download, retries included
	group        singleflight.Group
}

// NewFetcher creates a Fetcher. limiter may be nil.
func NewFetcher(cfg model.HTTPConfig, limiter RateLimiter) *Fetcher {
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// published sheets redirect once to googleusercontent
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}

	client := resty.NewWithClient(httpClient)
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	fetchTimeout := defaultFetchTimeout
	if cfg.Timeout > 0 {
		fetchTimeout = maxFetchAttempts*cfg.Timeout + 3*time.Second // plus backoff
	}

	return &Fetcher{
		client:       client,
		limiter:      limiter,
		maxBytes:     maxBytes,
		fetchTimeout: fetchTimeout,
	}
}

// Load reads and parses the supplier feed. An unconfigured source yields an
// empty feed. Concurrent loads of the same URL share one download.
func (f *Fetcher) Load(ctx context.Context, src Source) (*Feed, error) {
	if src.Path != "" {
		return loadFile(src)
	}
	if src.URL == "" {
		return &Feed{Records: []model.SupplierRecord{}}, nil
	}
	if !src.AllowAnyHost && !strings.HasPrefix(src.URL, SheetsPrefix) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSource, src.URL)
	}

	if src.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, src.Timeout)
		defer cancel()
	}

	result, err := f.fetchShared(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}

	var feed *Feed
	if result.isSpreadsheet() {
		feed, err = ParseXLSX(bytes.NewReader(result.Data), src.Sheet)
	} else {
		feed, err = ParseFeed(bytes.NewReader(result.Data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}
	return feed, nil
}

func loadFile(src Source) (*Feed, error) {
	file, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}
	defer func() { _ = file.Close() }()

	var feed *Feed
	if strings.HasSuffix(strings.ToLower(src.Path), ".xlsx") {
		feed, err = ParseXLSX(file, src.Sheet)
	} else {
		feed, err = ParseFeed(file)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}
	return feed, nil
}

// LoadCatalog reads the device and part catalog sheets. Either half falls
// back to DefaultCatalog when its URL is empty or the sheet cannot be read;
// each fallback adds a warning.
func (f *Fetcher) LoadCatalog(ctx context.Context, deviceURL, partsURL string) (model.Catalog, []string) {
	catalog := DefaultCatalog()
	var warnings []string

	if deviceURL == "" {
		warnings = append(warnings, "device catalog sheet not configured, using defaults")
	} else if err := f.loadDevices(ctx, deviceURL, &catalog); err != nil {
		warnings = append(warnings, fmt.Sprintf("device catalog unavailable, using defaults: %v", err))
	}

	if partsURL == "" {
		warnings = append(warnings, "parts catalog sheet not configured, using defaults")
	} else if err := f.loadParts(ctx, partsURL, &catalog); err != nil {
		warnings = append(warnings, fmt.Sprintf("parts catalog unavailable, using defaults: %v", err))
	}

	return catalog, warnings
}

func (f *Fetcher) loadDevices(ctx context.Context, rawURL string, catalog *model.Catalog) error {
	result, err := f.fetchShared(ctx, rawURL)
	if err != nil {
		return err
	}
	types, brands, models, err := ParseDeviceCatalog(bytes.NewReader(result.Data))
	if err != nil {
		return err
	}
	catalog.DeviceTypes, catalog.Brands, catalog.Models = types, brands, models
	return nil
}

func (f *Fetcher) loadParts(ctx context.Context, rawURL string, catalog *model.Catalog) error {
	result, err := f.fetchShared(ctx, rawURL)
	if err != nil {
		return err
	}
	parts, details, err := ParsePartCatalog(bytes.NewReader(result.Data))
	if err != nil {
		return err
	}
	catalog.Parts, catalog.PartDetails = parts, details
	return nil
}

// fetchResult is one downloaded sheet
type fetchResult struct {
	Data        []byte
	ContentType string
	FinalURL    string
}

func (r *fetchResult) isSpreadsheet() bool {
	if strings.Contains(r.ContentType, xlsxContentType) {
		return true
	}
	parsed, err := url.Parse(r.FinalURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(parsed.Path), ".xlsx") || parsed.Query().Get("output") == "xlsx"
}

// fetchShared collapses concurrent downloads of rawURL. The download runs
// detached from any single caller, so a caller that gives up does not fail
// the others; each caller still stops waiting when its own ctx is done.
func (f *Fetcher) fetchShared(ctx context.Context, rawURL string) (*fetchResult, error) {
	ch := f.group.DoChan(rawURL, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.fetchTimeout)
		defer cancel()
		return f.fetchWithRetry(fetchCtx, rawURL)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*fetchResult), nil
	}
}

// fetchWithRetry retries transport errors, 5xx and 429 with exponential backoff
func (f *Fetcher) fetchWithRetry(ctx context.Context, rawURL string) (*fetchResult, error) {
	var lastErr error

	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if attempt > 0 {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			fetchSleepFunc(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		result, err := f.fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (*fetchResult, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet;q=0.9,*/*;q=0.8").
		Get(rawURL)
	if err != nil {
		return nil, &transportError{err: err}
	}

	body := resp.RawBody()
	defer func() { _ = body.Close() }()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &statusError{code: resp.StatusCode(), status: resp.Status()}
	}

	data, err := io.ReadAll(io.LimitReader(body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := rawURL
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}

	return &fetchResult{
		Data:        data,
		ContentType: resp.Header().Get("Content-Type"),
		FinalURL:    finalURL,
	}, nil
}

type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return "unexpected status: " + e.status
}

type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return "fetch: " + e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}

func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}

	var te *transportError
	return errors.As(err, &te)
}
