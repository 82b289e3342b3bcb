package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/hospitaldelmovil/cotizador/internal/cache"
	"github.com/hospitaldelmovil/cotizador/internal/model"
)

// LookupFailedMessage is shown to staff when prices cannot be obtained
const LookupFailedMessage = "No se pudieron obtener las cotizaciones"

var (
	// ErrLookupFailed wraps provider failures when the mock fallback is off
	ErrLookupFailed = errors.New("price lookup failed")

	errNoProvider = errors.New("no LLM provider configured")
)

// RateLimiter throttles calls per provider
type RateLimiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// PriceLookup answers pricing queries through a provider, with caching and
// an optional fallback to the built-in mock payload.
type PriceLookup struct {
	provider       Provider
	store          *cache.LookupStore
	limiter        RateLimiter
	fallbackToMock bool
}

// LookupOption configures a PriceLookup
type LookupOption func(*PriceLookup)

// WithCache stores successful provider answers in store
func WithCache(store *cache.LookupStore) LookupOption {
	return func(l *PriceLookup) { l.store = store }
}

// WithLimiter throttles provider calls
func WithLimiter(limiter RateLimiter) LookupOption {
	return func(l *PriceLookup) { l.limiter = limiter }
}

// WithFallback serves the mock payload on any failure when enabled
func WithFallback(enabled bool) LookupOption {
	return func(l *PriceLookup) { l.fallbackToMock = enabled }
}

// NewPriceLookup creates a lookup service. provider may be nil, in which case
// every lookup fails over to the mock payload (or errors without fallback).
func NewPriceLookup(provider Provider, opts ...LookupOption) *PriceLookup {
	l := &PriceLookup{provider: provider, fallbackToMock: true}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ProviderName returns the configured provider name, or "mock"
func (l *PriceLookup) ProviderName() string {
	if l.provider == nil {
		return MockProviderName
	}
	return l.provider.Name()
}

// IsEnabled reports whether a real provider is configured
func (l *PriceLookup) IsEnabled() bool {
	return l.provider != nil
}

// Lookup returns listings and device prices for q
func (l *PriceLookup) Lookup(ctx context.Context, q model.SearchQuery) (*model.LookupResponse, error) {
	if cached, ok := l.store.Get(q); ok {
		cached.Cached = true
		return cached, nil
	}

	resp, err := l.lookupProvider(ctx, q)
	if err == nil {
		if cerr := l.store.Put(q, resp); cerr != nil {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("cache write failed: %v", cerr))
		}
		return resp, nil
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, ctx.Err())
	}
	if !l.fallbackToMock {
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	mock := MockResponse()
	mock.Fallback = true
	mock.Warnings = []string{fmt.Sprintf("%s: %v. Using sample data.", LookupFailedMessage, err)}
	return mock, nil
}

func (l *PriceLookup) lookupProvider(ctx context.Context, q model.SearchQuery) (*model.LookupResponse, error) {
	if l.provider == nil {
		return nil, errNoProvider
	}

	if l.limiter != nil {
		if err := l.limiter.Wait(ctx, "llm://"+l.provider.Name()); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	resp, err := l.provider.Lookup(ctx, LookupRequest{Query: q})
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Payload == nil {
		return nil, ErrMalformedResponse
	}

	payload := resp.Payload
	payload.Provider = l.provider.Name()
	payload.Model = resp.Model
	return payload, nil
}
