package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hospitaldelmovil/cotizador/internal/model"
	"github.com/hospitaldelmovil/cotizador/internal/quote"
)

// ErrSuperseded is returned for a search that finished after a newer one
// was started. Its report is discarded.
var ErrSuperseded = errors.New("search superseded by a newer request")

// Searcher runs a complete search
type Searcher interface {
	Search(ctx context.Context, q model.SearchQuery) (*model.Report, error)
}

// Session is one staff member's working state: the latest report and the
// two editable quote cards derived from it
type Session struct {
	mu       sync.Mutex
	searcher Searcher
	issued   uint64
	report   *model.Report
	editors  map[model.Strategy]*quote.Editor
	settings model.QuoteSettings
}

// NewSession creates a session. A nil deriver uses the standard markup.
func NewSession(searcher Searcher, deriver *quote.Deriver, settings model.QuoteSettings) *Session {
	return &Session{
		searcher: searcher,
		editors: map[model.Strategy]*quote.Editor{
			model.StrategyFastest:  quote.NewEditor(model.StrategyFastest, deriver),
			model.StrategyCheapest: quote.NewEditor(model.StrategyCheapest, deriver),
		},
		settings: settings,
	}
}

// Search runs q and makes it the current report unless another search was
// started in the meantime, in which case ErrSuperseded is returned
func (s *Session) Search(ctx context.Context, q model.SearchQuery) (*model.Report, error) {
	token := s.begin()

	report, err := s.searcher.Search(ctx, q)
	if err != nil {
		if !s.isLatest(token) {
			return nil, ErrSuperseded
		}
		return nil, err
	}

	if !s.Apply(token, report) {
		return nil, ErrSuperseded
	}
	return s.Report(), nil
}

func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

func (s *Session) isLatest(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token == s.issued
}

// Apply installs report if token is the most recently issued one and resets
// both quote cards to their derived drafts. It reports whether the report
// was accepted.
func (s *Session) Apply(token uint64, report *model.Report) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.issued || report == nil {
		return false
	}

	s.report = report
	for _, e := range s.editors {
		e.Reset(report.Merged)
	}
	return true
}

// Report returns the current report with the quote cards as edited, or nil
func (s *Session) Report() *model.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.report == nil {
		return nil
	}
	r := *s.report
	r.Quotes = s.optionsLocked()
	return &r
}

// Quotes returns both quote cards, fastest first
func (s *Session) Quotes() []model.QuoteOption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.optionsLocked()
}

func (s *Session) optionsLocked() []model.QuoteOption {
	return []model.QuoteOption{
		s.editors[model.StrategyFastest].Option(),
		s.editors[model.StrategyCheapest].Option(),
	}
}

// Settings returns the branding of the exported quote sheet
func (s *Session) Settings() model.QuoteSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetSettings replaces the branding of the exported quote sheet
func (s *Session) SetSettings(settings model.QuoteSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// QuoteEdit is a partial update of one quote card. Reset and BasedOn
// re-derive the card; the other fields mark it manually edited.
type QuoteEdit struct {
	Reset         bool     `json:"reset"`
	BasedOn       string   `json:"basedOnResultId"`
	CustomerPrice *float64 `json:"customerPrice"`
	DeliveryTime  *string  `json:"deliveryTime"`
	Notes         *string  `json:"notes"`
}

// ApplyEdit applies every step of edit to a card, in field order, or none
// of them: a failing step leaves the card as it was
func (s *Session) ApplyEdit(strategy model.Strategy, edit QuoteEdit) (model.QuoteOption, error) {
	if edit.CustomerPrice != nil && *edit.CustomerPrice < 0 {
		return model.QuoteOption{}, fmt.Errorf("negative price %v", *edit.CustomerPrice)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.report == nil || len(s.report.Merged) == 0 {
		return model.QuoteOption{}, ErrNoResults
	}
	current, ok := s.editors[strategy]
	if !ok {
		return model.QuoteOption{}, fmt.Errorf("unknown strategy %q", strategy)
	}

	e := current.Clone()
	if edit.Reset {
		e.Reset(s.report.Merged)
	}
	if edit.BasedOn != "" && !e.SelectBase(edit.BasedOn) {
		return model.QuoteOption{}, fmt.Errorf("unknown result %q", edit.BasedOn)
	}
	if edit.CustomerPrice != nil {
		e.SetPrice(*edit.CustomerPrice)
	}
	if edit.DeliveryTime != nil {
		e.SetDeliveryTime(*edit.DeliveryTime)
	}
	if edit.Notes != nil {
		e.SetNotes(*edit.Notes)
	}

	s.editors[strategy] = e
	return e.Option(), nil
}

// SelectBase re-derives a card from the result with the given id
func (s *Session) SelectBase(strategy model.Strategy, resultID string) error {
	return s.edit(strategy, func(e *quote.Editor) error {
		if !e.SelectBase(resultID) {
			return fmt.Errorf("unknown result %q", resultID)
		}
		return nil
	})
}

// SetPrice overrides a card's customer price
func (s *Session) SetPrice(strategy model.Strategy, price float64) error {
	if price < 0 {
		return fmt.Errorf("negative price %v", price)
	}
	return s.edit(strategy, func(e *quote.Editor) error {
		e.SetPrice(price)
		return nil
	})
}

// SetDeliveryTime overrides a card's delivery estimate
func (s *Session) SetDeliveryTime(strategy model.Strategy, deliveryTime string) error {
	return s.edit(strategy, func(e *quote.Editor) error {
		e.SetDeliveryTime(deliveryTime)
		return nil
	})
}

// SetNotes overrides a card's notes
func (s *Session) SetNotes(strategy model.Strategy, notes string) error {
	return s.edit(strategy, func(e *quote.Editor) error {
		e.SetNotes(notes)
		return nil
	})
}

// ResetQuote discards edits on a card and re-derives it
func (s *Session) ResetQuote(strategy model.Strategy) error {
	return s.edit(strategy, func(e *quote.Editor) error {
		e.Reset(s.report.Merged)
		return nil
	})
}

func (s *Session) edit(strategy model.Strategy, fn func(*quote.Editor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.report == nil || len(s.report.Merged) == 0 {
		return ErrNoResults
	}
	e, ok := s.editors[strategy]
	if !ok {
		return fmt.Errorf("unknown strategy %q", strategy)
	}
	return fn(e)
}
