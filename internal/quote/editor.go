package quote

import "github.com/hospitaldelmovil/cotizador/internal/model"

// Editor holds one quote card's draft and whether staff edited it.
//
// Transitions:
//
//	Reset(results)  any state -> Derived   (re-derives, discards edits)
//	SelectBase(id)  any state -> Derived   (re-derives from the chosen result)
//	Set*            any state -> ManuallyEdited
//
// Edits never trigger a re-derivation.
type Editor struct {
	strategy model.Strategy
	deriver  *Deriver
	results  []model.PartResult
	draft    model.QuoteDraft
	state    model.QuoteState
}

// NewEditor creates an editor for a strategy with an empty draft
func NewEditor(strategy model.Strategy, deriver *Deriver) *Editor {
	if deriver == nil {
		deriver = DefaultDeriver()
	}
	return &Editor{
		strategy: strategy,
		deriver:  deriver,
		state:    model.QuoteDerived,
	}
}

// Reset replaces the result set and re-derives the default draft
func (e *Editor) Reset(results []model.PartResult) model.QuoteDraft {
	e.results = make([]model.PartResult, len(results))
	copy(e.results, results)
	e.draft = e.deriver.Derive(e.results, e.strategy)
	e.state = model.QuoteDerived
	return e.draft
}

// SelectBase re-derives the draft from the result with the given id.
// Returns false and leaves the draft untouched when the id is unknown.
func (e *Editor) SelectBase(resultID string) bool {
	for _, r := range e.results {
		if r.ID == resultID {
			e.draft = e.deriver.FromResult(r)
			e.state = model.QuoteDerived
			return true
		}
	}
	return false
}

// SetPrice overrides the customer price
func (e *Editor) SetPrice(price float64) {
	e.draft.CustomerPrice = price
	e.state = model.QuoteManuallyEdited
}

// SetDeliveryTime overrides the delivery estimate
func (e *Editor) SetDeliveryTime(deliveryTime string) {
	e.draft.DeliveryTime = deliveryTime
	e.state = model.QuoteManuallyEdited
}

// SetNotes overrides the notes
func (e *Editor) SetNotes(notes string) {
	e.draft.Notes = notes
	e.state = model.QuoteManuallyEdited
}

// Clone returns an independent copy, so a batch of edits can be tried and
// dropped on failure
func (e *Editor) Clone() *Editor {
	c := *e
	return &c
}

// Draft returns the current draft
func (e *Editor) Draft() model.QuoteDraft {
	return e.draft
}

// State returns the current state
func (e *Editor) State() model.QuoteState {
	return e.state
}

// Option returns the quote card for rendering
func (e *Editor) Option() model.QuoteOption {
	return model.QuoteOption{
		Strategy: e.strategy,
		Title:    e.strategy.Title(),
		State:    e.state,
		Draft:    e.draft,
	}
}
