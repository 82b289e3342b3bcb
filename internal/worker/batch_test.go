package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

// MockSearcher implements Searcher
type MockSearcher struct {
	FailPart string
	Delay    time.Duration
	calls    int32
}

func (m *MockSearcher) Search(ctx context.Context, q model.SearchQuery) (*model.Report, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.FailPart != "" && q.Part == m.FailPart {
		return nil, errors.New("search error")
	}
	return &model.Report{Query: q}, nil
}

func queries(parts ...string) []model.SearchQuery {
	out := make([]model.SearchQuery, len(parts))
	for i, p := range parts {
		q := model.DefaultQuery()
		q.Part = p
		out[i] = q
	}
	return out
}

func TestBatchProcessor_ProcessQueries(t *testing.T) {
	searcher := &MockSearcher{Delay: 5 * time.Millisecond}
	processor := NewBatchProcessor(searcher, 2)

	in := queries("Display", "Batería", "Cámara Trasera")
	results := processor.ProcessQueries(context.Background(), in)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Query.Part, res.Error)
		}
		if res.Index != i || res.Query.Part != in[i].Part {
			t.Errorf("result %d out of order: %+v", i, res.Query)
		}
		if res.Report == nil || res.Report.Query.Part != in[i].Part {
			t.Errorf("result %d: wrong report", i)
		}
	}
}

func TestBatchProcessor_ManyQueries(t *testing.T) {
	// More jobs than the pool buffers must not deadlock
	parts := make([]string, 40)
	for i := range parts {
		parts[i] = strings.Repeat("p", i+1)
	}
	searcher := &MockSearcher{}
	processor := NewBatchProcessor(searcher, 2)

	done := make(chan []*SearchResult)
	go func() { done <- processor.ProcessQueries(context.Background(), queries(parts...)) }()

	select {
	case results := <-done:
		if len(results) != 40 {
			t.Errorf("expected 40 results, got %d", len(results))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("batch did not finish")
	}
}

func TestBatchProcessor_PartialError(t *testing.T) {
	searcher := &MockSearcher{FailPart: "Batería"}
	processor := NewBatchProcessor(searcher, 2)

	results := processor.ProcessQueries(context.Background(), queries("Display", "Batería"))

	if results[0].Error != nil {
		t.Errorf("unexpected error: %v", results[0].Error)
	}
	if results[1].Error == nil || results[1].Report != nil {
		t.Errorf("expected failure with nil report, got %+v", results[1])
	}
}

func TestBatchProcessor_Cancelled(t *testing.T) {
	searcher := &MockSearcher{Delay: time.Second}
	processor := NewBatchProcessor(searcher, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	results := processor.ProcessQueries(ctx, queries("a", "b", "c"))
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Error == nil {
			t.Errorf("expected error for %s after cancellation", r.Query.Part)
		}
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockSearcher{}, 2)
	results := processor.ProcessQueries(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestReadQueries(t *testing.T) {
	content := `# tipo,marca,modelo,pieza,variante1,variante2
Celular,Apple,iPhone 14 Pro,Display,OLED,Original

Celular, Samsung, Galaxy S23, Batería
Celular,Apple,iPhone 14 Pro,Display,OLED,Original
"Tablet","Apple","iPad Air","Display, táctil",,
`
	got, err := ReadQueries(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ReadQueries failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 queries, got %d: %+v", len(got), got)
	}
	if got[0] != model.DefaultQuery() {
		t.Errorf("unexpected first query: %+v", got[0])
	}
	if got[1].Brand != "Samsung" || got[1].Variant1 != "" {
		t.Errorf("unexpected second query: %+v", got[1])
	}
	if got[2].Part != "Display, táctil" {
		t.Errorf("quoted field not preserved: %q", got[2].Part)
	}
}

func TestReadQueries_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"too few fields", "Celular,Apple,iPhone 14\n"},
		{"missing brand", "Celular,,iPhone 14,Display\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadQueries(strings.NewReader(tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consultas.csv")
	content := "Celular,Apple,iPhone 14 Pro,Display\n# comment\nCelular,Apple,iPhone 13,Batería\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	searcher := &MockSearcher{}
	results, err := NewBatchProcessor(searcher, 2).ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
	if atomic.LoadInt32(&searcher.calls) != 2 {
		t.Errorf("expected 2 searches, got %d", searcher.calls)
	}

	if _, err := NewBatchProcessor(searcher, 2).ProcessFile(context.Background(), "missing.csv"); err == nil {
		t.Error("expected error for missing file")
	}
}
