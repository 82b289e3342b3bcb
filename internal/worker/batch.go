package worker

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

// Searcher runs one complete price search
type Searcher interface {
	Search(ctx context.Context, q model.SearchQuery) (*model.Report, error)
}

// SearchJob prices one query
type SearchJob struct {
	Index    int
	Query    model.SearchQuery
	Searcher Searcher
}

// Execute runs the search
func (j *SearchJob) Execute(ctx context.Context) Result {
	report, err := j.Searcher.Search(ctx, j.Query)
	return &SearchResult{
		Index:  j.Index,
		Query:  j.Query,
		Report: report,
		Error:  err,
	}
}

// SearchResult is the outcome of one batch entry
type SearchResult struct {
	Index  int
	Query  model.SearchQuery
	Report *model.Report
	Error  error
}

// GetError returns the search error
func (r *SearchResult) GetError() error {
	return r.Error
}

// BatchProcessor prices many queries concurrently
type BatchProcessor struct {
	searcher    Searcher
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(searcher Searcher, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		searcher:    searcher,
		concurrency: concurrency,
	}
}

// ProcessQueries runs every query and returns results in input order.
// Queries not started before ctx is cancelled report ctx's error.
func (b *BatchProcessor) ProcessQueries(ctx context.Context, queries []model.SearchQuery) []*SearchResult {
	if len(queries) == 0 {
		return []*SearchResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		for i, q := range queries {
			pool.Submit(&SearchJob{Index: i, Query: q, Searcher: b.searcher})
		}
		pool.Close()
	}()

	results := make([]*SearchResult, len(queries))
	for r := range pool.Results() {
		sr := r.(*SearchResult)
		results[sr.Index] = sr
	}

	for i, r := range results {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = errors.New("search not run")
			}
			results[i] = &SearchResult{Index: i, Query: queries[i], Error: err}
		}
	}

	return results
}

// ProcessFile reads queries from a file and runs them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*SearchResult, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}
	return b.ProcessQueries(ctx, queries), nil
}

// ReadQueriesFromFile reads one query per line
func ReadQueriesFromFile(filePath string) ([]model.SearchQuery, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadQueries(file)
}

// ReadQueries parses lines of the form
//
//	deviceType,brand,model,part[,variant1[,variant2]]
//
// Blank lines and lines starting with # are skipped. Duplicate queries keep
// their first occurrence.
func ReadQueries(r io.Reader) ([]model.SearchQuery, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var queries []model.SearchQuery
	seen := make(map[string]bool)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse queries: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if len(row) < 4 {
			return nil, fmt.Errorf("line %d: expected at least 4 fields, got %d", line, len(row))
		}

		fields := make([]string, 6)
		for i := 0; i < len(fields) && i < len(row); i++ {
			fields[i] = strings.TrimSpace(row[i])
		}
		q := model.SearchQuery{
			DeviceType: fields[0],
			Brand:      fields[1],
			Model:      fields[2],
			Part:       fields[3],
			Variant1:   fields[4],
			Variant2:   fields[5],
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if !seen[q.Key()] {
			seen[q.Key()] = true
			queries = append(queries, q)
		}
	}

	return queries, nil
}
