// Package server exposes lookups, searches and quote edits over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hospitaldelmovil/cotizador/internal/history"
	"github.com/hospitaldelmovil/cotizador/internal/llm"
	"github.com/hospitaldelmovil/cotizador/internal/model"
	"github.com/hospitaldelmovil/cotizador/internal/pipeline"
)

// Server is the HTTP API
type Server struct {
	lookup  pipeline.PriceLookup
	session *pipeline.Session
	history []model.HistoricalOffer
	catalog model.Catalog
	metrics *Metrics
	engine  *gin.Engine
}

// Options carries the collaborators of a Server
type Options struct {
	Lookup  pipeline.PriceLookup
	Session *pipeline.Session
	History []model.HistoricalOffer
	Catalog model.Catalog
	Metrics *Metrics
	Logging bool // gin request logging
}

// New builds the server and its routes
func New(opts Options) *Server {
	s := &Server{
		lookup:  opts.Lookup,
		session: opts.Session,
		history: opts.History,
		catalog: opts.Catalog,
		metrics: opts.Metrics,
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	if opts.Logging {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery(), corsMiddleware())

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api")
	{
		api.POST("/quotes", s.lookupQuotes)
		api.POST("/search", s.search)
		api.GET("/report", s.report)
		api.PATCH("/report/quotes/:strategy", s.editQuote)
		api.GET("/history", s.listHistory)
		api.GET("/catalog", s.getCatalog)
	}

	s.engine = r
	return s
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "Listening on %s\n", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"provider": s.lookup.ProviderName(),
	})
}

// lookupQuotes returns the raw remote lookup for a query
func (s *Server) lookupQuotes(c *gin.Context) {
	var q model.SearchQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := q.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	resp, err := s.lookup.Lookup(c.Request.Context(), q)
	s.metrics.observeLookup("quotes", start, resp, err)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": llm.LookupFailedMessage, "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) search(c *gin.Context) {
	var q model.SearchQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := q.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	report, err := s.session.Search(c.Request.Context(), q)
	s.metrics.observeSearch(start, report, err)
	switch {
	case errors.Is(err, pipeline.ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, llm.ErrLookupFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": llm.LookupFailedMessage, "detail": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, report)
	}
}

func (s *Server) report(c *gin.Context) {
	report := s.session.Report()
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no search yet"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) editQuote(c *gin.Context) {
	strategy := model.Strategy(c.Param("strategy"))

	var edit pipeline.QuoteEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	opt, err := s.session.ApplyEdit(strategy, edit)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, pipeline.ErrNoResults) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, opt)
}

func (s *Server) listHistory(c *gin.Context) {
	c.JSON(http.StatusOK, history.SortedByDateDesc(s.history))
}

func (s *Server) getCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog)
}
