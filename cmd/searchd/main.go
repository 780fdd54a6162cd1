// searchd serves ranked fulltext queries over HTTP.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/searchcore/fulltext/internal/query"
	"github.com/searchcore/fulltext/internal/registry"
	"github.com/searchcore/fulltext/internal/spell"
	"github.com/searchcore/fulltext/internal/store"
	"github.com/searchcore/fulltext/internal/wordlists"
	"github.com/searchcore/fulltext/pkg/config"
	ferrors "github.com/searchcore/fulltext/pkg/errors"
	"github.com/searchcore/fulltext/pkg/logger"
	"github.com/searchcore/fulltext/pkg/metrics"
	"github.com/searchcore/fulltext/pkg/postgres"
	"github.com/searchcore/fulltext/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting searchd")

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.NewPostgres(db, cfg.Search)
	if err := st.EnsureSchema(ctx); err != nil {
		slog.Error("ensuring schema", "error", err)
		os.Exit(1)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	engine, err := buildEngine(ctx, st, cfg, m)
	if err != nil {
		slog.Error("building query engine", "error", err)
		os.Exit(1)
	}
	srv := newServer(engine, st, m)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("searchd listening", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if cfg.Metrics.Enabled {
		g.Go(func() error {
			return serveMetrics(gctx, cfg.Metrics.Port)
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("searchd stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("searchd stopped")
}

// buildEngine wires the query engine from configuration: document types,
// blocked words, misspellings dictionary, harvested popular words, and the
// optional Redis front cache. m may be nil.
func buildEngine(ctx context.Context, st store.Store, cfg *config.Config, m *metrics.Metrics) (*query.Engine, error) {
	engine := query.New(st)

	reg := registry.New(st)
	for _, name := range cfg.Search.DocumentTypes {
		if _, err := reg.Create(ctx, name); err != nil {
			return nil, err
		}
		if err := engine.AddDocumentType(ctx, name); err != nil {
			return nil, err
		}
	}

	if cfg.Search.BlockedWordsFile != "" {
		blocked, err := wordlists.LoadWords(cfg.Search.BlockedWordsFile)
		if err != nil {
			return nil, err
		}
		for _, w := range blocked {
			engine.AddBlockedWord(w)
		}
	}
	if cfg.Search.MisspellingsFile != "" {
		corrections, err := wordlists.LoadMisspellings(cfg.Search.MisspellingsFile)
		if err != nil {
			return nil, err
		}
		engine.SetSpellChecker(spell.NewDictionary(corrections))
	}
	if err := engine.LoadPopularWords(ctx, cfg.Search.PopularWordsLimit); err != nil {
		return nil, err
	}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		ttl := cfg.Redis.CacheTTL
		if ttl <= 0 {
			ttl = cfg.Search.CacheWindow
		}
		cache := query.NewResultCache(client, ttl)
		if m != nil {
			cache.SetCounters(m.RankCacheHitsTotal, m.RankCacheMissesTotal)
		}
		engine.SetResultCache(cache)
		slog.Info("redis result cache enabled", "addr", cfg.Redis.Addr)
	}
	return engine, nil
}

type server struct {
	engine  *query.Engine
	store   store.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func newServer(engine *query.Engine, st store.Store, m *metrics.Metrics) *server {
	return &server{
		engine:  engine,
		store:   st,
		metrics: m,
		logger:  logger.WithComponent("searchd"),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.instrument(mux)
}

type searchResponse struct {
	Query         string            `json:"query"`
	UniqueID      string            `json:"unique_id,omitempty"`
	BlockedWords  []string          `json:"blocked_words,omitempty"`
	SearchedWords []string          `json:"searched_words,omitempty"`
	Misspellings  map[string]string `json:"misspellings,omitempty"`
	DocumentCount int               `json:"document_count"`
	Hits          []searchHit       `json:"hits"`
}

type searchHit struct {
	DocumentID   string  `json:"document_id"`
	DocumentType int     `json:"document_type"`
	Score        float64 `json:"score"`
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		s.writeError(w, ferrors.New(ferrors.ErrInvalidInput, "missing q parameter"))
		return
	}
	start := time.Now()
	result, err := s.engine.Query(r.Context(), q)
	if err != nil {
		if s.metrics != nil {
			s.metrics.QueriesTotal.WithLabelValues("error").Inc()
		}
		s.writeError(w, err)
		return
	}

	var hits []searchHit
	if result.UniqueID != "" {
		rows, err := s.store.Results(r.Context(), result.UniqueID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		hits = make([]searchHit, 0, len(rows))
		for _, row := range rows {
			hits = append(hits, searchHit{
				DocumentID:   row.DocumentID,
				DocumentType: row.DocumentType,
				Score:        row.PrimarySort,
			})
		}
	}

	if s.metrics != nil {
		outcome := "unranked"
		if result.UniqueID != "" {
			outcome = "ranked"
		}
		s.metrics.QueriesTotal.WithLabelValues(outcome).Inc()
		s.metrics.QueryLatency.WithLabelValues("store").Observe(time.Since(start).Seconds())
		s.metrics.QueryResultsCount.Observe(float64(result.DocumentCount))
	}

	s.writeJSON(w, http.StatusOK, searchResponse{
		Query:         result.QueryString,
		UniqueID:      result.UniqueID,
		BlockedWords:  result.BlockedWords,
		SearchedWords: result.SearchedWords,
		Misspellings:  result.Misspellings,
		DocumentCount: result.DocumentCount,
		Hits:          hits,
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if cache := s.engine.ResultCache(); cache != nil {
		if err := cache.Ping(r.Context()); err != nil {
			s.logger.Error("health check: redis unreachable", "error", err)
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("writing response", "error", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	status := ferrors.HTTPStatusCode(err)
	s.logger.Error("request failed", "status", status, "error", err)
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// instrument records request counters and latency around every handler.
func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
		s.metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func serveMetrics(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
