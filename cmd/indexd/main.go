// indexd consumes document-ingest batches from Kafka and commits them to
// the PostgreSQL index store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/searchcore/fulltext/internal/ingest"
	"github.com/searchcore/fulltext/internal/store"
	"github.com/searchcore/fulltext/internal/wordlists"
	"github.com/searchcore/fulltext/pkg/config"
	"github.com/searchcore/fulltext/pkg/kafka"
	"github.com/searchcore/fulltext/pkg/logger"
	"github.com/searchcore/fulltext/pkg/metrics"
	"github.com/searchcore/fulltext/pkg/postgres"
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
	slog.Info("starting indexd")

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

	var unindexed []string
	if cfg.Indexing.UnindexedWordsFile != "" {
		unindexed, err = wordlists.LoadWords(cfg.Indexing.UnindexedWordsFile)
		if err != nil {
			slog.Error("loading unindexed words", "error", err)
			os.Exit(1)
		}
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
	defer producer.Close()

	handler := ingest.NewHandler(st, cfg.Indexing, unindexed, m, producer)
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest, handler.Handle)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Start(gctx)
	})
	if cfg.Metrics.Enabled {
		g.Go(func() error {
			return serveMetrics(gctx, cfg.Metrics.Port)
		})
	}

	slog.Info("indexd ready",
		"topic", cfg.Kafka.Topics.DocumentIngest,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := g.Wait(); err != nil {
		slog.Error("indexd stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("indexd stopped")
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
