// Package ingest decodes document-ingest messages and drives an Indexer
// session per batch, publishing a completion event after commit.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/searchcore/fulltext/internal/document"
	"github.com/searchcore/fulltext/internal/indexer"
	"github.com/searchcore/fulltext/internal/normalizer"
	"github.com/searchcore/fulltext/internal/registry"
	"github.com/searchcore/fulltext/internal/store"
	"github.com/searchcore/fulltext/pkg/config"
	"github.com/searchcore/fulltext/pkg/errors"
	"github.com/searchcore/fulltext/pkg/kafka"
	"github.com/searchcore/fulltext/pkg/logger"
	"github.com/searchcore/fulltext/pkg/metrics"
)

// Batch is the wire format of one document-ingest message.
type Batch struct {
	DocumentType string          `json:"document_type"`
	Mode         string          `json:"mode"` // "fresh" or "append"
	Documents    []BatchDocument `json:"documents"`
}

// BatchDocument carries one document's field layout and values.
type BatchDocument struct {
	ID     string            `json:"id"`
	Fields []FieldSpec       `json:"fields"`
	Values map[string]string `json:"values"`
}

// FieldSpec mirrors document.Field on the wire.
type FieldSpec struct {
	Name    string `json:"name"`
	Weight  int    `json:"weight"`
	Popular bool   `json:"popular"`
}

// Completion is published after a batch commits.
type Completion struct {
	DocumentType string    `json:"document_type"`
	Documents    int       `json:"documents"`
	Postings     int       `json:"postings"`
	CommittedAt  time.Time `json:"committed_at"`
}

// Handler consumes ingest batches and commits them to the index store.
type Handler struct {
	store     store.Store
	registry  *registry.Registry
	cfg       config.IndexingConfig
	unindexed []string
	metrics   *metrics.Metrics
	producer  *kafka.Producer
	logger    *slog.Logger
}

// NewHandler wires a Handler. producer and m may be nil.
func NewHandler(st store.Store, cfg config.IndexingConfig, unindexed []string, m *metrics.Metrics, producer *kafka.Producer) *Handler {
	return &Handler{
		store:     st,
		registry:  registry.New(st),
		cfg:       cfg,
		unindexed: unindexed,
		metrics:   m,
		producer:  producer,
		logger:    logger.WithComponent("ingest-handler"),
	}
}

// Handle is the kafka.MessageHandler for the document-ingest topic.
func (h *Handler) Handle(ctx context.Context, _ []byte, value []byte) error {
	batch, err := kafka.DecodeJSON[Batch](value)
	if err != nil {
		return err
	}
	if batch.DocumentType == "" {
		return errors.New(errors.ErrInvalidInput, "ingest batch has no document type")
	}
	if _, err := h.registry.Create(ctx, batch.DocumentType); err != nil {
		return err
	}

	mode := indexer.ModeAppend
	if batch.Mode == "fresh" {
		mode = indexer.ModeFresh
	}
	ix, err := indexer.New(ctx, h.store, batch.DocumentType, mode)
	if err != nil {
		return err
	}
	ix.SetMaxWordLength(h.cfg.MaxWordLength)
	ix.SetGapWeights(GapWeightsFromConfig(h.cfg.GapWeights))
	for _, word := range h.unindexed {
		ix.AddUnindexedWord(word)
	}

	for _, d := range batch.Documents {
		fields := make([]document.Field, 0, len(d.Fields))
		for _, f := range d.Fields {
			fields = append(fields, document.Field{Name: f.Name, Weight: f.Weight, Popular: f.Popular})
		}
		doc := document.Document{
			ID:       d.ID,
			Fields:   fields,
			Accessor: document.MapAccessor(d.Values),
		}
		if err := ix.Index(doc); err != nil {
			ix.Discard()
			return err
		}
		if h.metrics != nil {
			h.metrics.DocsIndexedTotal.Inc()
		}
	}

	postings := ix.PendingPostings()
	popular := ix.PendingPopularWords()
	if err := ix.Commit(ctx); err != nil {
		if h.metrics != nil {
			h.metrics.CommitsTotal.WithLabelValues("error").Inc()
		}
		ix.Discard()
		return err
	}
	if h.metrics != nil {
		h.metrics.CommitsTotal.WithLabelValues("ok").Inc()
		h.metrics.PostingsCommittedTotal.Add(float64(postings))
		h.metrics.PopularWordsHarvested.Add(float64(popular))
	}
	if err := ix.Close(); err != nil {
		return err
	}

	h.logger.Info("ingest batch committed",
		"document_type", batch.DocumentType,
		"documents", len(batch.Documents),
		"postings", postings,
	)
	if h.producer != nil {
		event := kafka.Event{
			Key: batch.DocumentType,
			Value: Completion{
				DocumentType: batch.DocumentType,
				Documents:    len(batch.Documents),
				Postings:     postings,
				CommittedAt:  time.Now().UTC(),
			},
		}
		if err := h.producer.Publish(ctx, event); err != nil {
			// The index is already committed; completion events are
			// best-effort.
			h.logger.Error("publishing completion event failed", "error", err)
		}
	}
	return nil
}

// GapWeightsFromConfig converts configured gap weights, falling back to the
// defaults for unset classes.
func GapWeightsFromConfig(c config.GapWeightsConfig) normalizer.GapWeights {
	w := normalizer.DefaultGapWeights()
	if c.Sentence > 0 {
		w.Sentence = c.Sentence
	}
	if c.Tab > 0 {
		w.Tab = c.Tab
	}
	if c.Newline > 0 {
		w.Newline = c.Newline
	}
	if c.Punctuation > 0 {
		w.Punctuation = c.Punctuation
	}
	if c.Space > 0 {
		w.Space = c.Space
	}
	return w
}
