package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/searchcore/fulltext/internal/document"
	"github.com/searchcore/fulltext/internal/rank"
	"github.com/searchcore/fulltext/pkg/config"
	"github.com/searchcore/fulltext/pkg/errors"
	"github.com/searchcore/fulltext/pkg/logger"
	"github.com/searchcore/fulltext/pkg/postgres"
)

// Postgres is the production Store backed by lib/pq.
type Postgres struct {
	client *postgres.Client
	cfg    config.SearchConfig
	logger *slog.Logger
}

// NewPostgres wraps a Postgres client. cfg supplies the result cache window
// and raw result retention used for opportunistic purging.
func NewPostgres(client *postgres.Client, cfg config.SearchConfig) *Postgres {
	return &Postgres{
		client: client,
		cfg:    cfg,
		logger: logger.WithComponent("postgres-store"),
	}
}

// EnsureSchema creates the store tables and indexes if missing.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.client.DB.ExecContext(ctx, ddl); err != nil {
		return errors.Store("creating schema", err)
	}
	return nil
}

// CreateDocumentType registers a type name, returning the existing id when
// the name is already registered.
func (s *Postgres) CreateDocumentType(ctx context.Context, name string) (int, error) {
	if name == "" {
		return 0, errors.New(errors.ErrInvalidInput, "document type name is empty")
	}
	if _, err := s.client.DB.ExecContext(ctx,
		`INSERT INTO document_types (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
		name,
	); err != nil {
		return 0, errors.Store("registering document type", err)
	}
	var id int
	if err := s.client.DB.QueryRowContext(ctx,
		`SELECT id FROM document_types WHERE name = $1`, name,
	).Scan(&id); err != nil {
		return 0, errors.Store("resolving document type id", err)
	}
	return id, nil
}

// LookupDocumentType resolves a type name to its id.
func (s *Postgres) LookupDocumentType(ctx context.Context, name string) (int, bool, error) {
	var id int
	err := s.client.DB.QueryRowContext(ctx,
		`SELECT id FROM document_types WHERE name = $1`, name,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Store("looking up document type", err)
	}
	return id, true, nil
}

// RemoveDocumentType removes a type together with all of its postings and
// result rows.
func (s *Postgres) RemoveDocumentType(ctx context.Context, name string) error {
	err := s.client.InTx(ctx, func(tx *sql.Tx) error {
		var id int
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM document_types WHERE name = $1`, name,
		).Scan(&id)
		if err == sql.ErrNoRows {
			return errors.Newf(errors.ErrUnknownDocumentType, "%s", name)
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM postings WHERE document_type = $1`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE document_type = $1`, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM document_types WHERE id = $1`, id)
		return err
	})
	if err != nil && !stderrors.Is(err, errors.ErrUnknownDocumentType) {
		return errors.Store("removing document type", err)
	}
	return err
}

// CommitIndex applies one indexing batch inside a single transaction: the
// optional type wipe, the queued per-document deletes, a COPY bulk insert of
// the postings, and insert-if-absent popular words.
func (s *Postgres) CommitIndex(ctx context.Context, batch Batch) error {
	start := time.Now()
	err := s.client.InTx(ctx, func(tx *sql.Tx) error {
		if batch.WipeType {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM postings WHERE document_type = $1`, batch.DocumentType,
			); err != nil {
				return err
			}
		}
		if len(batch.DeleteDocumentIDs) > 0 {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM postings WHERE document_type = $1 AND document_id = ANY($2)`,
				batch.DocumentType, pq.Array(batch.DeleteDocumentIDs),
			); err != nil {
				return err
			}
		}
		if err := copyPostings(ctx, tx, batch.Postings); err != nil {
			return err
		}
		for _, word := range batch.PopularWords {
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM popular_words WHERE word = $1)`, word,
			).Scan(&exists); err != nil {
				return err
			}
			if exists {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO popular_words (word) VALUES ($1)`, word,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Store("committing index batch", err)
	}
	s.logger.Info("index batch committed",
		"document_type", batch.DocumentType,
		"postings", len(batch.Postings),
		"deleted_docs", len(batch.DeleteDocumentIDs),
		"popular_words", len(batch.PopularWords),
		"wipe", batch.WipeType,
		"elapsed", time.Since(start),
	)
	return nil
}

func copyPostings(ctx context.Context, tx *sql.Tx, postings []document.Keyword) error {
	if len(postings) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"postings",
		"document_id", "document_type", "field_ordinal", "word", "weight", "location",
	))
	if err != nil {
		return err
	}
	for _, k := range postings {
		if _, err := stmt.ExecContext(ctx,
			k.DocumentID, k.DocumentType, k.FieldOrdinal, k.Word, k.Weight, k.Location,
		); err != nil {
			stmt.Close()
			return err
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return err
	}
	return stmt.Close()
}

// Rank executes the ranking pass in one transaction: purge stale rows, try
// the content-hash cache, otherwise gather postings, score, and persist the
// result set under the candidate unique id.
func (s *Postgres) Rank(ctx context.Context, req RankRequest) (string, error) {
	uniqueID := req.CandidateUniqueID
	now := time.Now().UTC()
	err := s.client.InTx(ctx, func(tx *sql.Tx) error {
		if err := s.purgeStale(ctx, tx, now); err != nil {
			return err
		}

		var cached string
		err := tx.QueryRowContext(ctx,
			`SELECT unique_id FROM result_cache WHERE content_hash = $1 ORDER BY created_at DESC LIMIT 1`,
			req.ContentHash,
		).Scan(&cached)
		if err == nil {
			if _, err := tx.ExecContext(ctx,
				`UPDATE result_cache SET created_at = $1 WHERE content_hash = $2`,
				now, req.ContentHash,
			); err != nil {
				return err
			}
			uniqueID = cached
			return nil
		}
		if err != sql.ErrNoRows {
			return err
		}

		words := distinctWords(req.Keywords)
		postings, err := s.fetchPostings(ctx, tx, words, req.DocumentTypes)
		if err != nil {
			return err
		}
		scored := rank.Compute(words, postings)
		for _, sc := range scored {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO results (document_id, document_type, primary_sort, secondary_sort, unique_id, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				sc.DocumentID, sc.DocumentType, sc.PrimarySort, sc.SecondarySort, req.CandidateUniqueID, now,
			); err != nil {
				return err
			}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO result_cache (unique_id, content_hash, created_at) VALUES ($1, $2, $3)`,
			req.CandidateUniqueID, req.ContentHash, now,
		)
		return err
	})
	if err != nil {
		return "", errors.Store("ranking query", err)
	}
	return uniqueID, nil
}

// purgeStale drops expired cache entries and result rows past retention
// that no live cache entry references.
func (s *Postgres) purgeStale(ctx context.Context, tx *sql.Tx, now time.Time) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM result_cache WHERE created_at < $1`,
		now.Add(-s.cfg.CacheWindow),
	); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		`DELETE FROM results r
		 WHERE r.created_at < $1
		   AND NOT EXISTS (SELECT 1 FROM result_cache c WHERE c.unique_id = r.unique_id)`,
		now.Add(-s.cfg.ResultRetention),
	)
	return err
}

func (s *Postgres) fetchPostings(ctx context.Context, tx *sql.Tx, words []string, types []int) (map[string][]rank.Posting, error) {
	if len(words) == 0 {
		return nil, nil
	}
	query := `SELECT word, document_id, document_type, weight, location FROM postings WHERE word = ANY($1)`
	args := []any{pq.Array(words)}
	if len(types) > 0 {
		query += ` AND document_type = ANY($2)`
		args = append(args, pq.Array(types))
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	postings := make(map[string][]rank.Posting, len(words))
	for rows.Next() {
		var word string
		var p rank.Posting
		if err := rows.Scan(&word, &p.DocumentID, &p.DocumentType, &p.Weight, &p.Location); err != nil {
			return nil, err
		}
		postings[word] = append(postings[word], p)
	}
	return postings, rows.Err()
}

// Results returns the rows persisted under a unique id, best first.
func (s *Postgres) Results(ctx context.Context, uniqueID string) ([]Result, error) {
	rows, err := s.client.DB.QueryContext(ctx,
		`SELECT document_id, document_type, primary_sort, secondary_sort
		 FROM results WHERE unique_id = $1
		 ORDER BY primary_sort, secondary_sort, document_id`,
		uniqueID,
	)
	if err != nil {
		return nil, errors.Store("listing results", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.DocumentID, &r.DocumentType, &r.PrimarySort, &r.SecondarySort); err != nil {
			return nil, errors.Store("scanning result row", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Store("listing results", err)
	}
	return results, nil
}

// ResultCount returns the number of rows under a unique id.
func (s *Postgres) ResultCount(ctx context.Context, uniqueID string) (int, error) {
	var count int
	if err := s.client.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM results WHERE unique_id = $1`, uniqueID,
	).Scan(&count); err != nil {
		return 0, errors.Store("counting results", err)
	}
	return count, nil
}

// PopularWords returns the deduplicated popular-word list.
func (s *Postgres) PopularWords(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT DISTINCT word FROM popular_words ORDER BY word`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.client.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Store("listing popular words", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, errors.Store("scanning popular word", err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Store("listing popular words", err)
	}
	return words, nil
}

// distinctWords splits a stemmed search string and deduplicates it,
// preserving first-seen order.
func distinctWords(keywords string) []string {
	fields := strings.Fields(keywords)
	seen := make(map[string]struct{}, len(fields))
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	return words
}
