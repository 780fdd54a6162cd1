package store

// ddl creates the index store schema. popular_words deliberately carries no
// uniqueness constraint: commit uses an existence check followed by a
// conditional insert, so concurrent commits may leave a duplicate row, and
// reads deduplicate instead. Deployments that need strict uniqueness can add
// the constraint themselves without changing this code.
const ddl = `
CREATE TABLE IF NOT EXISTS document_types (
  id   SERIAL PRIMARY KEY,
  name TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS postings (
  document_id   TEXT NOT NULL,
  document_type INT  NOT NULL,
  field_ordinal INT  NOT NULL DEFAULT 0,
  word          TEXT NOT NULL,
  weight        INT  NOT NULL,
  location      INT  NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_postings_word ON postings(word, document_type);
CREATE INDEX IF NOT EXISTS idx_postings_doc  ON postings(document_id, document_type);

CREATE TABLE IF NOT EXISTS popular_words (
  word TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_popular_word ON popular_words(word);

CREATE TABLE IF NOT EXISTS results (
  document_id    TEXT NOT NULL,
  document_type  INT  NOT NULL,
  primary_sort   DOUBLE PRECISION NOT NULL,
  secondary_sort DOUBLE PRECISION NOT NULL,
  unique_id      TEXT NOT NULL,
  created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_uid     ON results(unique_id);
CREATE INDEX IF NOT EXISTS idx_results_created ON results(created_at);

CREATE TABLE IF NOT EXISTS result_cache (
  unique_id    TEXT NOT NULL,
  content_hash TEXT NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_result_cache_hash    ON result_cache(content_hash);
CREATE INDEX IF NOT EXISTS idx_result_cache_created ON result_cache(created_at);
`
