// Package pgstore implements store.Store and store.TemplateSource over
// PostgreSQL with pgx.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/store"
)

//go:embed schema.sql
var schemaSQL string

// foreignKeyViolation is the SQLSTATE of a missing referenced row.
const foreignKeyViolation = "23503"

type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store keeps records, section answers, and templates in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	db   queryable
}

var (
	_ store.Store          = (*Store)(nil)
	_ store.TemplateSource = (*Store)(nil)
)

// Open connects a pool and checks the connection.
func Open(ctx context.Context, databaseURL string, maxConns, minConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgstore: parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns > 0 {
		cfg.MinConns = minConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgstore: create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: ping database: %w", err)
	}
	return New(pool), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// Close releases the pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate creates the tables when they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("pgstore: migrate: %w", err)
	}
	return nil
}

func (s *Store) CreateRecord(ctx context.Context, label string) (store.Record, error) {
	rec := store.Record{ID: uuid.NewString(), Label: label, Sections: []string{}}
	err := s.db.QueryRow(ctx,
		`INSERT INTO records (id, label) VALUES ($1, $2) RETURNING created_at`,
		rec.ID, label,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return store.Record{}, fmt.Errorf("pgstore: create record: %w", err)
	}
	return rec, nil
}

func (s *Store) ListRecords(ctx context.Context) ([]store.Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.id::text, r.label, r.created_at,
			COALESCE(array_agg(rs.section ORDER BY rs.section) FILTER (WHERE rs.section IS NOT NULL), '{}')
		FROM records r
		LEFT JOIN record_sections rs ON rs.record_id = r.id
		GROUP BY r.id, r.label, r.created_at
		ORDER BY r.created_at, r.id`)
	if err != nil {
		return nil, fmt.Errorf("pgstore: list records: %w", err)
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		var rec store.Record
		if err := rows.Scan(&rec.ID, &rec.Label, &rec.CreatedAt, &rec.Sections); err != nil {
			return nil, fmt.Errorf("pgstore: scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgstore: list records: %w", err)
	}
	return out, nil
}

func (s *Store) Fetch(ctx context.Context, recordID, section string) (model.AnswerSet, error) {
	id, err := parseRecordID(recordID)
	if err != nil {
		return nil, err
	}
	var raw []byte
	err = s.db.QueryRow(ctx,
		`SELECT answers FROM record_sections WHERE record_id = $1 AND section = $2`,
		id, section,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: section %q of record %q", store.ErrNotFound, section, recordID)
	}
	if err != nil {
		return nil, fmt.Errorf("pgstore: fetch: %w", err)
	}
	return decodeAnswers(raw)
}

func (s *Store) Update(ctx context.Context, recordID, section string, answers model.AnswerSet) error {
	id, err := parseRecordID(recordID)
	if err != nil {
		return err
	}
	raw, err := encodeAnswers(answers)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO record_sections (record_id, section, answers, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (record_id, section)
		DO UPDATE SET answers = EXCLUDED.answers, updated_at = NOW()`,
		id, section, raw,
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: record %q", store.ErrNotFound, recordID)
	}
	if err != nil {
		return fmt.Errorf("pgstore: update: %w", err)
	}
	return nil
}

// Template returns the stored note template of slug.
func (s *Store) Template(ctx context.Context, slug string) (string, error) {
	var body string
	err := s.db.QueryRow(ctx, `SELECT body FROM templates WHERE slug = $1`, slug).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: template %q", store.ErrNotFound, slug)
	}
	if err != nil {
		return "", fmt.Errorf("pgstore: template: %w", err)
	}
	return body, nil
}

// PutTemplate creates or replaces the template of slug.
func (s *Store) PutTemplate(ctx context.Context, slug, body string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO templates (slug, body, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (slug) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`,
		slug, body,
	)
	if err != nil {
		return fmt.Errorf("pgstore: put template: %w", err)
	}
	return nil
}

func parseRecordID(recordID string) (uuid.UUID, error) {
	id, err := uuid.Parse(recordID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: record %q", store.ErrNotFound, recordID)
	}
	return id, nil
}

func encodeAnswers(answers model.AnswerSet) ([]byte, error) {
	if answers == nil {
		answers = model.AnswerSet{}
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("pgstore: encode answers: %w", err)
	}
	return raw, nil
}

func decodeAnswers(raw []byte) (model.AnswerSet, error) {
	out := model.AnswerSet{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("pgstore: decode answers: %w", err)
	}
	return out, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}
