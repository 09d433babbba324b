package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/teamhub/internal/platform/db"
)

const documentsSchema = `CREATE TABLE IF NOT EXISTS documents (
	collection TEXT PRIMARY KEY,
	body JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Postgres stores documents as JSONB rows keyed by collection name.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the documents table when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, documentsSchema); err != nil {
		return fmt.Errorf("docstore/postgres: ensure schema: %w", err)
	}
	return nil
}

// Load reads the document, inserting "{}" first when the row is missing.
func (p *Postgres) Load(ctx context.Context, c Collection) ([]byte, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	var doc []byte
	err := db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO documents (collection, body, updated_at) VALUES ($1, $2::jsonb, $3) ON CONFLICT (collection) DO NOTHING`,
			string(c), string(emptyDocument), time.Now().UTC(),
		); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `SELECT body FROM documents WHERE collection = $1`, string(c)).Scan(&doc)
	})
	if err != nil {
		return nil, fmt.Errorf("docstore/postgres: load %s: %w", c, err)
	}
	return doc, nil
}

// Save upserts the document.
func (p *Postgres) Save(ctx context.Context, c Collection, doc []byte) error {
	if err := validate(c); err != nil {
		return err
	}
	if err := validateDocument(doc); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO documents (collection, body, updated_at) VALUES ($1, $2::jsonb, $3)
		 ON CONFLICT (collection) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		string(c), string(doc), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("docstore/postgres: save %s: %w", c, err)
	}
	return nil
}

var _ Store = (*Postgres)(nil)
