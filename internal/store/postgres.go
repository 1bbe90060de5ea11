package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bestchoice-b3/b3-daily/internal/contracts"
	"github.com/bestchoice-b3/b3-daily/pkg/database"
	"github.com/bestchoice-b3/b3-daily/pkg/logger"
)

// PostgresStore keeps documents as JSONB rows of daily_stocks
// ⭐ SSOT: every read and write of daily_stocks goes through this store
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewPostgresStore creates a store over an open pool
func NewPostgresStore(pool *pgxpool.Pool, log *logger.Logger) *PostgresStore {
	return &PostgresStore{
		pool:   pool,
		logger: log.WithComponent("postgres_store"),
	}
}

// Set creates or replaces the document keyed by stock.Symbol
func (s *PostgresStore) Set(ctx context.Context, stock contracts.Stock) error {
	if stock.Symbol == "" {
		return fmt.Errorf("set document: empty symbol")
	}

	doc, err := json.Marshal(encodeStock(stock))
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", stock.Symbol, err)
	}

	query := `
		INSERT INTO daily_stocks (symbol, cpf, doc, updated_at)
		VALUES ($1, $2, $3::jsonb, NOW())
		ON CONFLICT (symbol) DO UPDATE SET
			cpf = EXCLUDED.cpf,
			doc = EXCLUDED.doc,
			updated_at = NOW()
	`

	if _, err := s.pool.Exec(ctx, query, stock.Symbol, stock.CPF, doc); err != nil {
		return fmt.Errorf("upsert document %s: %w", stock.Symbol, err)
	}

	return nil
}

// Update merges fields into the document keyed by symbol
func (s *PostgresStore) Update(ctx context.Context, symbol string, fields map[string]any) error {
	values, deleted, err := splitPatch(fields)
	if err != nil {
		return fmt.Errorf("update document %s: %w", symbol, err)
	}

	patch, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal patch %s: %w", symbol, err)
	}

	query := `
		UPDATE daily_stocks SET
			doc = (doc || $2::jsonb) - $3::text[],
			cpf = COALESCE($2::jsonb ->> 'cpf', cpf),
			updated_at = NOW()
		WHERE symbol = $1
	`

	tag, err := s.pool.Exec(ctx, query, symbol, patch, deleted)
	if err != nil {
		return fmt.Errorf("update document %s: %w", symbol, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update document %s: %w", symbol, ErrDocumentNotFound)
	}

	return nil
}

// List returns the documents belonging to cpf ordered by symbol
func (s *PostgresStore) List(ctx context.Context, cpf string) ([]contracts.Document, error) {
	query := `
		SELECT symbol, doc
		FROM daily_stocks
		WHERE cpf = $1
		ORDER BY symbol
	`

	rows, err := s.pool.Query(ctx, query, cpf)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []contracts.Document{}
	for rows.Next() {
		var (
			symbol string
			raw    []byte
		)
		if err := rows.Scan(&symbol, &raw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}

		data := make(map[string]any)
		if err := json.Unmarshal(raw, &data); err != nil {
			s.logger.WithError(err).WithField("symbol", symbol).Warn("Skipping malformed document")
			continue
		}
		docs = append(docs, contracts.Document{ID: symbol, Data: data})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

// Subscribe listens on the change channel with a dedicated connection and
// re-reads the CPF partition whenever one of its documents changes
func (s *PostgresStore) Subscribe(ctx context.Context, cpf string) (<-chan []contracts.Document, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}

	listen := "LISTEN " + pgx.Identifier{database.ChangeChannel}.Sanitize()
	if _, err := conn.Exec(ctx, listen); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", database.ChangeChannel, err)
	}

	initial, err := s.List(ctx, cpf)
	if err != nil {
		_, _ = conn.Exec(context.Background(), "UNLISTEN *")
		conn.Release()
		return nil, err
	}

	out := make(chan []contracts.Document, 1)
	emit(out, initial)

	go func() {
		defer close(out)
		defer func() {
			_, _ = conn.Exec(context.Background(), "UNLISTEN *")
			conn.Release()
		}()

		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.WithError(err).Error("Change subscription stopped")
				}
				return
			}
			if n.Payload != cpf {
				continue
			}

			docs, err := s.List(ctx, cpf)
			if err != nil {
				s.logger.WithError(err).Warn("Failed to reload documents after change")
				continue
			}
			emit(out, docs)
		}
	}()

	return out, nil
}
