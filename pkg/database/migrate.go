package database

import (
	"context"
	"fmt"
)

// ChangeChannel is the NOTIFY channel fired on every write to daily_stocks.
// The payload is the CPF of the written document. A document that moves to
// another CPF notifies both the old and the new one.
const ChangeChannel = "daily_stocks_changed"

// schema is idempotent; Migrate can run on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS daily_stocks (
		symbol     TEXT PRIMARY KEY,
		cpf        TEXT NOT NULL DEFAULT '',
		doc        JSONB NOT NULL DEFAULT '{}'::jsonb,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS daily_stocks_cpf_idx ON daily_stocks (cpf)`,
	`CREATE OR REPLACE FUNCTION daily_stocks_notify() RETURNS trigger AS $$
	BEGIN
		IF TG_OP = 'UPDATE' AND OLD.cpf IS DISTINCT FROM NEW.cpf THEN
			PERFORM pg_notify('` + ChangeChannel + `', COALESCE(OLD.cpf, ''));
		END IF;
		PERFORM pg_notify('` + ChangeChannel + `', COALESCE(NEW.cpf, OLD.cpf, ''));
		RETURN NULL;
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS daily_stocks_notify_trg ON daily_stocks`,
	`CREATE TRIGGER daily_stocks_notify_trg
		AFTER INSERT OR UPDATE OR DELETE ON daily_stocks
		FOR EACH ROW EXECUTE FUNCTION daily_stocks_notify()`,
}

// Migrate creates the document table, its CPF index and the change trigger
func (db *DB) Migrate(ctx context.Context) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	return nil
}
