package database

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bestchoice-b3/b3-daily/pkg/config"
)

func integrationConfig(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func TestNew(t *testing.T) {
	cfg := integrationConfig(t)

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
	if !status.Healthy {
		t.Error("Expected database to be healthy")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	cfg := integrationConfig(t)

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := db.Migrate(ctx); err != nil {
			t.Fatalf("Migrate run %d failed: %v", i+1, err)
		}
	}
}

func TestNewInvalidURL(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{URL: "postgres://user@localhost:notaport/db"}}

	_, err := New(cfg)
	if err == nil {
		t.Fatal("Expected error for invalid database URL")
	}
	if !strings.Contains(err.Error(), "parse database URL") {
		t.Errorf("Expected parse error, got %v", err)
	}
}

func TestSchemaUsesChangeChannel(t *testing.T) {
	found := false
	for _, stmt := range schema {
		if strings.Contains(stmt, "pg_notify('"+ChangeChannel+"'") {
			found = true
		}
	}
	if !found {
		t.Error("Expected the notify trigger to publish on ChangeChannel")
	}
}

func TestSchemaNotifiesOldCPFOnMove(t *testing.T) {
	for _, stmt := range schema {
		if !strings.Contains(stmt, "FUNCTION daily_stocks_notify") {
			continue
		}
		if !strings.Contains(stmt, "OLD.cpf IS DISTINCT FROM NEW.cpf") {
			t.Error("Expected the trigger to detect a CPF change")
		}
		if strings.Count(stmt, "pg_notify(") != 2 {
			t.Errorf("Expected two notifications for a moved document, got %d", strings.Count(stmt, "pg_notify("))
		}
		return
	}
	t.Error("Expected the notify trigger function in the schema")
}
