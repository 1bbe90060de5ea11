package redis

import (
	"context"
	"testing"
	"time"

	"github.com/bestchoice-b3/b3-daily/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")
	cfg := QuoteRateLimit("tradingview", 30)

	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Error("Expected request to be allowed when Redis disabled")
	}
	if remaining != cfg.Limit {
		t.Errorf("Expected remaining = %d, got %d", cfg.Limit, remaining)
	}

	if err := limiter.Bind(cfg).Wait(context.Background()); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestQuoteRateLimit(t *testing.T) {
	cfg := QuoteRateLimit("statusinvest", 12)

	if cfg.Key != "quote:statusinvest" {
		t.Errorf("Key = %q", cfg.Key)
	}
	if cfg.Limit != 12 || cfg.Window != time.Minute {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestKV_Disabled(t *testing.T) {
	kv := NewKV(disabledClient(t), "test")
	ctx := context.Background()

	if err := kv.Set(ctx, "dailyb3-cpf", "11144477735"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, found, err := kv.Get(ctx, "dailyb3-cpf")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found || value != "" {
		t.Errorf("Expected empty store when disabled, got %q (found=%v)", value, found)
	}

	if err := kv.Delete(ctx, "dailyb3-cpf"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestKV_Key(t *testing.T) {
	kv := NewKV(disabledClient(t), "dailyb3")
	if got := kv.key("dailyb3-cpf"); got != "dailyb3:kv:dailyb3-cpf" {
		t.Errorf("key() = %q", got)
	}
}
