package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bestchoice-b3/b3-daily/internal/contracts"
	"github.com/bestchoice-b3/b3-daily/internal/cpf"
	"github.com/bestchoice-b3/b3-daily/internal/quote"
	"github.com/bestchoice-b3/b3-daily/internal/session"
	"github.com/bestchoice-b3/b3-daily/internal/store"
	"github.com/bestchoice-b3/b3-daily/internal/watchlist"
	"github.com/bestchoice-b3/b3-daily/pkg/config"
	"github.com/bestchoice-b3/b3-daily/pkg/database"
	"github.com/bestchoice-b3/b3-daily/pkg/logger"
	"github.com/bestchoice-b3/b3-daily/pkg/redis"
)

// app holds the dependencies shared by the commands
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	store    contracts.StockStore
	quotes   contracts.QuoteSource
	sessions session.Store
}

// newApp loads config and connects every backend the config enables
func newApp() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log}

	// 3. Connect to database
	if cfg.StoreBackend == "postgres" {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		log.Debug("Connected to database")
	}

	// 4. Connect to redis (no-op client when disabled)
	rdb, err := redis.New(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = rdb

	// 5. Store, quotes, session
	st, err := store.New(cfg, a.db, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create store: %w", err)
	}
	a.store = st
	a.quotes = quote.NewSource(cfg, rdb, log)

	sessions, err := session.New(cfg, rdb)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create session store: %w", err)
	}
	a.sessions = sessions

	return a, nil
}

// Close releases the backends
func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// options returns the watchlist options from config
func (a *app) options() watchlist.Options {
	return watchlist.Options{
		Location: a.cfg.Location(),
		Workers:  a.cfg.Refresh.Workers,

		MaxSessions: a.cfg.Session.MaxOpen,
	}
}

// resolveCPF returns the --cpf flag, or the saved session
func (a *app) resolveCPF(ctx context.Context) (string, error) {
	return resolveCPF(ctx, cpfFlag, a.sessions)
}

// resolveCPF prefers flag over the saved CPF. A valid flag becomes the
// saved CPF for later runs; an invalid one is used once and not saved.
func resolveCPF(ctx context.Context, flag string, sessions session.Store) (string, error) {
	if v := strings.TrimSpace(flag); v != "" {
		if cpf.Validate(v) {
			if err := sessions.Set(ctx, v); err != nil {
				return "", fmt.Errorf("save session: %w", err)
			}
		}
		return v, nil
	}

	saved, ok, err := sessions.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("no CPF: pass --cpf or run 'dailyb3 session set <cpf>'")
	}
	return saved, nil
}

// openWatchlist starts a controller for the resolved CPF. The caller must Stop it.
func (a *app) openWatchlist(ctx context.Context) (*watchlist.Controller, error) {
	holder, err := a.resolveCPF(ctx)
	if err != nil {
		return nil, err
	}

	c := watchlist.NewController(watchlist.Session{CPF: holder}, a.store, a.quotes, a.log, a.options())
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("open watchlist: %w", err)
	}
	return c, nil
}

// withApp runs fn with a connected app and closes it afterwards
func withApp(fn func(ctx context.Context, a *app) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(context.Background(), a)
}

// withWatchlist runs fn with the session watchlist loaded
func withWatchlist(fn func(ctx context.Context, a *app, c *watchlist.Controller) error) error {
	return withApp(func(ctx context.Context, a *app) error {
		c, err := a.openWatchlist(ctx)
		if err != nil {
			return err
		}
		defer c.Stop()

		return fn(ctx, a, c)
	})
}
