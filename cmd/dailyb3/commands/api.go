package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bestchoice-b3/b3-daily/internal/api"
	"github.com/bestchoice-b3/b3-daily/internal/api/handlers"
	"github.com/bestchoice-b3/b3-daily/internal/scheduler"
	"github.com/bestchoice-b3/b3-daily/internal/scheduler/jobs"
	"github.com/bestchoice-b3/b3-daily/internal/watchlist"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

This command:
- serves the watchlist endpoints and the websocket stream
- runs the scheduled bulk refresh when REFRESH_ENABLED=true

Endpoints:
  GET    /health
  GET    /api/cpf/{cpf}/validate
  GET    /api/watchlists/{cpf}/stocks
  POST   /api/watchlists/{cpf}/stocks
  PUT    /api/watchlists/{cpf}/stocks/{symbol}
  POST   /api/watchlists/{cpf}/stocks/{symbol}/checklist/{item}
  POST   /api/watchlists/{cpf}/stocks/{symbol}/refresh
  POST   /api/watchlists/{cpf}/stocks/{symbol}/observer
  POST   /api/watchlists/{cpf}/stocks/{symbol}/annotations
  DELETE /api/watchlists/{cpf}/stocks/{symbol}/annotations/{index}
  POST   /api/watchlists/{cpf}/refresh
  PUT    /api/watchlists/{cpf}/filters
  DELETE /api/watchlists/{cpf}/filters
  POST   /api/watchlists/{cpf}/filters/observer
  POST   /api/watchlists/{cpf}/sort?field=score
  GET    /api/watchlists/{cpf}/stream

Example:
  go run ./cmd/dailyb3 api
  go run ./cmd/dailyb3 api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default is PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	log := a.log

	log.WithFields(map[string]interface{}{
		"port":   a.cfg.Port,
		"env":    a.cfg.Env,
		"store":  a.cfg.StoreBackend,
		"quotes": a.quotes.Name(),
	}).Info("Initializing API server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Watchlist sessions
	manager := watchlist.NewManager(ctx, a.store, a.quotes, log, a.options())
	defer manager.CloseAll()

	// 2. Scheduled bulk refresh
	if a.cfg.Refresh.Enabled {
		sched := scheduler.New(ctx, a.cfg.Location(), log)
		job := jobs.NewRefreshPricesJob(manager, a.cfg, log)
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name(), err)
		}
		if invalid := job.InvalidCPFs(); len(invalid) > 0 {
			log.WithField("count", len(invalid)).Warn("REFRESH_CPFS contains invalid CPFs")
		}
		sched.Start()
		defer sched.Stop()
	}

	// 3. Handlers, router, server
	router := api.NewRouter(
		handlers.NewWatchlistHandler(manager, log),
		handlers.NewStreamHandler(manager, log),
		log,
	)
	server := api.New(a.cfg, log, router)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}
