/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the MRP engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env and parse command-line flags
  2. Load the planning profile
  3. Initialize the store (SQLite or in-memory)
  4. Optionally seed a demo scenario
  5. Create API handler with dependencies
  6. Start the snapshot scheduler
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -addr                HTTP listen address (default: :8080)
  -db                  SQLite database path (default: mrp.db)
                       Use ":memory:" for in-memory SQLite,
                       "none" for the built-in map store
  -profile             Planning profile JSON path (empty for defaults)
  -demo                Demo scenario to load at startup
                       (assembly-line, low-stock, receiving-day)
  -snapshot-interval   Outlook snapshot sweep interval (0 disables)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the snapshot scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/plant.db"

  # Run in-memory with demo data
  ./server -db=":memory:" -demo=assembly-line

  # Run with a site profile on a different port
  ./server -addr=:3000 -profile=./profiles/plant-south.json

ENVIRONMENT:
  ADDR               Overrides the default listen address
  DATABASE_PATH      Overrides the default database path
  PLANNING_PROFILE   Overrides the default profile path
  ENVIRONMENT        "production" switches logging to info level
  Flags win over environment variables.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/forge/mrp-engine/api"
	"github.com/forge/mrp-engine/factory"
	"github.com/forge/mrp-engine/planning"
	"github.com/forge/mrp-engine/planning/store"
	"github.com/forge/mrp-engine/store/sqlite"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Flags
	addr := flag.String("addr", envOr("ADDR", ":8080"), "HTTP listen address")
	dbPath := flag.String("db", envOr("DATABASE_PATH", "mrp.db"), `SQLite database path (":memory:" for in-memory, "none" for the map store)`)
	profilePath := flag.String("profile", envOr("PLANNING_PROFILE", ""), "planning profile JSON path (empty for defaults)")
	demo := flag.String("demo", "", "demo scenario to load at startup")
	snapshotEvery := flag.Duration("snapshot-interval", time.Hour, "outlook snapshot sweep interval (0 disables)")
	flag.Parse()

	// Logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if os.Getenv("ENVIRONMENT") == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Planning profile
	profile, err := factory.LoadProfile(*profilePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load planning profile")
	}
	if *profilePath != "" {
		logger.WithField("profile", profile.Name).Info("Planning profile loaded")
	}

	// Initialize store
	var stores planning.TxStores
	if *dbPath == "none" {
		stores = store.NewTxMemory()
		logger.Info("Using in-memory map store")
	} else {
		db, err := sqlite.New(*dbPath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize database")
		}
		defer db.Close()
		stores = db
	}

	// Seed demo data
	if *demo != "" {
		if err := api.LoadScenario(context.Background(), stores, *demo); err != nil {
			logger.WithError(err).Fatal("Failed to load demo scenario")
		}
		logger.WithField("scenario", *demo).Info("Demo scenario loaded")
	}

	// Initialize handler and router
	handler := api.NewHandler(stores, profile)
	router := api.NewRouter(handler)

	// Background snapshot sweeps
	if *snapshotEvery > 0 {
		scheduler := api.NewSnapshotScheduler(handler.Outlook, logger)
		scheduler.Interval = *snapshotEvery
		scheduler.Start(context.Background())
		defer scheduler.Stop()
	}

	// Create server
	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.WithField("addr", *addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
