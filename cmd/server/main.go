/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store
  3. Seed category default policies (file or built-in)
  4. Create API handler with dependencies
  5. Start the background pre-validation scheduler
  6. Configure HTTP router
  7. Start server with graceful shutdown

CONFIGURATION:
  Flags override environment; environment comes from the process or a
  local .env file.

  -addr / ADDR                   Listen address (default: :8080)
  -db / DB_PATH                  SQLite database path (default: attendance.db)
                                 Use ":memory:" for in-memory database
  -seed / POLICY_SEED            Policy seed file, JSON or YAML; when unset
                                 the built-in defaults are written only if
                                 no default policies exist yet
  -concurrency / VALIDATE_CONCURRENCY  Validation worker count
  HR_TOKEN                       Static bearer token for /attendance routes
                                 (open when unset - dev mode)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database and a YAML seed
  ./server -db="./data/attendance.db" -seed="./config/policies.yaml"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - factory/policy.go: Seed file format
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
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/store/sqlite"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := loadConfig()

	// Initialize store
	store, err := sqlite.New(cfg.dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := seedPolicies(ctx, store, cfg.seedPath); err != nil {
		log.Fatalf("Failed to seed policies: %v", err)
	}

	// Initialize handler
	handler := api.NewHandler(store)
	if cfg.concurrency > 0 {
		handler.Engine.Concurrency = cfg.concurrency
	}

	// Background pre-validation of last month
	scheduler := api.NewValidationScheduler(handler)
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(handler, api.RouterConfig{Token: cfg.token})

	// Create server
	server := &http.Server{
		Addr:         cfg.addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Attendance engine listening on %s", cfg.addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

type config struct {
	addr        string
	dbPath      string
	seedPath    string
	token       string
	concurrency int
}

func loadConfig() config {
	envConcurrency := 0
	if v := os.Getenv("VALIDATE_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("Invalid VALIDATE_CONCURRENCY %q: %v", v, err)
		}
		envConcurrency = n
	}

	addr := flag.String("addr", envOr("ADDR", ":8080"), "listen address")
	dbPath := flag.String("db", envOr("DB_PATH", "attendance.db"), "SQLite database path")
	seedPath := flag.String("seed", os.Getenv("POLICY_SEED"), "policy seed file (JSON or YAML)")
	concurrency := flag.Int("concurrency", envConcurrency, "validation worker count (0 = default)")
	flag.Parse()

	return config{
		addr:        *addr,
		dbPath:      *dbPath,
		seedPath:    *seedPath,
		token:       os.Getenv("HR_TOKEN"),
		concurrency: *concurrency,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// seedPolicies makes sure the store has category defaults. A configured
// seed file is always applied (replacing current defaults); without one,
// built-in defaults are written only on a fresh database.
func seedPolicies(ctx context.Context, store *sqlite.Store, seedPath string) error {
	if seedPath != "" {
		seed, err := factory.LoadSeed(seedPath)
		if err != nil {
			return err
		}
		log.Printf("Applying policy seed from %s", seedPath)
		return seed.Apply(ctx, store)
	}

	existing, err := store.ListDefaultPolicies(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	log.Print("No default policies found, writing built-in defaults")
	return factory.DefaultSeed().Apply(ctx, store)
}
