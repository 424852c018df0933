package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asakaida/monban/internal/entities"
	"github.com/asakaida/monban/internal/infrastructure/config"
	"github.com/asakaida/monban/internal/infrastructure/database"
	"github.com/asakaida/monban/internal/infrastructure/metrics"
	"github.com/asakaida/monban/internal/repositories/postgres"
	"github.com/asakaida/monban/internal/services/authorization"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultEnv = "dev"

func main() {
	// Get environment from ENV variable or use default
	env := os.Getenv("ENV")
	if env == "" {
		env = defaultEnv
	}

	// Initialize configuration
	if err := config.InitConfig(env); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	pg, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()

	log.Printf("Connected to database: %s@%s:%d/%s",
		cfg.Database.User,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Database)

	// Initialize repositories
	grantRepo := postgres.NewPostgresGrantRepository(pg.DB)
	membershipRepo := postgres.NewPostgresMembershipRepository(pg.DB)
	userRepo := postgres.NewPostgresUserRepository(pg.DB)

	// Initialize metrics
	collector := metrics.NewCollector()
	collector.SetExporter(metrics.NewPrometheusExporter())

	// Initialize authorization engine
	engine := authorization.NewEngine(
		grantRepo,
		membershipRepo,
		userRepo,
		entities.SuperAdminPermissions(),
	).WithCollector(collector)

	// The engine has no transport of its own; embedding services construct
	// resolvers per request. This process exposes health and metrics.
	log.Printf("Authorization engine ready: %d entity kinds registered", len(engine.Scopes().Kinds()))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := pg.HealthCheck(); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler: mux,
	}

	log.Printf("Metrics server listening on %s", server.Addr)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("metrics server error: %w", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrors:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		log.Println("Initiating graceful shutdown...")

		// Create shutdown context with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown timeout exceeded, forcing stop: %v", err)
			server.Close()
		} else {
			log.Println("Server stopped gracefully")
		}

		// Close database connection
		if err := pg.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		}

		log.Println("Shutdown complete")
	}
}
