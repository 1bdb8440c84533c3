// Package main is the entry point for the rental calendar server.
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

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/api"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/calendar"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/config"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "HTTP server address (overrides config)")
	dataDir := flag.String("data", "", "Data directory for SQLite database (overrides config)")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Listen = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(cfg.Listen); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}
	log.Printf("Starting rental calendar server (version: %s)...", version)

	// Database
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory %q: %v", cfg.DataDir, err)
	}
	db, err := storage.NewDB(cfg.DataDir + "/calendar.db")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations complete")

	// WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Repositories
	propertyRepo := storage.NewPropertyRepository(db)
	reservationRepo := storage.NewReservationRepository(db)
	blockRepo := storage.NewBlockRepository(db)
	feedRepo := storage.NewFeedRepository(db)

	// Engine services
	synchronizer := calendar.NewSynchronizer(feedRepo, calendar.SynchronizerOptions{
		Workers:      cfg.SyncWorkers,
		FetchTimeout: time.Duration(cfg.FetchTimeoutSec) * time.Second,
		HorizonDays:  cfg.HorizonDays,
	})
	viewService := calendar.NewViewService(propertyRepo, reservationRepo, blockRepo, feedRepo)
	scheduler := calendar.NewScheduler(synchronizer, viewService, feedRepo, hub,
		cfg.DefaultSyncIntervalMin, cfg.HorizonDays)

	if err := scheduler.Start(context.Background()); err != nil {
		log.Printf("Warning: Failed to start feed scheduler: %v", err)
	}

	// HTTP router
	router := api.NewRouter(api.Services{
		DB:           db,
		Hub:          hub,
		StaticDir:    cfg.StaticDir,
		Synchronizer: synchronizer,
		Scheduler:    scheduler,
		ViewService:  viewService,
		Properties:   propertyRepo,
		Reservations: reservationRepo,
		Blocks:       blockRepo,
		Feeds:        feedRepo,
	})

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Listen)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return http.ErrAbortHandler
	}
	return nil
}
