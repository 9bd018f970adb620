package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chepyr/task-api/internal/config"
	"github.com/chepyr/task-api/internal/db"
	"github.com/chepyr/task-api/internal/handlers"
	"github.com/chepyr/task-api/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	dbConn := initDB(cfg)
	defer dbConn.Close()

	handler := initHandlers(cfg, dbConn)
	defer handler.RateLimiter.Stop()

	server := initServer(cfg, handler)
	startServer(server, handler.Hub)
}

func initDB(cfg *config.Config) *sql.DB {
	driver, dsn, err := cfg.Database()
	if err != nil {
		log.Fatalf("Invalid database configuration: %v", err)
	}

	dbConn, err := db.Connect(driver, dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.EnsureSchema(ctx, dbConn, driver); err != nil {
		log.Fatalf("Failed to prepare schema: %v", err)
	}
	log.Printf("[db] connected using %s driver", driver)
	return dbConn
}

func initHandlers(cfg *config.Config, dbConn *sql.DB) *handlers.Handler {
	m := metrics.New()
	return &handlers.Handler{
		Store:          db.NewStore(dbConn),
		Hub:            handlers.NewHub(m),
		RateLimiter:    handlers.NewRateLimiter(5, time.Second),
		Metrics:        m,
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigins:    cfg.CORSOrigins,
		Debug:          cfg.Debug,
	}
}

func initServer(cfg *config.Config, handler *handlers.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func startServer(server *http.Server, hub *handlers.Hub) {
	log.Printf("Starting tasks server on %s", server.Addr)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hub.CloseAll()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
