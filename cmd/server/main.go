/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the ArcLoom activity engine server: config,
  dependency wiring, and graceful shutdown.

CONFIGURATION:
  Flags, with defaults overridable via environment (a .env file is
  loaded when present):
    -port    HTTP server port        (env ARCLOOM_PORT, default 8080)
    -db      SQLite database path    (env ARCLOOM_DB, default arcloom.db;
                                      use ":memory:" for in-memory)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  active requests, close the database, exit.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/arcloom/activity-engine/activity"
	"github.com/arcloom/activity-engine/api"
	"github.com/arcloom/activity-engine/store/sqlite"
)

func main() {
	// .env is optional; flags still win over it.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("ARCLOOM_PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("ARCLOOM_DB", "arcloom.db"), "SQLite database path")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	service := activity.NewService(store, logger)
	router := api.NewRouter(api.NewHandler(service))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr, "db", *dbPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
