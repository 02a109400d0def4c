package main

import (
	"log"
	"log/slog"
	"os"
	"time"

	"authserver/internal/config"
	"authserver/internal/logger"
	"authserver/internal/mysql"
	"authserver/internal/routing"
	"authserver/pkg/credentials"
	"authserver/pkg/middleware"
	"authserver/pkg/session"

	"github.com/gorilla/mux"
)

func main() {
	config.Load() // load env var from .env

	var creds credentials.Source
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		db := mysql.LoadDB()
		defer db.Close()
		creds = credentials.NewMySQLSource(db)
	} else {
		creds = credentials.NewFileSource(os.Getenv("USERS_FILE"))
	}
	if err := creds.Reload(); err != nil {
		log.Fatal("Cannot load credential table:", err)
	}

	logger := logger.Load()

	registry := session.NewRegistry()
	startSweeper(registry, logger)

	r := mux.NewRouter()
	r.Use(middleware.Panic(logger))

	routing.InitRoutes(r, creds, registry, logger)
	routing.StartServer(r, config.Addr())
}

// startSweeper drops expired sessions on an interval. Purely an
// operational add-on: lazy pruning alone keeps the registry correct.
func startSweeper(registry *session.Registry, logger *slog.Logger) {
	raw := os.Getenv("SWEEP_INTERVAL")
	if raw == "" {
		return
	}
	interval, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatal("Bad SWEEP_INTERVAL:", err)
	}

	go func() {
		for range time.Tick(interval) {
			if n := registry.Sweep(); n > 0 {
				logger.Info("swept expired sessions", "count", n)
			}
		}
	}()
}
