// Command migrate applies or reports the goose migrations of the caption
// run store.
//
// Usage:
//
//	migrate [--config path] up|status
//
// Exit codes: 0 = success, 1 = runtime error, 2 = usage or config error.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/heartmarshall/captionmap/internal/app"
	"github.com/heartmarshall/captionmap/internal/config"
	"github.com/heartmarshall/captionmap/migrations"
)

func main() {
	os.Exit(run())
}

func run() int {
	configFlag := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	command := flag.Arg(0)
	if command != "up" && command != "status" {
		fmt.Fprintln(os.Stderr, "usage: migrate [--config path] up|status")
		return 2
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 2
	}
	logger := app.NewLogger(cfg.Log)

	if !cfg.Database.Enabled() {
		logger.Error("database.dsn (DATABASE_DSN) is required")
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// goose requires *sql.DB.
	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("open database", slog.String("error", err.Error()))
		return 1
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		logger.Error("goose new provider", slog.String("error", err.Error()))
		return 1
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			logger.Error("goose up", slog.String("error", err.Error()))
			return 1
		}
		for _, r := range results {
			logger.Info("applied migration",
				slog.Int64("version", r.Source.Version),
				slog.Duration("duration", r.Duration),
			)
		}
		logger.Info("migrations up to date", slog.Int("applied", len(results)))

	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			logger.Error("goose status", slog.String("error", err.Error()))
			return 1
		}
		for _, s := range statuses {
			fmt.Printf("%-6d %-8s %s\n", s.Source.Version, s.State, s.Source.Path)
		}
	}

	return 0
}
