// Command runs inspects collection runs stored by captionmap --store.
//
// Usage:
//
//	runs [--config path] list [--limit N]
//	runs [--config path] show [--relative-root dir] <run-id>
//	runs [--config path] fetch <run-id>
//
// "list" prints the most recent runs, newest first. "show" prints the stored
// mapping of one run as the JSON artifact. "fetch" prints the artifact that
// captionmap --upload stored in object storage for the run; it needs no
// database.
//
// Exit codes: 0 = success, 1 = runtime error, 2 = usage or config error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/heartmarshall/captionmap/internal/adapter/postgres"
	"github.com/heartmarshall/captionmap/internal/adapter/postgres/captionrun"
	"github.com/heartmarshall/captionmap/internal/adapter/storage/s3"
	"github.com/heartmarshall/captionmap/internal/app"
	"github.com/heartmarshall/captionmap/internal/app/export"
	"github.com/heartmarshall/captionmap/internal/config"
	"github.com/heartmarshall/captionmap/internal/domain"
)

const usage = "usage: runs [--config path] list [--limit N] | show [--relative-root dir] <run-id> | fetch <run-id>"

func main() {
	os.Exit(run())
}

func run() int {
	configFlag := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 2
	}
	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flag.Arg(0) == "fetch" {
		return fetch(ctx, logger, cfg, flag.Args()[1:])
	}

	if !cfg.Database.Enabled() {
		logger.Error("database.dsn (DATABASE_DSN) is required")
		return 2
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		return 1
	}
	defer pool.Close()

	repo := captionrun.New(pool, postgres.NewTxManager(pool), cfg.Database.InsertChunkSize)

	switch cmd, args := flag.Arg(0), flag.Args()[1:]; cmd {
	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		limit := fs.Int("limit", 20, "maximum number of runs to print")
		if err := fs.Parse(args); err != nil {
			return 2
		}

		runs, err := repo.ListRuns(ctx, *limit)
		if err != nil {
			logger.Error("list runs", slog.String("error", err.Error()))
			return 1
		}
		if err := printRuns(os.Stdout, runs); err != nil {
			logger.Error("print runs", slog.String("error", err.Error()))
			return 1
		}

	case "show":
		fs := flag.NewFlagSet("show", flag.ContinueOnError)
		relRoot := fs.String("relative-root", cfg.Export.RelativeRoot, "make image paths relative to this directory")
		if err := fs.Parse(args); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, usage)
			return 2
		}
		id, ok := parseRunID(fs.Arg(0))
		if !ok {
			return 2
		}

		m, err := repo.GetRunMapping(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Error("run not found", slog.String("run_id", id.String()))
				return 1
			}
			logger.Error("load run", slog.String("error", err.Error()))
			return 1
		}

		data, err := export.Encode(export.Items(m, *relRoot))
		if err != nil {
			logger.Error("encode artifact", slog.String("error", err.Error()))
			return 1
		}
		if _, err := os.Stdout.Write(data); err != nil {
			logger.Error("write output", slog.String("error", err.Error()))
			return 1
		}

	default:
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}

	return 0
}

// fetch downloads the uploaded artifact of one run and writes it to stdout.
func fetch(ctx context.Context, logger *slog.Logger, cfg *config.Config, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
	id, ok := parseRunID(args[0])
	if !ok {
		return 2
	}
	if !cfg.Storage.Enabled() {
		logger.Error("storage.endpoint (STORAGE_ENDPOINT) is required")
		return 2
	}

	store, err := s3.New(cfg.Storage)
	if err != nil {
		logger.Error("init object storage", slog.String("error", err.Error()))
		return 2
	}

	key := export.ObjectKey(cfg.Export.ObjectPrefix, id)
	data, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Error("artifact not found", slog.String("bucket", store.Bucket()), slog.String("key", key))
			return 1
		}
		logger.Error("fetch artifact", slog.String("key", key), slog.String("error", err.Error()))
		return 1
	}
	if _, err := os.Stdout.Write(data); err != nil {
		logger.Error("write output", slog.String("error", err.Error()))
		return 1
	}
	return 0
}

func parseRunID(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid run id %q: %v\n", s, err)
		return uuid.Nil, false
	}
	return id, true
}

func printRuns(w io.Writer, runs []domain.CollectionRun) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFINISHED\tIMAGES\tCAPTIONS\tDURATION\tBASE DIR")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, r.FinishedAt.Format(time.RFC3339), r.ImageCount, r.CaptionCount,
			r.Duration().Round(time.Millisecond), r.BaseDir)
	}
	return tw.Flush()
}
