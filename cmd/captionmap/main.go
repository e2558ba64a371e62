// Command captionmap consolidates image caption annotations found under a
// dataset directory into one image path -> captions mapping.
//
// Flags:
//
//	--config         path to YAML config (default: CONFIG_PATH or ./captionmap.yaml)
//	--base           base test data directory (overrides collector.base_dir)
//	--no-validate    do not require image files to exist on disk
//	--write-json     write the mapping artifact to this path
//	--relative-root  express artifact image paths relative to this directory
//	--preview        number of mappings to print (default: export.preview_count)
//	--store          persist the run to PostgreSQL (requires database.dsn)
//	--upload         upload the artifact to object storage (requires storage.endpoint)
//	--metrics-file   write Prometheus metrics to this textfile
//	--version        print the version and exit
//
// Exit codes: 0 = success, 1 = runtime error, 2 = usage or config error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/heartmarshall/captionmap/internal/adapter/postgres"
	"github.com/heartmarshall/captionmap/internal/adapter/postgres/captionrun"
	"github.com/heartmarshall/captionmap/internal/adapter/storage/s3"
	"github.com/heartmarshall/captionmap/internal/app"
	"github.com/heartmarshall/captionmap/internal/app/export"
	"github.com/heartmarshall/captionmap/internal/config"
)

// Compile-time interface assertions.
var (
	_ app.RunStore         = (*captionrun.Repo)(nil)
	_ export.ArtifactStore = (*s3.Store)(nil)
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	configFlag := flag.String("config", "", "path to YAML config file")
	baseFlag := flag.String("base", "", "base test data directory (default: collector.base_dir)")
	noValidateFlag := flag.Bool("no-validate", false, "do not validate that image files exist on disk")
	writeJSONFlag := flag.String("write-json", "", "write the consolidated mappings as JSON to this path")
	relRootFlag := flag.String("relative-root", "", "make artifact image paths relative to this directory")
	previewFlag := flag.Int("preview", -1, "number of mappings to print (default: export.preview_count)")
	storeFlag := flag.Bool("store", false, "persist the run to PostgreSQL")
	uploadFlag := flag.Bool("upload", false, "upload the artifact to object storage")
	metricsFlag := flag.String("metrics-file", "", "write Prometheus metrics to this textfile")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println(app.BuildVersion("captionmap"))
		return exitOK
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return exitUsage
	}

	// CLI flags override config.
	if *baseFlag != "" {
		cfg.Collector.BaseDir = *baseFlag
	}
	if *noValidateFlag {
		cfg.Collector.ValidateImages = false
	}
	if *writeJSONFlag != "" {
		cfg.Export.OutputPath = *writeJSONFlag
	}
	if *relRootFlag != "" {
		cfg.Export.RelativeRoot = *relRootFlag
	}
	if *previewFlag >= 0 {
		cfg.Export.PreviewCount = *previewFlag
	}
	if *metricsFlag != "" {
		cfg.Metrics.TextfilePath = *metricsFlag
	}

	logger := app.NewLogger(cfg.Log)

	if *storeFlag && !cfg.Database.Enabled() {
		logger.Error("--store requires database.dsn (DATABASE_DSN)")
		return exitUsage
	}
	if *uploadFlag && !cfg.Storage.Enabled() {
		logger.Error("--upload requires storage.endpoint (STORAGE_ENDPOINT)")
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var deps app.Deps

	if *storeFlag {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Error("connect to database", slog.String("error", err.Error()))
			return exitRuntime
		}
		defer pool.Close()

		deps.Runs = captionrun.New(pool, postgres.NewTxManager(pool), cfg.Database.InsertChunkSize)
	}

	if *uploadFlag {
		store, err := s3.New(cfg.Storage)
		if err != nil {
			logger.Error("init object storage", slog.String("error", err.Error()))
			return exitUsage
		}
		deps.Artifacts = store
		logger.Info("artifact upload enabled", slog.String("bucket", store.Bucket()))
	}

	logger.Info("starting captionmap", slog.String("version", app.BuildVersion("captionmap")))

	pipeline, err := app.NewPipeline(logger, *cfg, deps)
	if err != nil {
		logger.Error("init pipeline", slog.String("error", err.Error()))
		return exitRuntime
	}

	res, err := pipeline.Run(ctx)
	if err != nil {
		logger.Error("collection failed", slog.String("error", err.Error()))
		return exitRuntime
	}

	if err := app.PrintPreview(os.Stdout, res.Mapping, cfg.Export.PreviewCount); err != nil {
		logger.Error("print preview", slog.String("error", err.Error()))
		return exitRuntime
	}

	return exitOK
}
