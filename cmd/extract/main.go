// Command extract parses a single annotation file and prints the mapping
// artifact as JSON to stdout. Supported formats: .json, .txt, .csv, .tsv,
// .xlsx.
//
// Flags:
//
//	--file           annotation file to parse (required)
//	--images         images directory (default: the file's directory)
//	--no-validate    do not require image files to exist on disk
//	--relative-root  express image paths relative to this directory
//
// Logging is configured from LOG_LEVEL and LOG_FORMAT (a .env file in the
// working directory is honored).
//
// Exit codes: 0 = success, 1 = runtime error, 2 = usage or config error.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/heartmarshall/captionmap/internal/app"
	"github.com/heartmarshall/captionmap/internal/app/collector"
	"github.com/heartmarshall/captionmap/internal/app/collector/imagepath"
	"github.com/heartmarshall/captionmap/internal/app/export"
	"github.com/heartmarshall/captionmap/internal/config"
	"github.com/heartmarshall/captionmap/internal/domain"
)

func main() {
	os.Exit(run())
}

func run() int {
	fileFlag := flag.String("file", "", "annotation file to parse")
	imagesFlag := flag.String("images", "", "images directory (default: the file's directory)")
	noValidateFlag := flag.Bool("no-validate", false, "do not validate that image files exist on disk")
	relRootFlag := flag.String("relative-root", "", "make image paths relative to this directory")
	flag.Parse()

	if *fileFlag == "" {
		fmt.Fprintln(os.Stderr, "--file is required")
		flag.Usage()
		return 2
	}

	_ = godotenv.Load()

	logCfg, err := loadLogConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "read log config: %v\n", err)
		return 2
	}
	logger := app.NewLogger(logCfg)

	resolver, err := imagepath.New(!*noValidateFlag, imagepath.DefaultCacheSize)
	if err != nil {
		logger.Error("create path resolver", slog.String("error", err.Error()))
		return 1
	}

	parser, err := collector.ParserFor(*fileFlag, resolver)
	if err != nil {
		logger.Error("select parser", slog.String("file", *fileFlag), slog.String("error", err.Error()))
		return 2
	}

	imagesDir := *imagesFlag
	if imagesDir == "" {
		imagesDir = filepath.Dir(*fileFlag)
	}

	mapping, stats, err := parser.Extract(*fileFlag, imagesDir)
	if err != nil {
		if !errors.Is(err, domain.ErrMalformedInput) || len(mapping) == 0 {
			logger.Error("extract captions", slog.String("file", *fileFlag), slog.String("error", err.Error()))
			return 1
		}
		logger.Warn("partial extraction", slog.String("file", *fileFlag), slog.String("error", err.Error()))
	}

	data, err := export.Encode(export.Items(mapping, *relRootFlag))
	if err != nil {
		logger.Error("encode artifact", slog.String("error", err.Error()))
		return 1
	}
	if _, err := os.Stdout.Write(data); err != nil {
		logger.Error("write output", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("extracted captions",
		slog.String("file", *fileFlag),
		slog.Int("images", len(mapping)),
		slog.Int("records", stats.Records),
		slog.Int("skipped", stats.Skipped),
		slog.Int("excluded", stats.Excluded),
	)
	return 0
}

// loadLogConfig reads LOG_LEVEL and LOG_FORMAT with the same defaults as
// config.Load.
func loadLogConfig() (config.LogConfig, error) {
	var cfg config.LogConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return config.LogConfig{}, err
	}
	return cfg, nil
}
