// Package collector walks a dataset tree and consolidates every caption
// source it recognises into a single domain.CaptionMapping.
package collector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/heartmarshall/captionmap/internal/app/collector/dataset"
	"github.com/heartmarshall/captionmap/internal/app/collector/delimited"
	"github.com/heartmarshall/captionmap/internal/app/collector/imagepath"
	"github.com/heartmarshall/captionmap/internal/app/collector/jsoncap"
	"github.com/heartmarshall/captionmap/internal/domain"
)

// ErrNotDirectory is returned when the base path exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// handlerFunc extracts the captions of one classified file.
type handlerFunc func(path string) (domain.CaptionMapping, FileStats, error)

// Option configures a Collector.
type Option func(*Collector)

// WithDetector replaces the default file classifier.
func WithDetector(d *Detector) Option {
	return func(c *Collector) {
		c.detector = d
	}
}

// WithObserver sets the progress observer. Defaults to NopObserver.
func WithObserver(o Observer) Option {
	return func(c *Collector) {
		c.observer = o
	}
}

// Collector consolidates caption files found under a base directory.
type Collector struct {
	resolver *imagepath.Resolver
	detector *Detector
	observer Observer
	handlers map[domain.Convention]handlerFunc
}

// New creates a Collector that resolves image paths with resolver.
func New(resolver *imagepath.Resolver, opts ...Option) *Collector {
	c := &Collector{
		resolver: resolver,
		detector: DefaultDetector(),
		observer: NopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}

	datasets := dataset.New(resolver)
	jsonParser := jsonExtractor{jsoncap.New(resolver)}
	textParser := textExtractor{delimited.New(resolver)}

	c.handlers = map[domain.Convention]handlerFunc{
		domain.ConventionBNatureTestList: func(path string) (domain.CaptionMapping, FileStats, error) {
			res, err := datasets.BNatureTestList(path)
			return res.Captions, delimitedStats(res), err
		},
		domain.ConventionBNLITTestAnnotation: func(path string) (domain.CaptionMapping, FileStats, error) {
			res, err := datasets.BNLITTestAnnotation(path)
			return res.Captions, delimitedStats(res), err
		},
		// Generic files name images relative to their own directory.
		domain.ConventionJSON: func(path string) (domain.CaptionMapping, FileStats, error) {
			return jsonParser.Extract(path, filepath.Dir(path))
		},
		domain.ConventionGenericText: func(path string) (domain.CaptionMapping, FileStats, error) {
			return textParser.Extract(path, filepath.Dir(path))
		},
	}
	return c
}

// Collect walks baseDir in lexical order and merges the captions of every
// recognised file. When two files yield the same image path the later file
// wins. A missing or unreadable base directory is fatal; per-file problems
// and unreadable subdirectories are reported to the observer and skipped.
// Image existence is re-checked on every call.
func (c *Collector) Collect(ctx context.Context, baseDir string) (domain.CaptionMapping, error) {
	c.resolver.Reset()

	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("stat base dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base dir %s: %w", baseDir, ErrNotDirectory)
	}

	out := domain.NewCaptionMapping()

	walkErr := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == baseDir {
				return err
			}
			c.observer.FileFailed(path, domain.ConventionIrrelevant, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		c.collectFile(path, out)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", baseDir, walkErr)
	}

	c.observer.Completed(len(out))
	return out, nil
}

func (c *Collector) collectFile(path string, out domain.CaptionMapping) {
	conv := c.detector.Detect(path)
	handle, ok := c.handlers[conv]
	if !ok {
		return
	}

	captions, stats, err := handle(path)
	if err != nil {
		c.observer.FileFailed(path, conv, err)
	}
	if len(captions) > 0 {
		out.Merge(captions)
		stats.Entries = len(captions)
		c.observer.FileCollected(path, conv, stats)
	}
}
