package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/captionmap/internal/app/collector"
	"github.com/heartmarshall/captionmap/internal/app/collector/imagepath"
	"github.com/heartmarshall/captionmap/internal/app/export"
	"github.com/heartmarshall/captionmap/internal/app/metrics"
	"github.com/heartmarshall/captionmap/internal/config"
	"github.com/heartmarshall/captionmap/internal/domain"
	"github.com/heartmarshall/captionmap/pkg/ctxutil"
)

// RunStore persists a finished collection run.
type RunStore interface {
	SaveRun(ctx context.Context, run domain.CollectionRun, m domain.CaptionMapping) error
}

// Deps are the optional outputs of a pipeline. A nil field disables the
// corresponding step.
type Deps struct {
	Runs      RunStore
	Artifacts export.ArtifactStore
}

// Result is the outcome of one pipeline run.
type Result struct {
	Run         domain.CollectionRun
	Mapping     domain.CaptionMapping
	ArtifactKey string
}

// Pipeline collects captions under the configured base directory and sends
// the mapping to every configured output.
type Pipeline struct {
	log       *slog.Logger
	cfg       config.Config
	deps      Deps
	collector *collector.Collector
	metrics   *metrics.Observer
	now       func() time.Time
}

// NewPipeline wires a collector from cfg. Progress is logged to log and,
// when a metrics textfile is configured, counted in a Prometheus registry.
func NewPipeline(log *slog.Logger, cfg config.Config, deps Deps) (*Pipeline, error) {
	resolver, err := imagepath.New(cfg.Collector.ValidateImages, cfg.Collector.ExistsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create path resolver: %w", err)
	}

	p := &Pipeline{log: log, cfg: cfg, deps: deps, now: time.Now}

	observers := collector.Observers{collector.NewLogObserver(log)}
	if cfg.Metrics.TextfilePath != "" {
		p.metrics = metrics.NewObserver()
		observers = append(observers, p.metrics)
	}
	p.collector = collector.New(resolver, collector.WithObserver(observers))

	return p, nil
}

// Run executes one collection pass and writes its outputs: the JSON file
// first, then object storage and the database concurrently, then the metrics
// textfile. The first failing step aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	run := domain.NewCollectionRun(p.cfg.Collector.BaseDir, p.cfg.Collector.ValidateImages, p.now())
	ctx = ctxutil.WithRunID(ctx, run.ID)
	log := ctxutil.Logger(ctx, p.log)

	log.Info("scanning directories",
		slog.String("base_dir", run.BaseDir),
		slog.Bool("validate_images", run.ValidateImages),
	)

	mapping, err := p.collector.Collect(ctx, run.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("collect captions: %w", err)
	}
	run.Finish(mapping, p.now())

	res := &Result{Run: run, Mapping: mapping}

	if path := p.cfg.Export.OutputPath; path != "" {
		if err := export.WriteJSON(path, mapping, p.cfg.Export.RelativeRoot); err != nil {
			return nil, fmt.Errorf("write json: %w", err)
		}
		log.Info("wrote consolidated mappings", slog.String("path", path))
	}

	// Upload and persistence are independent; run them side by side.
	g, gctx := errgroup.WithContext(ctx)

	if p.deps.Artifacts != nil {
		g.Go(func() error {
			key, err := export.Upload(gctx, p.deps.Artifacts, p.cfg.Export.ObjectPrefix, run.ID, mapping, p.cfg.Export.RelativeRoot)
			if err != nil {
				return err
			}
			res.ArtifactKey = key
			log.Info("uploaded artifact", slog.String("key", key))
			return nil
		})
	}

	if p.deps.Runs != nil {
		g.Go(func() error {
			if err := p.deps.Runs.SaveRun(gctx, run, mapping); err != nil {
				return fmt.Errorf("save run: %w", err)
			}
			log.Info("stored run", slog.Int("captions", run.CaptionCount))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if p.metrics != nil {
		if err := p.metrics.WriteTextfile(p.cfg.Metrics.TextfilePath); err != nil {
			return nil, err
		}
	}

	log.Info("run completed",
		slog.Int("images", run.ImageCount),
		slog.Int("captions", run.CaptionCount),
		slog.String("digest", run.Digest),
		slog.Duration("duration", run.Duration()),
	)
	return res, nil
}

// PrintPreview writes the total count and the first n mappings in path order,
// showing at most two captions per image.
func PrintPreview(w io.Writer, m domain.CaptionMapping, n int) error {
	if _, err := fmt.Fprintf(w, "Total consolidated caption mappings: %d\n", len(m)); err != nil {
		return err
	}
	for i, path := range m.Paths() {
		if i >= n {
			break
		}
		caps := m[path]
		if len(caps) > 2 {
			caps = caps[:2]
		}
		if _, err := fmt.Fprintf(w, "%s %q\n", path, caps); err != nil {
			return err
		}
	}
	return nil
}
