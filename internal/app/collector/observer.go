package collector

import (
	"context"
	"errors"
	"log/slog"

	"github.com/heartmarshall/captionmap/internal/domain"
)

// Observer receives progress from a collection pass. Callbacks are advisory
// and never affect the returned mapping.
type Observer interface {
	// FileCollected is called for a file that contributed at least one entry.
	FileCollected(path string, conv domain.Convention, stats FileStats)
	// FileFailed is called for a recoverable per-file error. Whatever the
	// file yielded before the error is still merged.
	FileFailed(path string, conv domain.Convention, err error)
	// Completed is called once with the size of the final mapping.
	Completed(total int)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) FileCollected(string, domain.Convention, FileStats) {}
func (NopObserver) FileFailed(string, domain.Convention, error)      {}
func (NopObserver) Completed(int)                                    {}

// LogObserver writes progress to a slog.Logger.
type LogObserver struct {
	log *slog.Logger
}

// NewLogObserver creates a LogObserver.
func NewLogObserver(log *slog.Logger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) FileCollected(path string, conv domain.Convention, stats FileStats) {
	o.log.Info("captions collected",
		slog.String("file", path),
		slog.String("convention", conv.String()),
		slog.Int("entries", stats.Entries),
		slog.Int("records", stats.Records),
		slog.Int("skipped", stats.Skipped),
		slog.Int("excluded", stats.Excluded),
	)
}

// FileFailed logs malformed input as a warning and everything else as an
// error.
func (o *LogObserver) FileFailed(path string, conv domain.Convention, err error) {
	level := slog.LevelError
	if errors.Is(err, domain.ErrMalformedInput) {
		level = slog.LevelWarn
	}
	o.log.Log(context.Background(), level, "caption file failed",
		slog.String("file", path),
		slog.String("convention", conv.String()),
		slog.String("error", err.Error()),
	)
}

func (o *LogObserver) Completed(total int) {
	o.log.Info("collection completed", slog.Int("mappings", total))
}

// Observers fans every event out to each observer in order.
type Observers []Observer

func (obs Observers) FileCollected(path string, conv domain.Convention, stats FileStats) {
	for _, o := range obs {
		o.FileCollected(path, conv, stats)
	}
}

func (obs Observers) FileFailed(path string, conv domain.Convention, err error) {
	for _, o := range obs {
		o.FileFailed(path, conv, err)
	}
}

func (obs Observers) Completed(total int) {
	for _, o := range obs {
		o.Completed(total)
	}
}
