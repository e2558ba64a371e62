// Package metrics counts collection progress in a Prometheus registry and
// writes it out in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/heartmarshall/captionmap/internal/app/collector"
	"github.com/heartmarshall/captionmap/internal/domain"
)

const (
	outcomeCollected = "collected"
	outcomeFailed    = "failed"

	reasonSkipped  = "skipped"
	reasonExcluded = "excluded"
)

// Observer implements collector.Observer on top of its own registry.
type Observer struct {
	registry  *prometheus.Registry
	files     *prometheus.CounterVec
	entries   *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	mappings  prometheus.Gauge
	completed prometheus.Gauge
	now       func() time.Time
}

// NewObserver creates an Observer with a fresh registry.
func NewObserver() *Observer {
	o := &Observer{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "captionmap_files_total",
				Help: "Caption files processed, by convention and outcome",
			},
			[]string{"convention", "outcome"},
		),
		entries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "captionmap_file_entries_total",
				Help: "Image entries contributed by caption files, before merging",
			},
			[]string{"convention"},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "captionmap_records_dropped_total",
				Help: "Records read from caption files but not collected, by convention and reason",
			},
			[]string{"convention", "reason"},
		),
		mappings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "captionmap_mappings",
			Help: "Images in the consolidated mapping of the last run",
		}),
		completed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "captionmap_last_completed_timestamp_seconds",
			Help: "Unix time the last collection run completed",
		}),
		now: time.Now,
	}
	o.registry.MustRegister(o.files, o.entries, o.dropped, o.mappings, o.completed)
	return o
}

// Registry exposes the underlying registry.
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

func (o *Observer) FileCollected(_ string, conv domain.Convention, stats collector.FileStats) {
	o.files.WithLabelValues(conv.String(), outcomeCollected).Inc()
	o.entries.WithLabelValues(conv.String()).Add(float64(stats.Entries))
	o.dropped.WithLabelValues(conv.String(), reasonSkipped).Add(float64(stats.Skipped))
	o.dropped.WithLabelValues(conv.String(), reasonExcluded).Add(float64(stats.Excluded))
}

func (o *Observer) FileFailed(_ string, conv domain.Convention, _ error) {
	o.files.WithLabelValues(conv.String(), outcomeFailed).Inc()
}

func (o *Observer) Completed(total int) {
	o.mappings.Set(float64(total))
	o.completed.Set(float64(o.now().Unix()))
}

// WriteTextfile writes all metrics to path, creating parent directories.
func (o *Observer) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, o.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
