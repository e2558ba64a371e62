package config

import (
	"fmt"
	"slices"

	"github.com/heartmarshall/captionmap/internal/domain"
)

// maxInsertChunk keeps a multi-row image_captions insert (4 params per row)
// under the PostgreSQL limit of 65535 bind parameters.
const maxInsertChunk = 16000

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically. Every
// violated rule is reported in the returned *domain.ValidationError.
func (c *Config) Validate() error {
	var errs []domain.FieldError
	add := func(field, format string, args ...any) {
		errs = append(errs, domain.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Collector.ExistsCacheSize <= 0 {
		add("collector.exists_cache_size", "must be > 0 (got %d)", c.Collector.ExistsCacheSize)
	}
	if c.Export.PreviewCount < 0 {
		add("export.preview_count", "must be >= 0 (got %d)", c.Export.PreviewCount)
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		add("log.level", "must be one of %v (got %q)", logLevels, c.Log.Level)
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		add("log.format", "must be one of %v (got %q)", logFormats, c.Log.Format)
	}

	if d := c.Database; d.Enabled() {
		if d.MaxConns <= 0 {
			add("database.max_conns", "must be > 0 (got %d)", d.MaxConns)
		}
		if d.MinConns < 0 || d.MinConns > d.MaxConns {
			add("database.min_conns", "must be in [0, max_conns] (got %d)", d.MinConns)
		}
		if d.InsertChunkSize <= 0 || d.InsertChunkSize > maxInsertChunk {
			add("database.insert_chunk_size", "must be in [1, %d] (got %d)", maxInsertChunk, d.InsertChunkSize)
		}
	}

	if s := c.Storage; s.Enabled() {
		if s.Bucket == "" {
			add("storage.bucket", "required when endpoint is set")
		}
		if s.AccessKey == "" || s.SecretKey == "" {
			add("storage.access_key", "access_key and secret_key are required when endpoint is set")
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
